// Command bandinterp fits SKW star-function interpolations to band energies
// and evaluates or plots the result.
//
// Usage:
//
//	bandinterp [--config file] [--log-level lvl] [--workers n] <command>
//
// Examples:
//
//	bandinterp fit si.yaml
//	bandinterp eval si.yaml --grid 16,16,16
//	bandinterp eval si.yaml --kpoint 0,0,0 --kpoint 0.5,0,0
//	bandinterp plot si.yaml --path "0,0,0;0.5,0,0;0.5,0.5,0" --out bands.png
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "bandinterp: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := buildRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.Execute()
}
