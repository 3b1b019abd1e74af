package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-bands/internal/cpu"
)

func newFitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "fit <bands-file>",
		Short:   "Fit coefficients and print a parameter summary",
		Example: "  bandinterp fit si.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip, _, err := a.initialize(args[0])
			if err != nil {
				return err
			}
			p, _ := ip.Parameters()

			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "stars\t%d\n", len(p.Equivalences))
			fmt.Fprintf(tw, "coefficients\t%d x %d\n", p.Coefficients.NumBands(), p.Coefficients.NumStars())
			if n := len(p.Equivalences); n > 0 {
				fmt.Fprintf(tw, "outer star\t%d members\n", len(p.Equivalences[n-1]))
			}
			fmt.Fprintf(tw, "workers\t%d\n", ip.Workers())
			fmt.Fprintf(tw, "simd\t%s\n", cpu.DetectFeatures().SIMD())
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.stdout, "lattice (columns, Angstrom):\n%.6f\n",
				mat.Formatted(p.LatticeVectors, mat.Prefix(""), mat.Squeeze()))
			return err
		},
	}
}
