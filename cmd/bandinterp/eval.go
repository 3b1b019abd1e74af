package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-bands/bandfile"
)

var errEvalTarget = errors.New("use either --grid or --kpoint")

func newEvalCmd(a *app) *cobra.Command {
	var (
		grid    string
		kpoints []string
	)
	cmd := &cobra.Command{
		Use:   "eval <bands-file>",
		Short: "Evaluate interpolated energies as a TSV table",
		Example: "  bandinterp eval si.yaml --grid 16,16,16\n" +
			"  bandinterp eval si.yaml --kpoint 0,0,0 --kpoint 0.5,0.5,0",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			useGrid := cmd.Flags().Changed("grid")
			if useGrid && len(kpoints) > 0 {
				return errEvalTarget
			}

			var kp [][3]float64
			if !useGrid && len(kpoints) > 0 {
				for _, s := range kpoints {
					k, err := parseTriple(s)
					if err != nil {
						return err
					}
					kp = append(kp, k)
				}
			}

			dims := a.cfg.Grid
			if useGrid {
				var err error
				if dims, err = parseDims(grid); err != nil {
					return err
				}
			}

			ip, _, err := a.initialize(args[0])
			if err != nil {
				return err
			}

			if kp != nil {
				e, err := ip.Energies(kp)
				if err != nil {
					return err
				}
				return bandfile.WriteTable(a.stdout, kp, e)
			}

			g, err := ip.EnergiesOnGrid(dims)
			if err != nil {
				return err
			}
			pts := make([][3]float64, 0, dims[0]*dims[1]*dims[2])
			for i := 0; i < dims[0]; i++ {
				for j := 0; j < dims[1]; j++ {
					for l := 0; l < dims[2]; l++ {
						pts = append(pts, g.KPoint(i, j, l))
					}
				}
			}
			return bandfile.WriteTable(a.stdout, pts, g.Energies)
		},
	}
	cmd.Flags().StringVar(&grid, "grid", "", "FFT mesh n1,n2,n3 (powers of two); defaults to the config grid")
	cmd.Flags().StringArrayVar(&kpoints, "kpoint", nil, "Fractional k-point x,y,z (repeatable)")
	return cmd
}
