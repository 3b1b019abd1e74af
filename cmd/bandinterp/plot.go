package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-bands/crystal"
)

func newPlotCmd(a *app) *cobra.Command {
	var (
		path   string
		out    string
		points int
	)
	cmd := &cobra.Command{
		Use:     "plot <bands-file>",
		Short:   "Plot interpolated bands along a k-path",
		Example: `  bandinterp plot si.yaml --path "0,0,0;0.5,0,0;0.5,0.5,0" --out bands.png`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verts, err := parsePath(path)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("points") {
				points = a.cfg.PlotPoints
			}
			if points < len(verts) {
				return fmt.Errorf("--points must be at least %d", len(verts))
			}

			ip, file, err := a.initialize(args[0])
			if err != nil {
				return err
			}
			s := ip.BandStructure().Structure()
			if s == nil {
				return fmt.Errorf("plot: %s has no lattice", args[0])
			}

			kp, dist := samplePath(s.Lattice.Reciprocal(), verts, points)
			e, err := ip.Energies(kp)
			if err != nil {
				return err
			}

			p := plot.New()
			p.Title.Text = args[0]
			p.X.Label.Text = "k-path (1/Angstrom)"
			p.Y.Label.Text = "E - EF (eV)"
			for b := range e {
				xy := make(plotter.XYs, len(kp))
				for i := range kp {
					xy[i] = plotter.XY{X: dist[i], Y: e[b][i] - file.EFermi}
				}
				line, err := plotter.NewLine(xy)
				if err != nil {
					return fmt.Errorf("band %d: %w", b, err)
				}
				line.Width = vg.Points(1)
				line.Color = color.RGBA{B: 160, A: 255}
				p.Add(line)
			}
			p.Add(plotter.NewGrid())

			if err := p.Save(8*vg.Inch, 6*vg.Inch, out); err != nil {
				return err
			}
			a.log.Info().Str("out", out).Int("bands", len(e)).Int("points", len(kp)).Msg("saved plot")
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", `k-path vertices "x,y,z;x,y,z;..." (fractional)`)
	cmd.Flags().StringVar(&out, "out", "bands.png", "Output image (.png, .svg, .pdf)")
	cmd.Flags().IntVar(&points, "points", 0, "Total samples along the path; defaults to config plot_points")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

// samplePath distributes n points along the polyline through verts, spaced
// by Cartesian length in reciprocal space. Every vertex is sampled.
func samplePath(recip crystal.Lattice, verts [][3]float64, n int) ([][3]float64, []float64) {
	nseg := len(verts) - 1
	seg := make([]float64, nseg)
	var total float64
	for i := 0; i < nseg; i++ {
		a := recip.FractionalToCartesian(verts[i])
		b := recip.FractionalToCartesian(verts[i+1])
		seg[i] = math.Sqrt(sq(b[0]-a[0]) + sq(b[1]-a[1]) + sq(b[2]-a[2]))
		total += seg[i]
	}

	// One sample per vertex, the rest shared by length.
	extra := n - len(verts)
	counts := make([]int, nseg)
	used := 0
	for i := range counts {
		if total > 0 {
			counts[i] = int(float64(extra) * seg[i] / total)
		}
		used += counts[i]
	}
	counts[nseg-1] += extra - used

	kp := make([][3]float64, 0, n)
	dist := make([]float64, 0, n)
	var x float64
	for i := 0; i < nseg; i++ {
		steps := counts[i] + 1
		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps)
			var k [3]float64
			for d := range k {
				k[d] = verts[i][d] + t*(verts[i+1][d]-verts[i][d])
			}
			kp = append(kp, k)
			dist = append(dist, x+t*seg[i])
		}
		x += seg[i]
	}
	kp = append(kp, verts[nseg])
	dist = append(dist, x)
	return kp, dist
}

func sq(v float64) float64 { return v * v }
