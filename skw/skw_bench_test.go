package skw

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-bands/internal/testutil"
)

func benchInputs(b *testing.B, mesh int) (*Data, []Star) {
	b.Helper()
	s := testutil.CubicStructure(b, 3)
	bs := testutil.CubicBandStructure(b, mesh, s)
	data, err := NewLoader(bs, s, 2)
	if err != nil {
		b.Fatalf("NewLoader: %v", err)
	}
	stars, err := SphereGenerator{}.Equivalences(s, 5*data.NumKPoints(), nil)
	if err != nil {
		b.Fatalf("Equivalences: %v", err)
	}
	return data, stars
}

func benchCoefficients(b *testing.B, mesh int) ([]Star, *Coefficients) {
	b.Helper()
	data, stars := benchInputs(b, mesh)
	coeffs, err := Fitter{}.Fit(data, stars, 1)
	if err != nil {
		b.Fatalf("Fit: %v", err)
	}
	return stars, coeffs
}

// Benchmark fitting with serial and parallel band solves.
func BenchmarkFit(b *testing.B) {
	for _, mesh := range []int{4, 8} {
		data, stars := benchInputs(b, mesh)
		for _, workers := range []int{1, 2, 4} {
			b.Run(fmt.Sprintf("mesh=%d_stars=%d_workers=%d", mesh, len(stars), workers), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					_, _ = Fitter{}.Fit(data, stars, workers)
				}
			})
		}
	}
}

// Benchmark direct evaluation at scattered k-points.
func BenchmarkEval(b *testing.B) {
	stars, coeffs := benchCoefficients(b, 8)
	for _, n := range []int{16, 256} {
		kp := make([][3]float64, n)
		for i := range kp {
			x := float64(i) / float64(n)
			kp[i] = [3]float64{x, 0.5 * x, 0.25 * x}
		}
		b.Run(fmt.Sprintf("kpoints=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = Eval(stars, coeffs, kp)
			}
		})
	}
}

// Benchmark FFT evaluation on regular meshes.
func BenchmarkEvalGrid(b *testing.B) {
	stars, coeffs := benchCoefficients(b, 8)
	for _, n := range []int{8, 16, 32} {
		dims := [3]int{n, n, n}
		b.Run(fmt.Sprintf("grid=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = EvalGrid(stars, coeffs, dims)
			}
		})
	}
}
