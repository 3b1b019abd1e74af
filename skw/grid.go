package skw

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Grid holds band energies on a regular Gamma-centred k-mesh. Point
// (i, j, l) sits at k = (i/n1, j/n2, l/n3) and is stored at Index(i, j, l).
type Grid struct {
	Dims     [3]int
	Energies [][]float64 // [band][point]
}

// Index returns the flat index of mesh point (i, j, l).
func (g *Grid) Index(i, j, l int) int {
	return (i*g.Dims[1]+j)*g.Dims[2] + l
}

// KPoint returns the fractional coordinates of mesh point (i, j, l).
func (g *Grid) KPoint(i, j, l int) [3]float64 {
	return [3]float64{
		float64(i) / float64(g.Dims[0]),
		float64(j) / float64(g.Dims[1]),
		float64(l) / float64(g.Dims[2]),
	}
}

// EvalGrid evaluates every band on a dims mesh with one 3-D FFT per band.
// Each dimension must be a power of two. Lattice vectors are folded modulo
// the mesh, which is exact at mesh points.
func EvalGrid(equivalences []Star, coeffs *Coefficients, dims [3]int) (*Grid, error) {
	if err := checkShape(equivalences, coeffs); err != nil {
		return nil, err
	}
	for _, n := range dims {
		if !isPowerOf2(n) {
			return nil, fmt.Errorf("%w: %v", ErrGridSize, dims)
		}
	}

	var plans [3]*algofft.Plan[complex128]
	for axis, n := range dims {
		if n == 1 {
			continue
		}
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("skw: failed to create FFT plan: %w", err)
		}
		plans[axis] = plan
	}

	total := dims[0] * dims[1] * dims[2]
	grid := &Grid{Dims: dims, Energies: make([][]float64, coeffs.NumBands())}
	buf := make([]complex128, total)
	for b := range grid.Energies {
		clear(buf)
		for m, star := range equivalences {
			w := complex(coeffs.At(b, m)/float64(len(star)), 0)
			for _, r := range star {
				buf[grid.Index(mod(r[0], dims[0]), mod(r[1], dims[1]), mod(r[2], dims[2]))] += w
			}
		}
		if err := fft3(buf, dims, plans); err != nil {
			return nil, err
		}
		e := make([]float64, total)
		for i, v := range buf {
			e[i] = real(v)
		}
		grid.Energies[b] = e
	}
	return grid, nil
}

// fft3 applies a forward transform along each axis in place. The real part
// of the result is sum_R c_R cos(2*pi k.R) whatever the sign convention.
func fft3(data []complex128, dims [3]int, plans [3]*algofft.Plan[complex128]) error {
	strides := [3]int{dims[1] * dims[2], dims[2], 1}
	for axis := 0; axis < 3; axis++ {
		plan := plans[axis]
		if plan == nil {
			continue
		}
		n := dims[axis]
		stride := strides[axis]
		line := make([]complex128, n)
		out := make([]complex128, n)

		// Iterate over every line parallel to axis.
		for base := 0; base < len(data); base++ {
			if (base/stride)%n != 0 {
				continue
			}
			for i := 0; i < n; i++ {
				line[i] = data[base+i*stride]
			}
			if err := plan.Forward(out, line); err != nil {
				return fmt.Errorf("skw: forward FFT failed: %w", err)
			}
			for i := 0; i < n; i++ {
				data[base+i*stride] = out[i]
			}
		}
	}
	return nil
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
