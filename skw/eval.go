package skw

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"
)

func checkShape(equivalences []Star, coeffs *Coefficients) error {
	if coeffs == nil || coeffs.NumStars() != len(equivalences) {
		return ErrCoeffShape
	}
	return nil
}

// Eval returns band energies at fractional k-points, indexed [band][kpoint].
func Eval(equivalences []Star, coeffs *Coefficients, kpoints [][3]float64) ([][]float64, error) {
	if err := checkShape(equivalences, coeffs); err != nil {
		return nil, err
	}

	nb := coeffs.NumBands()
	out := make([][]float64, nb)
	for b := range out {
		out[b] = make([]float64, len(kpoints))
	}

	rows := make([][]float64, nb)
	for b := range rows {
		rows[b] = coeffs.Band(b)
	}
	prod := make([]float64, len(equivalences))
	for k, kp := range kpoints {
		s := starValues(equivalences, kp)
		for b := 0; b < nb; b++ {
			vecmath.MulBlock(prod, rows[b], s)
			var e float64
			for _, v := range prod {
				e += v
			}
			out[b][k] = e
		}
	}
	return out, nil
}

// EvalWithVelocity returns band energies and their Cartesian gradients
// dE/dk at fractional k-points. lattvec is the direct lattice with vectors
// as columns; with energies in eV and lattvec in Angstrom the gradients are
// in eV*Angstrom. Divide by hbar for group velocities.
func EvalWithVelocity(equivalences []Star, lattvec *mat.Dense, coeffs *Coefficients, kpoints [][3]float64) ([][]float64, [][][3]float64, error) {
	if err := checkShape(equivalences, coeffs); err != nil {
		return nil, nil, err
	}
	if r, c := lattvec.Dims(); r != 3 || c != 3 {
		return nil, nil, fmt.Errorf("skw: lattice matrix is %dx%d, want 3x3", r, c)
	}

	// Cartesian star vectors, R_cart = lattvec * R.
	cart := make([][][3]float64, len(equivalences))
	for m, star := range equivalences {
		cart[m] = make([][3]float64, len(star))
		for i, r := range star {
			for j := 0; j < 3; j++ {
				cart[m][i][j] = lattvec.At(j, 0)*float64(r[0]) +
					lattvec.At(j, 1)*float64(r[1]) +
					lattvec.At(j, 2)*float64(r[2])
			}
		}
	}

	nb := coeffs.NumBands()
	energies := make([][]float64, nb)
	grads := make([][][3]float64, nb)
	for b := range energies {
		energies[b] = make([]float64, len(kpoints))
		grads[b] = make([][3]float64, len(kpoints))
	}

	values := make([]float64, len(equivalences))
	derivs := make([][3]float64, len(equivalences))
	for k, kp := range kpoints {
		for m, star := range equivalences {
			var v float64
			var d [3]float64
			for i, r := range star {
				phase := 2 * math.Pi * (kp[0]*float64(r[0]) + kp[1]*float64(r[1]) + kp[2]*float64(r[2]))
				sin, cos := math.Sincos(phase)
				v += cos
				for j := 0; j < 3; j++ {
					d[j] -= cart[m][i][j] * sin
				}
			}
			n := float64(len(star))
			values[m] = v / n
			for j := range d {
				derivs[m][j] = d[j] / n
			}
		}
		for b := 0; b < nb; b++ {
			var e float64
			var g [3]float64
			for m := range equivalences {
				a := coeffs.At(b, m)
				e += a * values[m]
				for j := 0; j < 3; j++ {
					g[j] += a * derivs[m][j]
				}
			}
			energies[b][k] = e
			grads[b][k] = g
		}
	}
	return energies, grads, nil
}
