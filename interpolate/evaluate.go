package interpolate

import "github.com/cwbudde/algo-bands/skw"

// Energies returns interpolated energies at fractional k-points, indexed
// [band][kpoint]. Spin channels are stacked as in the loader.
func (ip *Interpolater) Energies(kpoints [][3]float64) ([][]float64, error) {
	if ip.params == nil {
		return nil, ErrNotInitialized
	}
	return skw.Eval(ip.params.Equivalences, ip.params.Coefficients, kpoints)
}

// EnergiesAndVelocities returns energies and Cartesian gradients dE/dk.
func (ip *Interpolater) EnergiesAndVelocities(kpoints [][3]float64) ([][]float64, [][][3]float64, error) {
	if ip.params == nil {
		return nil, nil, ErrNotInitialized
	}
	p := ip.params
	return skw.EvalWithVelocity(p.Equivalences, p.LatticeVectors, p.Coefficients, kpoints)
}

// EnergiesOnGrid evaluates every band on a regular mesh. Each dimension
// must be a power of two.
func (ip *Interpolater) EnergiesOnGrid(dims [3]int) (*skw.Grid, error) {
	if ip.params == nil {
		return nil, ErrNotInitialized
	}
	return skw.EvalGrid(ip.params.Equivalences, ip.params.Coefficients, dims)
}
