package skw

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-bands/crystal"
)

// Roughness constants of Pickett, Krakauer and Allen.
const (
	roughnessC1 = 0.75
	roughnessC2 = 0.75
)

// maxCondition is the largest condition number accepted from the Cholesky
// factorisation before falling back to LU.
const maxCondition = 1e14

// Coefficients holds the fitted expansion, one row per band and one column
// per star.
type Coefficients struct {
	data *mat.Dense
}

// NewCoefficients wraps a bands x stars matrix.
func NewCoefficients(data *mat.Dense) *Coefficients {
	return &Coefficients{data: data}
}

// NumBands returns the number of fitted bands.
func (c *Coefficients) NumBands() int {
	r, _ := c.data.Dims()
	return r
}

// NumStars returns the number of stars per band.
func (c *Coefficients) NumStars() int {
	_, s := c.data.Dims()
	return s
}

// At returns the coefficient of star m for band b.
func (c *Coefficients) At(b, m int) float64 { return c.data.At(b, m) }

// Band returns a copy of the coefficients of band b.
func (c *Coefficients) Band(b int) []float64 {
	return mat.Row(nil, b, c.data)
}

// Matrix returns a copy of the coefficient matrix.
func (c *Coefficients) Matrix() *mat.Dense { return mat.DenseCopyOf(c.data) }

// Fitter computes SKW coefficients.
type Fitter struct{}

// Fit solves for coefficients passing exactly through the loader's band
// energies. workers bounds the number of bands solved concurrently; values
// below one are treated as one.
func (Fitter) Fit(data Loader, equivalences []Star, workers int) (*Coefficients, error) {
	kpoints := data.KPoints()
	ebands := data.Energies()
	nk := len(kpoints)
	ns := len(equivalences)

	switch {
	case nk == 0:
		return nil, ErrNoKPoints
	case ns == 0:
		return nil, ErrNoEquivalences
	case ns < nk:
		return nil, fmt.Errorf("%w: %d stars for %d k-points", ErrTooFewStars, ns, nk)
	}
	for b, e := range ebands {
		if len(e) != nk {
			return nil, fmt.Errorf("%w: band %d", ErrShapeMismatch, b)
		}
	}
	if data.Atoms() == nil {
		return nil, ErrMissingStructure
	}

	invRho := inverseRoughness(data.Atoms().Lattice, equivalences)

	// Star functions relative to the last k-point, which anchors the
	// constant term.
	ref := starValues(equivalences, kpoints[nk-1])
	n := nk - 1
	delta := mat.NewDense(max(ns-1, 1), max(n, 1), nil)
	for i := 0; i < n; i++ {
		s := starValues(equivalences, kpoints[i])
		for m := 1; m < ns; m++ {
			delta.Set(m-1, i, s[m]-ref[m])
		}
	}

	var solver linearSolver
	if n > 0 {
		var err error
		solver, err = factorize(delta, invRho, n)
		if err != nil {
			return nil, err
		}
	}

	out := mat.NewDense(len(ebands), ns, nil)
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for b := range ebands {
		g.Go(func() error {
			row, err := fitBand(ebands[b], ref, delta, invRho, solver)
			if err != nil {
				return fmt.Errorf("band %d: %w", b, err)
			}
			out.SetRow(b, row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Coefficients{data: out}, nil
}

// inverseRoughness returns 1/rho for every star except the first.
func inverseRoughness(l crystal.Lattice, stars []Star) []float64 {
	out := make([]float64, max(len(stars)-1, 0))
	if len(out) == 0 {
		return out
	}
	rmin := stars[1].Radius(l)
	for m := 1; m < len(stars); m++ {
		x := stars[m].Radius(l) / rmin
		x2 := x * x
		rho := (1-roughnessC1*x2)*(1-roughnessC1*x2) + roughnessC2*x2*x2*x2
		out[m-1] = 1 / rho
	}
	return out
}

type linearSolver interface {
	SolveVecTo(dst *mat.VecDense, b mat.Vector) error
}

type luSolver struct{ lu *mat.LU }

func (s luSolver) SolveVecTo(dst *mat.VecDense, b mat.Vector) error {
	return s.lu.SolveVecTo(dst, false, b)
}

// factorize builds H = delta^T diag(invRho) delta and factorises it.
func factorize(delta *mat.Dense, invRho []float64, n int) (linearSolver, error) {
	scaled := mat.DenseCopyOf(delta)
	rows, _ := scaled.Dims()
	for m := 0; m < rows; m++ {
		w := math.Sqrt(invRho[m])
		row := scaled.RawRowView(m)
		for i := range row {
			row[i] *= w
		}
	}
	h := mat.NewSymDense(n, nil)
	h.SymOuterK(1, scaled.T())

	var chol mat.Cholesky
	if chol.Factorize(h) && chol.Cond() < maxCondition {
		return &chol, nil
	}

	var lu mat.LU
	lu.Factorize(h)
	if c := lu.Cond(); math.IsInf(c, 1) || c > maxCondition {
		return nil, ErrSingularSystem
	}
	return luSolver{lu: &lu}, nil
}

// fitBand returns the coefficients of one band.
func fitBand(energies, ref []float64, delta *mat.Dense, invRho []float64, solver linearSolver) ([]float64, error) {
	ns := len(ref)
	nk := len(energies)
	eref := energies[nk-1]
	coeffs := make([]float64, ns)

	if nk > 1 && ns > 1 {
		rhs := mat.NewVecDense(nk-1, nil)
		for i := 0; i < nk-1; i++ {
			rhs.SetVec(i, energies[i]-eref)
		}
		var lambda mat.VecDense
		if err := solver.SolveVecTo(&lambda, rhs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSingularSystem, err)
		}

		var a mat.VecDense
		a.MulVec(delta, &lambda)
		rest := coeffs[1:]
		vecmath.MulBlock(rest, a.RawVector().Data, invRho)
	}

	c0 := eref
	for m := 1; m < ns; m++ {
		c0 -= coeffs[m] * ref[m]
	}
	coeffs[0] = c0
	return coeffs, nil
}

// starValues returns S_m(k) for every star.
func starValues(stars []Star, k [3]float64) []float64 {
	out := make([]float64, len(stars))
	for m, star := range stars {
		var s float64
		for _, r := range star {
			s += math.Cos(2 * math.Pi * (k[0]*float64(r[0]) + k[1]*float64(r[1]) + k[2]*float64(r[2])))
		}
		out[m] = s / float64(len(star))
	}
	return out
}
