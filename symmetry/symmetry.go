package symmetry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-bands/crystal"
)

// Default tolerances. MetricTolerance is relative to the largest metric
// element; SiteTolerance is a fractional-coordinate distance.
const (
	MetricTolerance = 1e-5
	SiteTolerance   = 1e-3
)

// Errors returned by Operations.
var (
	ErrNilStructure  = errors.New("symmetry: nil structure")
	ErrMagmomLength  = errors.New("symmetry: magnetic moment count differs from site count")
	ErrNoIdentityFit = errors.New("symmetry: identity does not map the structure onto itself")
)

// Operation is a space-group operation x' = Rotation x + Translation.
type Operation struct {
	Rotation    Matrix3
	Translation [3]float64
}

// LatticePointGroup returns the rotations that preserve the lattice metric.
// The identity is always first.
func LatticePointGroup(l crystal.Lattice, tol float64) []Matrix3 {
	if tol <= 0 {
		tol = MetricTolerance
	}
	g := l.Metric()

	scale := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			scale = math.Max(scale, math.Abs(g.At(i, j)))
		}
	}
	eps := tol * scale

	out := []Matrix3{Identity}
	var w Matrix3
	var rec func(idx int)
	rec = func(idx int) {
		if idx == 9 {
			if w == Identity {
				return
			}
			if d := w.Det(); d != 1 && d != -1 {
				return
			}
			if preservesMetric(w, g, eps) {
				out = append(out, w)
			}
			return
		}
		for v := -1; v <= 1; v++ {
			w[idx/3][idx%3] = v
			rec(idx + 1)
		}
	}
	rec(0)
	return out
}

// preservesMetric reports whether W^T G W = G within eps.
func preservesMetric(w Matrix3, g *mat.SymDense, eps float64) bool {
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					s += float64(w[k][i]) * g.At(k, l) * float64(w[l][j])
				}
			}
			if math.Abs(s-g.At(i, j)) > eps {
				return false
			}
		}
	}
	return true
}

// Operations returns the space-group operations of s. If magmom is non-nil
// it must hold one collinear moment per site and operations must preserve
// it; a nil magmom ignores magnetism.
func Operations(s *crystal.Structure, magmom []float64, tol float64) ([]Operation, error) {
	if s == nil {
		return nil, ErrNilStructure
	}
	if len(s.Sites) == 0 {
		return nil, crystal.ErrNoSites
	}
	if magmom != nil && len(magmom) != len(s.Sites) {
		return nil, fmt.Errorf("%w: %d moments for %d sites", ErrMagmomLength, len(magmom), len(s.Sites))
	}
	if tol <= 0 {
		tol = SiteTolerance
	}

	var ops []Operation
	ref := s.Sites[0]
	for _, w := range LatticePointGroup(s.Lattice, 0) {
		image := w.ApplyFrac(ref.Frac)
		for j, cand := range s.Sites {
			if !sameKind(s, magmom, 0, j) {
				continue
			}
			var t [3]float64
			for i := range t {
				t[i] = wrapDiff(cand.Frac[i] - image[i])
			}
			if mapsStructure(s, magmom, w, t, tol) {
				ops = append(ops, Operation{Rotation: w, Translation: crystal.WrapFrac(t)})
				break
			}
		}
	}

	if len(ops) == 0 || ops[0].Rotation != Identity {
		return nil, ErrNoIdentityFit
	}
	return ops, nil
}

// Rotations returns the distinct rotations of ops. With timeReversal set,
// -W is added for every W, which makes the group centrosymmetric in
// reciprocal space.
func Rotations(ops []Operation, timeReversal bool) []Matrix3 {
	seen := make(map[Matrix3]bool, 2*len(ops))
	out := make([]Matrix3, 0, 2*len(ops))
	add := func(w Matrix3) {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	for _, op := range ops {
		add(op.Rotation)
	}
	if timeReversal {
		for _, op := range ops {
			add(op.Rotation.Neg())
		}
	}
	return out
}

func sameKind(s *crystal.Structure, magmom []float64, i, j int) bool {
	if s.Sites[i].Species != s.Sites[j].Species {
		return false
	}
	if magmom != nil && math.Abs(magmom[i]-magmom[j]) > 1e-6 {
		return false
	}
	return true
}

func mapsStructure(s *crystal.Structure, magmom []float64, w Matrix3, t [3]float64, tol float64) bool {
	for i, site := range s.Sites {
		img := w.ApplyFrac(site.Frac)
		found := false
		for j, other := range s.Sites {
			if !sameKind(s, magmom, i, j) {
				continue
			}
			if fracClose(img, t, other.Frac, tol) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func fracClose(img, t, target [3]float64, tol float64) bool {
	for k := 0; k < 3; k++ {
		if math.Abs(wrapDiff(img[k]+t[k]-target[k])) > tol {
			return false
		}
	}
	return true
}

// wrapDiff maps d into [-0.5, 0.5).
func wrapDiff(d float64) float64 {
	return d - math.Floor(d+0.5)
}
