package crystal

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// singularTol is the smallest cell volume, in cubic Angstrom, accepted as
// non-degenerate.
const singularTol = 1e-8

// Lattice is a 3D Bravais lattice with vectors stored as matrix rows.
// A Lattice is immutable; accessors return copies.
type Lattice struct {
	rows *mat.Dense
}

// NewLattice builds a lattice from three row vectors in Angstrom.
func NewLattice(vectors [3][3]float64) (Lattice, error) {
	for i, v := range vectors {
		if err := validateFinite([...]string{"a", "b", "c"}[i], v); err != nil {
			return Lattice{}, err
		}
	}

	m := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		m.SetRow(i, vectors[i][:])
	}
	if math.Abs(mat.Det(m)) < singularTol {
		return Lattice{}, ErrSingularLattice
	}
	return Lattice{rows: m}, nil
}

// Cubic returns a simple cubic lattice with edge a.
func Cubic(a float64) Lattice {
	l, err := NewLattice([3][3]float64{{a, 0, 0}, {0, a, 0}, {0, 0, a}})
	if err != nil {
		panic(err)
	}
	return l
}

// Hexagonal returns a hexagonal lattice with in-plane constant a and
// out-of-plane constant c.
func Hexagonal(a, c float64) Lattice {
	l, err := NewLattice([3][3]float64{
		{a, 0, 0},
		{-a / 2, a * math.Sqrt(3) / 2, 0},
		{0, 0, c},
	})
	if err != nil {
		panic(err)
	}
	return l
}

// Matrix returns a copy of the lattice matrix with vectors as rows.
func (l Lattice) Matrix() *mat.Dense {
	return mat.DenseCopyOf(l.rows)
}

// Vectors returns the three lattice vectors.
func (l Lattice) Vectors() [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = l.rows.At(i, j)
		}
	}
	return out
}

// Lengths returns |a|, |b| and |c|.
func (l Lattice) Lengths() [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = mat.Norm(l.rows.RowView(i), 2)
	}
	return out
}

// Volume returns the cell volume in cubic Angstrom.
func (l Lattice) Volume() float64 {
	return math.Abs(mat.Det(l.rows))
}

// Metric returns the metric tensor G = A A^T.
func (l Lattice) Metric() *mat.SymDense {
	g := mat.NewSymDense(3, nil)
	g.SymOuterK(1, l.rows)
	return g
}

// Reciprocal returns the reciprocal lattice, B = 2*pi * (A^-1)^T.
func (l Lattice) Reciprocal() Lattice {
	var inv mat.Dense
	if err := inv.Inverse(l.rows); err != nil {
		// NewLattice rejects singular matrices.
		panic(err)
	}
	var b mat.Dense
	b.Scale(2*math.Pi, inv.T())
	return Lattice{rows: &b}
}

// FractionalToCartesian converts fractional coordinates to Cartesian ones.
func (l Lattice) FractionalToCartesian(f [3]float64) [3]float64 {
	var out [3]float64
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			out[j] += f[i] * l.rows.At(i, j)
		}
	}
	return out
}

// CartesianToFractional converts Cartesian coordinates to fractional ones.
func (l Lattice) CartesianToFractional(c [3]float64) [3]float64 {
	var f mat.VecDense
	cv := mat.NewVecDense(3, c[:])
	// c = A^T f
	if err := f.SolveVec(l.rows.T(), cv); err != nil {
		panic(err)
	}
	return [3]float64{f.AtVec(0), f.AtVec(1), f.AtVec(2)}
}
