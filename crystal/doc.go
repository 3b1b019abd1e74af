// Package crystal models periodic crystal structures: a direct lattice and
// the atomic sites decorating it.
//
// Lattice vectors are stored as the rows of a 3x3 matrix in Angstrom. The
// reciprocal lattice uses the crystallographic 2*pi convention, so that
// a_i . b_j = 2*pi*delta_ij.
//
//	lat := crystal.Cubic(5.43)
//	s, err := crystal.NewStructure(lat, []crystal.Site{
//		{Species: "Si", Frac: [3]float64{0, 0, 0}},
//		{Species: "Si", Frac: [3]float64{0.25, 0.25, 0.25}},
//	})
package crystal
