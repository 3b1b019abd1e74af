// Package symmetry finds the space-group operations of a crystal structure.
//
// Operations act on fractional direct-space coordinates as x' = W x + t with
// an integer rotation W. The search first collects the lattice automorphisms
// (integer matrices with entries in {-1, 0, 1} that preserve the metric
// tensor), then keeps those that map every site onto a site of the same
// species, and the same magnetic moment when moments are given, under some
// translation t.
//
// The automorphism search assumes a reduced cell. For strongly skewed cells,
// reduce the lattice first or some operations will be missed.
package symmetry
