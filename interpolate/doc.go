// Package interpolate adapts a band structure to a Fourier interpolation
// engine and keeps the fitted parameters for evaluation.
//
// An [Interpolater] is constructed from a band structure and an electron
// count. [Interpolater.Initialize] then runs the engine pipeline:
//
//  1. build the engine loader from the band structure and its crystal,
//  2. generate reciprocal-space equivalence classes with a target of five
//     times the number of sampled k-points and no magnetic moments,
//  3. read the direct-lattice matrix from the loader,
//  4. fit the interpolation coefficients,
//
// and stores (equivalences, lattice matrix, coefficients) as one
// [Parameters] value. Errors from the engine are returned as-is.
//
// The engine steps are interfaces. The defaults come from package skw; tests
// and alternative engines supply their own with [WithLoaderFactory],
// [WithEquivalenceGenerator] and [WithFitter].
//
// An Interpolater is not safe for concurrent Initialize calls. After a
// successful Initialize it is read-only and evaluation methods may be called
// concurrently.
package interpolate
