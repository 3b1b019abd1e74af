// Package skw implements Shankland-Koelling-Wood Fourier interpolation of
// electronic bands.
//
// Band energies are expanded in symmetrised plane waves ("star functions")
// over direct-lattice vectors R:
//
//	E(k) = sum_m a_m S_m(k),  S_m(k) = 1/n_m sum_{R in star m} cos(2*pi k.R)
//
// The coefficients a_m pass exactly through every sampled k-point while
// minimising a roughness functional, following
//
//  1. D.G. Shankland, Int. J. Quantum Chem. 5 (1971) 497.
//  2. D.D. Koelling, J.H. Wood, J. Comput. Phys. 67 (1986) 253-262.
//  3. W.E. Pickett, H. Krakauer, P.B. Allen, Phys. Rev. B 38 (1988) 2721.
//
// The pipeline has three steps:
//
//	data, err := skw.NewLoader(bs, bs.Structure(), nelect)
//	stars, err := skw.SphereGenerator{}.Equivalences(data.Atoms(), 5*data.NumKPoints(), nil)
//	coeffs, err := skw.Fitter{}.Fit(data, stars, workers)
//
// and evaluation is done with [Eval], [EvalWithVelocity] or, on a regular
// grid, with [EvalGrid], which uses a 3-D FFT.
//
// The sampled k-points must be symmetry-inequivalent; equivalent points make
// the fitting system singular.
package skw
