package skw

import "errors"

// Errors returned by the loader, the equivalence generator and the fitter.
var (
	ErrNilBandStructure = errors.New("skw: nil band structure")
	ErrMissingStructure = errors.New("skw: band structure has no crystal structure")
	ErrNoKPoints        = errors.New("skw: no k-points")
	ErrShapeMismatch    = errors.New("skw: energies do not match k-point count")
	ErrEmptyWindow      = errors.New("skw: no bands inside energy window")
	ErrInvalidTarget    = errors.New("skw: equivalence target must be > 0")
	ErrNoEquivalences   = errors.New("skw: no equivalence classes")
	ErrTooFewStars      = errors.New("skw: fewer stars than k-points")
	ErrSingularSystem   = errors.New("skw: fitting system is singular")
	ErrCoeffShape       = errors.New("skw: coefficient count does not match equivalences")
	ErrGridSize         = errors.New("skw: grid dimensions must be powers of two")
)
