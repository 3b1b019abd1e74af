package crystal

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by lattice and structure constructors.
var (
	ErrSingularLattice = errors.New("crystal: lattice vectors are linearly dependent")
	ErrNoSites         = errors.New("crystal: structure has no sites")
	ErrEmptySpecies    = errors.New("crystal: site species must not be empty")
)

func validateFinite(name string, v [3]float64) error {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("crystal: %s component %d is not finite: %v", name, i, x)
		}
	}
	return nil
}
