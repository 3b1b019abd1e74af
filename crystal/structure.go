package crystal

import (
	"fmt"
	"math"
)

// Site is an atom at fractional coordinates in the unit cell.
type Site struct {
	Species string
	Frac    [3]float64
	// Magmom is an optional collinear magnetic moment in Bohr magnetons.
	Magmom float64
}

// Structure is a lattice decorated with atomic sites.
type Structure struct {
	Lattice Lattice
	Sites   []Site
}

// NewStructure validates the sites and returns a structure with fractional
// coordinates wrapped into [0, 1).
func NewStructure(lattice Lattice, sites []Site) (*Structure, error) {
	if lattice.rows == nil {
		return nil, ErrSingularLattice
	}
	if len(sites) == 0 {
		return nil, ErrNoSites
	}

	out := make([]Site, len(sites))
	for i, s := range sites {
		if s.Species == "" {
			return nil, fmt.Errorf("site %d: %w", i, ErrEmptySpecies)
		}
		if err := validateFinite(fmt.Sprintf("site %d", i), s.Frac); err != nil {
			return nil, err
		}
		s.Frac = WrapFrac(s.Frac)
		out[i] = s
	}
	return &Structure{Lattice: lattice, Sites: out}, nil
}

// NumSites returns the number of atoms in the cell.
func (s *Structure) NumSites() int { return len(s.Sites) }

// Species returns the distinct species in order of first appearance.
func (s *Structure) Species() []string {
	seen := make(map[string]bool, len(s.Sites))
	var out []string
	for _, site := range s.Sites {
		if !seen[site.Species] {
			seen[site.Species] = true
			out = append(out, site.Species)
		}
	}
	return out
}

// Magmoms returns the per-site magnetic moments.
func (s *Structure) Magmoms() []float64 {
	out := make([]float64, len(s.Sites))
	for i, site := range s.Sites {
		out[i] = site.Magmom
	}
	return out
}

// WrapFrac maps fractional coordinates into [0, 1).
func WrapFrac(f [3]float64) [3]float64 {
	for i := range f {
		f[i] -= math.Floor(f[i])
		if f[i] >= 1 {
			f[i] = 0
		}
	}
	return f
}
