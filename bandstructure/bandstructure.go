// Package bandstructure holds electronic eigenvalues sampled at reciprocal-
// space points, together with the crystal structure they were computed for.
package bandstructure

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-bands/crystal"
)

// Spin labels a spin channel.
type Spin int

const (
	SpinUp   Spin = 1
	SpinDown Spin = -1
)

// String returns "up" or "down".
func (s Spin) String() string {
	switch s {
	case SpinUp:
		return "up"
	case SpinDown:
		return "down"
	default:
		return fmt.Sprintf("Spin(%d)", int(s))
	}
}

// Errors returned by New.
var (
	ErrNoKPoints     = errors.New("bandstructure: no k-points")
	ErrNoBands       = errors.New("bandstructure: no eigenvalues")
	ErrInvalidSpin   = errors.New("bandstructure: invalid spin channel")
	ErrRaggedBands   = errors.New("bandstructure: band length differs from k-point count")
	ErrBandCountSpin = errors.New("bandstructure: spin channels have different band counts")
)

// BandStructure is an immutable set of eigenvalues E[spin][band][kpoint] in
// eV at fractional reciprocal coordinates.
type BandStructure struct {
	kpoints   [][3]float64
	energies  map[Spin][][]float64
	efermi    float64
	structure *crystal.Structure
}

// New validates and copies the inputs. structure may be nil; consumers that
// need structural metadata report that themselves.
func New(kpoints [][3]float64, energies map[Spin][][]float64, efermi float64, structure *crystal.Structure) (*BandStructure, error) {
	if len(kpoints) == 0 {
		return nil, ErrNoKPoints
	}
	if len(energies) == 0 {
		return nil, ErrNoBands
	}

	nb := -1
	cp := make(map[Spin][][]float64, len(energies))
	for spin, bands := range energies {
		if spin != SpinUp && spin != SpinDown {
			return nil, fmt.Errorf("%w: %d", ErrInvalidSpin, int(spin))
		}
		if len(bands) == 0 {
			return nil, ErrNoBands
		}
		if nb >= 0 && len(bands) != nb {
			return nil, ErrBandCountSpin
		}
		nb = len(bands)

		out := make([][]float64, len(bands))
		for b, e := range bands {
			if len(e) != len(kpoints) {
				return nil, fmt.Errorf("%w: spin %s band %d has %d values, want %d",
					ErrRaggedBands, spin, b, len(e), len(kpoints))
			}
			for k, v := range e {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, fmt.Errorf("bandstructure: spin %s band %d kpoint %d is not finite", spin, b, k)
				}
			}
			out[b] = append([]float64(nil), e...)
		}
		cp[spin] = out
	}

	return &BandStructure{
		kpoints:   append([][3]float64(nil), kpoints...),
		energies:  cp,
		efermi:    efermi,
		structure: structure,
	}, nil
}

// NumKPoints returns the number of sampled k-points.
func (b *BandStructure) NumKPoints() int { return len(b.kpoints) }

// NumBands returns the number of bands per spin channel.
func (b *BandStructure) NumBands() int {
	for _, bands := range b.energies {
		return len(bands)
	}
	return 0
}

// IsSpinPolarized reports whether both spin channels are present.
func (b *BandStructure) IsSpinPolarized() bool { return len(b.energies) == 2 }

// Spins returns the spin channels present, up first.
func (b *BandStructure) Spins() []Spin {
	out := make([]Spin, 0, len(b.energies))
	for s := range b.energies {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// KPoints returns a copy of the fractional k-point coordinates.
func (b *BandStructure) KPoints() [][3]float64 {
	return append([][3]float64(nil), b.kpoints...)
}

// Bands returns a copy of the eigenvalues for one spin channel, indexed
// [band][kpoint]. It returns nil if the channel is absent.
func (b *BandStructure) Bands(spin Spin) [][]float64 {
	bands, ok := b.energies[spin]
	if !ok {
		return nil
	}
	out := make([][]float64, len(bands))
	for i, e := range bands {
		out[i] = append([]float64(nil), e...)
	}
	return out
}

// EFermi returns the Fermi level in eV.
func (b *BandStructure) EFermi() float64 { return b.efermi }

// Structure returns the crystal structure, or nil if none was attached.
func (b *BandStructure) Structure() *crystal.Structure { return b.structure }
