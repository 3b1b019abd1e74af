package skw

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-bands/bandstructure"
	"github.com/cwbudde/algo-bands/crystal"
)

// Loader is the fitting input: a crystal, irreducible k-points and the band
// energies sampled on them.
type Loader interface {
	Atoms() *crystal.Structure
	KPoints() [][3]float64
	// Energies returns eigenvalues indexed [band][kpoint]. Spin channels
	// are stacked, up first.
	Energies() [][]float64
	NumKPoints() int
	NumElectrons() int
	// LatticeVectors returns the 3x3 direct lattice with vectors as columns.
	LatticeVectors() (*mat.Dense, error)
}

// Data is the default [Loader] built from a band structure.
type Data struct {
	atoms     *crystal.Structure
	kpoints   [][3]float64
	ebands    [][]float64
	nelect    int
	efermi    float64
	dosweight int
	spins     []bandstructure.Spin
	// perSpin is the band count of each spin channel before windowing.
	perSpin int
	// ibands holds the stacked source index of each kept band.
	ibands []int
}

// BandRange is the span of bands kept from one spin channel, as 0-based
// indices into that channel.
type BandRange struct {
	Spin        bandstructure.Spin
	First, Last int
}

var _ Loader = (*Data)(nil)

// NewLoader builds fitting input from bs, using structure for the crystal.
// nelect is stored for occupation bookkeeping and not validated.
func NewLoader(bs *bandstructure.BandStructure, structure *crystal.Structure, nelect int) (*Data, error) {
	if bs == nil {
		return nil, ErrNilBandStructure
	}
	if structure == nil {
		return nil, ErrMissingStructure
	}
	if bs.NumKPoints() == 0 {
		return nil, ErrNoKPoints
	}

	d := &Data{
		atoms:     structure,
		kpoints:   bs.KPoints(),
		nelect:    nelect,
		efermi:    bs.EFermi(),
		dosweight: 2,
		spins:     bs.Spins(),
		perSpin:   bs.NumBands(),
	}
	if bs.IsSpinPolarized() {
		d.dosweight = 1
	}
	for _, spin := range d.spins {
		d.ebands = append(d.ebands, bs.Bands(spin)...)
	}
	d.ibands = make([]int, len(d.ebands))
	for b, e := range d.ebands {
		if len(e) != len(d.kpoints) {
			return nil, fmt.Errorf("%w: band %d", ErrShapeMismatch, b)
		}
		d.ibands[b] = b
	}
	return d, nil
}

// Atoms returns the crystal structure.
func (d *Data) Atoms() *crystal.Structure { return d.atoms }

// KPoints returns the fractional k-points.
func (d *Data) KPoints() [][3]float64 { return d.kpoints }

// Energies returns the stacked band energies.
func (d *Data) Energies() [][]float64 { return d.ebands }

// NumKPoints returns the number of k-points.
func (d *Data) NumKPoints() int { return len(d.kpoints) }

// NumBands returns the number of stacked bands.
func (d *Data) NumBands() int { return len(d.ebands) }

// NumElectrons returns the electron count.
func (d *Data) NumElectrons() int { return d.nelect }

// EFermi returns the Fermi level.
func (d *Data) EFermi() float64 { return d.efermi }

// DOSWeight is 2 for spin-degenerate bands and 1 for spin-polarized ones.
func (d *Data) DOSWeight() int { return d.dosweight }

// Spins returns the stacked spin channels in order.
func (d *Data) Spins() []bandstructure.Spin { return d.spins }

// LatticeVectors returns the direct lattice with vectors as columns, in
// Angstrom.
func (d *Data) LatticeVectors() (*mat.Dense, error) {
	if d.atoms == nil {
		return nil, ErrMissingStructure
	}
	return mat.DenseCopyOf(d.atoms.Lattice.Matrix().T()), nil
}

// Bandana returns a copy restricted to bands that enter [emin, emax]. Bands
// lying fully below the window are counted out of the electron number.
func (d *Data) Bandana(emin, emax float64) (*Data, error) {
	out := *d
	out.ebands = nil
	out.ibands = nil
	below := 0
	for b, e := range d.ebands {
		lo, hi := e[0], e[0]
		for _, v := range e[1:] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		switch {
		case hi < emin:
			below++
		case lo > emax:
		default:
			out.ebands = append(out.ebands, e)
			out.ibands = append(out.ibands, d.ibands[b])
		}
	}
	if len(out.ebands) == 0 {
		return nil, ErrEmptyWindow
	}
	out.nelect = d.nelect - d.dosweight*below
	return &out, nil
}

// IBands returns the stacked source index of every band, in order.
func (d *Data) IBands() []int {
	return append([]int(nil), d.ibands...)
}

// BandRanges reports, per spin channel, the first and last band kept. Spins
// with no kept band are omitted.
func (d *Data) BandRanges() []BandRange {
	var out []BandRange
	for _, idx := range d.ibands {
		spin := d.spins[idx/d.perSpin]
		band := idx % d.perSpin
		if n := len(out); n > 0 && out[n-1].Spin == spin {
			out[n-1].First = min(out[n-1].First, band)
			out[n-1].Last = max(out[n-1].Last, band)
			continue
		}
		out = append(out, BandRange{Spin: spin, First: band, Last: band})
	}
	return out
}

// LoaderFunc adapts a function to a loader factory.
type LoaderFunc func(bs *bandstructure.BandStructure, s *crystal.Structure, nelect int) (Loader, error)

// NewLoader calls f.
func (f LoaderFunc) NewLoader(bs *bandstructure.BandStructure, s *crystal.Structure, nelect int) (Loader, error) {
	return f(bs, s, nelect)
}

// DefaultLoaderFactory builds [Data] loaders.
var DefaultLoaderFactory = LoaderFunc(func(bs *bandstructure.BandStructure, s *crystal.Structure, nelect int) (Loader, error) {
	d, err := NewLoader(bs, s, nelect)
	if err != nil {
		return nil, err
	}
	return d, nil
})
