// Package bandfile reads band structures from YAML, TOML or JSON files and
// writes evaluated energies as tab-separated tables.
package bandfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-bands/bandstructure"
	"github.com/cwbudde/algo-bands/crystal"
)

// ErrUnknownSpin is returned for a bands key that names no spin channel.
var ErrUnknownSpin = errors.New("bandfile: unknown spin channel")

// Site is the on-disk form of a crystal site.
type Site struct {
	Species string     `json:"species" yaml:"species" toml:"species"`
	Frac    [3]float64 `json:"frac" yaml:"frac" toml:"frac"`
	Magmom  float64    `json:"magmom,omitempty" yaml:"magmom,omitempty" toml:"magmom,omitempty"`
}

// File is the on-disk form of a band structure. Lattice and Sites may be
// omitted, which yields a band structure without crystal metadata.
type File struct {
	Lattice *[3][3]float64         `json:"lattice,omitempty" yaml:"lattice,omitempty" toml:"lattice,omitempty"`
	Sites   []Site                 `json:"sites,omitempty" yaml:"sites,omitempty" toml:"sites,omitempty"`
	EFermi  float64                `json:"efermi" yaml:"efermi" toml:"efermi"`
	NElect  int                    `json:"nelect,omitempty" yaml:"nelect,omitempty" toml:"nelect,omitempty"`
	KPoints [][3]float64           `json:"kpoints" yaml:"kpoints" toml:"kpoints"`
	Bands   map[string][][]float64 `json:"bands" yaml:"bands" toml:"bands"`
}

// Read loads a file, choosing the decoder by extension.
// Supports: .yaml/.yml, .json, .toml
func Read(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &f)
	case ".json":
		err = json.Unmarshal(b, &f)
	case ".toml":
		err = toml.Unmarshal(b, &f)
	default:
		return nil, fmt.Errorf("bandfile: unsupported extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("bandfile: decode %s: %w", path, err)
	}
	return &f, nil
}

// Load reads path and builds the band structure it describes.
func Load(path string) (*bandstructure.BandStructure, *File, error) {
	f, err := Read(path)
	if err != nil {
		return nil, nil, err
	}
	bs, err := f.BandStructure()
	if err != nil {
		return nil, nil, fmt.Errorf("bandfile: %s: %w", path, err)
	}
	return bs, f, nil
}

// Structure builds the crystal structure, or returns nil if the file has
// no lattice.
func (f *File) Structure() (*crystal.Structure, error) {
	if f.Lattice == nil {
		return nil, nil
	}
	l, err := crystal.NewLattice(*f.Lattice)
	if err != nil {
		return nil, err
	}
	sites := make([]crystal.Site, len(f.Sites))
	for i, s := range f.Sites {
		sites[i] = crystal.Site{Species: s.Species, Frac: s.Frac, Magmom: s.Magmom}
	}
	return crystal.NewStructure(l, sites)
}

// BandStructure builds the band structure.
func (f *File) BandStructure() (*bandstructure.BandStructure, error) {
	s, err := f.Structure()
	if err != nil {
		return nil, err
	}
	energies := make(map[bandstructure.Spin][][]float64, len(f.Bands))
	for key, bands := range f.Bands {
		spin, err := ParseSpin(key)
		if err != nil {
			return nil, err
		}
		energies[spin] = bands
	}
	return bandstructure.New(f.KPoints, energies, f.EFermi, s)
}

// ParseSpin accepts "up", "down" or the integers 1 and -1 in any scalar form.
func ParseSpin(key string) (bandstructure.Spin, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "up":
		return bandstructure.SpinUp, nil
	case "down":
		return bandstructure.SpinDown, nil
	}
	n, err := cast.ToIntE(strings.TrimSpace(key))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSpin, key)
	}
	switch bandstructure.Spin(n) {
	case bandstructure.SpinUp, bandstructure.SpinDown:
		return bandstructure.Spin(n), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSpin, key)
	}
}

// WriteTable writes one row per k-point: the fractional coordinates and then
// the energy of every band.
func WriteTable(w io.Writer, kpoints [][3]float64, energies [][]float64) error {
	header := []string{"kx", "ky", "kz"}
	for b := range energies {
		header = append(header, fmt.Sprintf("band%d", b+1))
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, "\t")); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for k, kp := range kpoints {
		row = row[:0]
		for _, c := range kp {
			row = append(row, fmt.Sprintf("%.6f", c))
		}
		for b := range energies {
			row = append(row, fmt.Sprintf("%.8f", energies[b][k]))
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}
