package interpolate

import (
	"errors"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-bands/bandstructure"
	"github.com/cwbudde/algo-bands/crystal"
	"github.com/cwbudde/algo-bands/internal/cpu"
	"github.com/cwbudde/algo-bands/skw"
)

// EquivalenceOversampling is the ratio of equivalence classes to sampled
// k-points requested from the generator.
const EquivalenceOversampling = 5

// Errors returned by the adapter itself. Engine errors pass through.
var (
	ErrAlreadyInitialized = errors.New("interpolate: already initialized")
	ErrNotInitialized     = errors.New("interpolate: not initialized")
)

// LoaderFactory builds the engine input from a band structure.
type LoaderFactory interface {
	NewLoader(bs *bandstructure.BandStructure, s *crystal.Structure, nelect int) (skw.Loader, error)
}

// EquivalenceGenerator partitions lattice vectors into symmetry stars.
type EquivalenceGenerator interface {
	Equivalences(atoms *crystal.Structure, nkpt int, magmom []float64) ([]skw.Star, error)
}

// Fitter computes interpolation coefficients. workers is a parallelism hint.
type Fitter interface {
	Fit(data skw.Loader, equivalences []skw.Star, workers int) (*skw.Coefficients, error)
}

// Parameters is the fitted state handed to evaluation.
type Parameters struct {
	Equivalences []skw.Star
	// LatticeVectors is the 3x3 direct lattice, vectors as columns.
	LatticeVectors *mat.Dense
	Coefficients   *skw.Coefficients
}

// Interpolater fits and evaluates band energies for one band structure.
type Interpolater struct {
	bs      *bandstructure.BandStructure
	nelect  int
	workers int
	cfg     Config

	params *Parameters
}

// New returns an uninitialized Interpolater. It performs no engine calls.
// The worker count is resolved here and not re-read later.
func New(bs *bandstructure.BandStructure, numElectrons int, opts ...Option) *Interpolater {
	cfg := ApplyOptions(opts...)
	workers := cfg.Workers
	if workers == AutoWorkers {
		workers = cpu.ProcessingUnits()
	}
	return &Interpolater{
		bs:      bs,
		nelect:  numElectrons,
		workers: workers,
		cfg:     cfg,
	}
}

// Initialize runs the fitting pipeline and stores its result. On error the
// previous state is kept.
func (ip *Interpolater) Initialize() error {
	if ip.params != nil && ip.cfg.Reinit == ReinitForbidden {
		return ErrAlreadyInitialized
	}

	log := ip.cfg.Logger
	start := time.Now()

	var structure *crystal.Structure
	if ip.bs != nil {
		structure = ip.bs.Structure()
	}
	data, err := ip.cfg.Loader.NewLoader(ip.bs, structure, ip.nelect)
	if err != nil {
		return err
	}
	log.Debug().
		Int("kpoints", data.NumKPoints()).
		Int("electrons", ip.nelect).
		Msg("loaded band structure")

	target := EquivalenceOversampling * data.NumKPoints()
	equivalences, err := ip.cfg.Equivalence.Equivalences(data.Atoms(), target, nil)
	if err != nil {
		return err
	}
	log.Debug().Int("target", target).Int("stars", len(equivalences)).Msg("generated equivalences")

	lattvec, err := data.LatticeVectors()
	if err != nil {
		return err
	}

	coeffs, err := ip.cfg.Fitter.Fit(data, equivalences, ip.workers)
	if err != nil {
		return err
	}
	log.Debug().
		Int("workers", ip.workers).
		Dur("elapsed", time.Since(start)).
		Msg("fitted coefficients")

	ip.params = &Parameters{
		Equivalences:   equivalences,
		LatticeVectors: lattvec,
		Coefficients:   coeffs,
	}
	return nil
}

// Parameters returns the fitted state and whether Initialize has succeeded.
func (ip *Interpolater) Parameters() (Parameters, bool) {
	if ip.params == nil {
		return Parameters{}, false
	}
	return *ip.params, true
}

// Initialized reports whether parameters are available.
func (ip *Interpolater) Initialized() bool { return ip.params != nil }

// Workers returns the resolved worker count.
func (ip *Interpolater) Workers() int { return ip.workers }

// NumElectrons returns the electron count.
func (ip *Interpolater) NumElectrons() int { return ip.nelect }

// BandStructure returns the band structure being interpolated.
func (ip *Interpolater) BandStructure() *bandstructure.BandStructure { return ip.bs }

// ReinitPolicy returns the configured re-initialization policy.
func (ip *Interpolater) ReinitPolicy() ReinitPolicy { return ip.cfg.Reinit }
