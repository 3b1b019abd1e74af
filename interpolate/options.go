package interpolate

import (
	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-bands/skw"
)

// AutoWorkers resolves to the host's processing-unit count at construction.
const AutoWorkers = -1

// ReinitPolicy controls what a second Initialize call does.
type ReinitPolicy int

const (
	// ReinitAllowed re-runs the full fit and replaces the stored parameters.
	ReinitAllowed ReinitPolicy = iota
	// ReinitForbidden makes a second Initialize return ErrAlreadyInitialized.
	ReinitForbidden
)

// String returns the policy name.
func (p ReinitPolicy) String() string {
	switch p {
	case ReinitAllowed:
		return "allowed"
	case ReinitForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Config holds the construction settings of an Interpolater.
type Config struct {
	Workers     int
	Reinit      ReinitPolicy
	Loader      LoaderFactory
	Equivalence EquivalenceGenerator
	Fitter      Fitter
	Logger      zerolog.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the skw engine with automatic worker count.
func DefaultConfig() Config {
	return Config{
		Workers:     AutoWorkers,
		Reinit:      ReinitAllowed,
		Loader:      skw.DefaultLoaderFactory,
		Equivalence: skw.SphereGenerator{},
		Fitter:      skw.Fitter{},
		Logger:      zerolog.Nop(),
	}
}

// WithWorkers sets the worker hint passed to the fitter. AutoWorkers uses
// the processing-unit count; any other value is kept as given.
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		cfg.Workers = n
	}
}

// WithReinitPolicy sets the re-initialization policy.
func WithReinitPolicy(p ReinitPolicy) Option {
	return func(cfg *Config) {
		cfg.Reinit = p
	}
}

// WithLoaderFactory replaces the engine loader constructor.
func WithLoaderFactory(f LoaderFactory) Option {
	return func(cfg *Config) {
		if f != nil {
			cfg.Loader = f
		}
	}
}

// WithEquivalenceGenerator replaces the equivalence-class generator.
func WithEquivalenceGenerator(g EquivalenceGenerator) Option {
	return func(cfg *Config) {
		if g != nil {
			cfg.Equivalence = g
		}
	}
}

// WithFitter replaces the coefficient fitter.
func WithFitter(f Fitter) Option {
	return func(cfg *Config) {
		if f != nil {
			cfg.Fitter = f
		}
	}
}

// WithLogger sets a logger for debug tracing of Initialize.
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
