package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-bands/bandfile"
	"github.com/cwbudde/algo-bands/bandstructure"
	"github.com/cwbudde/algo-bands/crystal"
	"github.com/cwbudde/algo-bands/internal/config"
	"github.com/cwbudde/algo-bands/interpolate"
	"github.com/cwbudde/algo-bands/skw"
)

// app carries state shared by every subcommand after flag resolution.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfgPath  string
	logLevel string
	workers  string

	cfg config.Config
	log zerolog.Logger
}

func buildRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, cfg: config.Default()}

	root := &cobra.Command{
		Use:           "bandinterp",
		Short:         "Fit and evaluate SKW band interpolations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "Config file (.yaml, .yml, .json, .toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	root.PersistentFlags().StringVar(&a.workers, "workers", "", "Fit workers: auto or a count (overrides config)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.resolve()
	}

	root.AddCommand(newFitCmd(a), newEvalCmd(a), newPlotCmd(a))
	return root
}

// resolve merges the config file and persistent flags and sets up logging.
func (a *app) resolve() error {
	if a.cfgPath != "" {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		a.cfg = cfg
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	if a.workers != "" {
		a.cfg.Workers = a.workers
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	lvl, err := zerolog.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	cw := zerolog.ConsoleWriter{Out: a.stderr, TimeFormat: time.Kitchen, NoColor: !isTerminal(a.stderr)}
	a.log = zerolog.New(cw).
		Level(lvl).
		With().Timestamp().Logger()
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// initialize loads a band file and fits it.
func (a *app) initialize(path string) (*interpolate.Interpolater, *bandfile.File, error) {
	bs, file, err := bandfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	a.log.Info().
		Str("file", path).
		Int("kpoints", bs.NumKPoints()).
		Int("bands", bs.NumBands()).
		Bool("spin_polarized", bs.IsSpinPolarized()).
		Msg("loaded bands")

	opts, err := a.cfg.Options()
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, interpolate.WithLogger(a.log))
	if w := a.cfg.EnergyWindow; len(w) == 2 {
		emin, emax := w[0], w[1]
		opts = append(opts, interpolate.WithLoaderFactory(skw.LoaderFunc(
			func(bs *bandstructure.BandStructure, s *crystal.Structure, nelect int) (skw.Loader, error) {
				data, err := skw.NewLoader(bs, s, nelect)
				if err != nil {
					return nil, err
				}
				band, err := data.Bandana(emin, emax)
				if err != nil {
					return nil, err
				}
				// Band numbers are 1-based, matching the eval table columns.
				for _, r := range band.BandRanges() {
					a.log.Info().
						Str("spin", r.Spin.String()).
						Int("first", r.First+1).
						Int("last", r.Last+1).
						Msg("including bands")
				}
				return band, nil
			})))
	}

	ip := interpolate.New(bs, file.NElect, opts...)
	start := time.Now()
	if err := ip.Initialize(); err != nil {
		return nil, nil, err
	}
	a.log.Info().Int("workers", ip.Workers()).Dur("elapsed", time.Since(start)).Msg("initialized")
	return ip, file, nil
}
