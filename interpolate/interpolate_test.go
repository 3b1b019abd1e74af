package interpolate

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-bands/bandstructure"
	"github.com/cwbudde/algo-bands/crystal"
	"github.com/cwbudde/algo-bands/internal/cpu"
	"github.com/cwbudde/algo-bands/internal/testutil"
	"github.com/cwbudde/algo-bands/skw"
)

// recordingGenerator returns fixed stars and remembers its arguments.
type recordingGenerator struct {
	calls  int
	nkpt   int
	magmom []float64
	atoms  *crystal.Structure
}

func (g *recordingGenerator) Equivalences(atoms *crystal.Structure, nkpt int, magmom []float64) ([]skw.Star, error) {
	g.calls++
	g.nkpt = nkpt
	g.magmom = magmom
	g.atoms = atoms
	return []skw.Star{{{0, 0, 0}}, {{1, 0, 0}, {-1, 0, 0}}}, nil
}

// countingFitter returns coefficients that encode the call number.
type countingFitter struct {
	calls   int
	workers int
	err     error
}

func (f *countingFitter) Fit(data skw.Loader, equivalences []skw.Star, workers int) (*skw.Coefficients, error) {
	f.calls++
	f.workers = workers
	if f.err != nil {
		return nil, f.err
	}
	m := mat.NewDense(len(data.Energies()), len(equivalences), nil)
	for b := range data.Energies() {
		m.Set(b, 0, float64(f.calls))
	}
	return skw.NewCoefficients(m), nil
}

type failingLoader struct{ err error }

func (l failingLoader) NewLoader(_ *bandstructure.BandStructure, _ *crystal.Structure, _ int) (skw.Loader, error) {
	return nil, l.err
}

func newTestInterpolater(t *testing.T, opts ...Option) (*Interpolater, *recordingGenerator, *countingFitter) {
	t.Helper()
	gen := &recordingGenerator{}
	fit := &countingFitter{}
	bs := testutil.CubicBandStructure(t, 4, testutil.CubicStructure(t, 3))
	base := []Option{WithEquivalenceGenerator(gen), WithFitter(fit), WithWorkers(3)}
	return New(bs, 2, append(base, opts...)...), gen, fit
}

func TestInitializePopulatesParameters(t *testing.T) {
	ip, gen, fit := newTestInterpolater(t)

	_, ok := ip.Parameters()
	require.False(t, ok)
	require.False(t, ip.Initialized())

	require.NoError(t, ip.Initialize())

	p, ok := ip.Parameters()
	require.True(t, ok)
	assert.NotEmpty(t, p.Equivalences)
	require.NotNil(t, p.LatticeVectors)
	require.NotNil(t, p.Coefficients)
	assert.Equal(t, 2, p.Coefficients.NumBands())
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, fit.calls)
	assert.Same(t, ip.BandStructure().Structure(), gen.atoms)
}

func TestLatticeMatrixIsDirectLattice(t *testing.T) {
	l, err := crystal.NewLattice([3][3]float64{{3, 0.5, 0}, {0, 3.2, 0}, {0.1, 0, 4}})
	require.NoError(t, err)
	s, err := crystal.NewStructure(l, []crystal.Site{{Species: "X"}})
	require.NoError(t, err)

	bs := testutil.CubicBandStructure(t, 2, s)
	ip := New(bs, 1, WithEquivalenceGenerator(&recordingGenerator{}), WithFitter(&countingFitter{}))
	require.NoError(t, ip.Initialize())

	p, _ := ip.Parameters()
	r, c := p.LatticeVectors.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 3, c)
	testutil.RequireMatrixNearlyEqual(t, p.LatticeVectors, l.Matrix().T(), 1e-12)
}

func TestWorkerResolution(t *testing.T) {
	t.Cleanup(cpu.ResetDetection)
	bs := testutil.CubicBandStructure(t, 2, testutil.CubicStructure(t, 3))

	cpu.SetForcedProcessingUnits(13)
	assert.Equal(t, 13, New(bs, 1).Workers())
	assert.Equal(t, 13, New(bs, 1, WithWorkers(AutoWorkers)).Workers())
	assert.Equal(t, 5, New(bs, 1, WithWorkers(5)).Workers())

	// Resolved once: later host changes do not affect an existing adapter.
	ip := New(bs, 1)
	cpu.SetForcedProcessingUnits(2)
	assert.Equal(t, 13, ip.Workers())

	cpu.ResetDetection()
	assert.Equal(t, runtime.NumCPU(), New(bs, 1).Workers())
}

func TestWorkersPassedToFitter(t *testing.T) {
	ip, _, fit := newTestInterpolater(t)
	require.NoError(t, ip.Initialize())
	assert.Equal(t, 3, fit.workers)
}

func TestEquivalenceTargetIsFiveTimesKPoints(t *testing.T) {
	ip, gen, _ := newTestInterpolater(t)
	require.NoError(t, ip.Initialize())

	nk := ip.BandStructure().NumKPoints()
	require.Equal(t, 10, nk)
	assert.Equal(t, 5*nk, gen.nkpt)
	assert.Nil(t, gen.magmom)
}

func TestMissingStructurePropagates(t *testing.T) {
	gen := &recordingGenerator{}
	fit := &countingFitter{}
	bs := testutil.CubicBandStructure(t, 2, nil)
	ip := New(bs, 1, WithEquivalenceGenerator(gen), WithFitter(fit))

	err := ip.Initialize()
	require.ErrorIs(t, err, skw.ErrMissingStructure)
	assert.False(t, ip.Initialized())
	assert.Zero(t, gen.calls)
	assert.Zero(t, fit.calls)
}

func TestErrorsAreNotWrapped(t *testing.T) {
	boom := errors.New("fit diverged")

	ip, _, fit := newTestInterpolater(t)
	fit.err = boom
	err := ip.Initialize()
	assert.Same(t, boom, err)
	assert.False(t, ip.Initialized())

	loadErr := errors.New("no metadata")
	ip2, _, _ := newTestInterpolater(t, WithLoaderFactory(failingLoader{err: loadErr}))
	assert.Same(t, loadErr, ip2.Initialize())
}

func TestFailedReinitializeKeepsPreviousParameters(t *testing.T) {
	ip, _, fit := newTestInterpolater(t)
	require.NoError(t, ip.Initialize())
	before, _ := ip.Parameters()

	fit.err = errors.New("transient")
	require.Error(t, ip.Initialize())

	after, ok := ip.Parameters()
	require.True(t, ok)
	assert.Same(t, before.Coefficients, after.Coefficients)
}

func TestReinitializeAllowedReplacesParameters(t *testing.T) {
	ip, _, fit := newTestInterpolater(t)
	require.NoError(t, ip.Initialize())
	first, _ := ip.Parameters()

	require.NoError(t, ip.Initialize())
	second, ok := ip.Parameters()
	require.True(t, ok)

	assert.Equal(t, 2, fit.calls)
	assert.NotSame(t, first.Coefficients, second.Coefficients)
	assert.Equal(t, 1.0, first.Coefficients.At(0, 0))
	assert.Equal(t, 2.0, second.Coefficients.At(0, 0))
	assert.Len(t, second.Equivalences, len(first.Equivalences))
}

func TestReinitializeForbidden(t *testing.T) {
	ip, _, fit := newTestInterpolater(t, WithReinitPolicy(ReinitForbidden))
	require.NoError(t, ip.Initialize())
	first, _ := ip.Parameters()

	require.ErrorIs(t, ip.Initialize(), ErrAlreadyInitialized)
	second, _ := ip.Parameters()
	assert.Same(t, first.Coefficients, second.Coefficients)
	assert.Equal(t, 1, fit.calls)
	assert.Equal(t, ReinitForbidden, ip.ReinitPolicy())
}

func TestNoEngineCallsAtConstruction(t *testing.T) {
	_, gen, fit := newTestInterpolater(t)
	assert.Zero(t, gen.calls)
	assert.Zero(t, fit.calls)
}

func TestEvaluationRequiresInitialize(t *testing.T) {
	ip, _, _ := newTestInterpolater(t)
	_, err := ip.Energies([][3]float64{{0, 0, 0}})
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, _, err = ip.EnergiesAndVelocities(nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = ip.EnergiesOnGrid([3]int{2, 2, 2})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestReinitPolicyString(t *testing.T) {
	assert.Equal(t, "allowed", ReinitAllowed.String())
	assert.Equal(t, "forbidden", ReinitForbidden.String())
	assert.Equal(t, "unknown", ReinitPolicy(9).String())
}
