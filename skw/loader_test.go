package skw

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-bands/bandstructure"
	"github.com/cwbudde/algo-bands/crystal"
	"github.com/cwbudde/algo-bands/internal/testutil"
)

func TestNewLoaderMissingStructure(t *testing.T) {
	bs := testutil.CubicBandStructure(t, 2, nil)
	if _, err := NewLoader(bs, bs.Structure(), 2); !errors.Is(err, ErrMissingStructure) {
		t.Fatalf("expected ErrMissingStructure, got %v", err)
	}
	if _, err := NewLoader(nil, testutil.CubicStructure(t, 3), 2); !errors.Is(err, ErrNilBandStructure) {
		t.Fatalf("expected ErrNilBandStructure, got %v", err)
	}
}

func TestNewLoaderShape(t *testing.T) {
	s := testutil.CubicStructure(t, 3)
	bs := testutil.CubicBandStructure(t, 4, s)
	d, err := NewLoader(bs, s, 2)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if d.NumKPoints() != 10 || d.NumBands() != 2 || d.NumElectrons() != 2 {
		t.Fatalf("unexpected loader: k=%d b=%d n=%d", d.NumKPoints(), d.NumBands(), d.NumElectrons())
	}
	if d.DOSWeight() != 2 || d.EFermi() != 1 {
		t.Fatalf("dosweight=%d efermi=%v", d.DOSWeight(), d.EFermi())
	}

	lv, err := d.LatticeVectors()
	if err != nil {
		t.Fatalf("LatticeVectors: %v", err)
	}
	testutil.RequireMatrixNearlyEqual(t, lv, mat.NewDense(3, 3, []float64{3, 0, 0, 0, 3, 0, 0, 0, 3}), 1e-12)
}

func TestLatticeVectorsAreColumns(t *testing.T) {
	l, err := crystal.NewLattice([3][3]float64{{1, 2, 0}, {0, 3, 0}, {0, 0, 4}})
	if err != nil {
		t.Fatalf("NewLattice: %v", err)
	}
	s, err := crystal.NewStructure(l, []crystal.Site{{Species: "X"}})
	if err != nil {
		t.Fatalf("NewStructure: %v", err)
	}
	bs, err := bandstructure.New([][3]float64{{0, 0, 0}}, map[bandstructure.Spin][][]float64{
		bandstructure.SpinUp: {{0}},
	}, 0, s)
	if err != nil {
		t.Fatalf("bandstructure.New: %v", err)
	}
	d, err := NewLoader(bs, s, 1)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	lv, _ := d.LatticeVectors()
	// First column is a = (1, 2, 0).
	if lv.At(0, 0) != 1 || lv.At(1, 0) != 2 || lv.At(2, 0) != 0 {
		t.Fatalf("first column got %v", mat.Col(nil, 0, lv))
	}
}

func TestSpinPolarizedStacking(t *testing.T) {
	s := testutil.CubicStructure(t, 3)
	bs, err := bandstructure.New([][3]float64{{0, 0, 0}, {0.5, 0, 0}}, map[bandstructure.Spin][][]float64{
		bandstructure.SpinUp:   {{1, 2}},
		bandstructure.SpinDown: {{3, 4}},
	}, 0, s)
	if err != nil {
		t.Fatalf("bandstructure.New: %v", err)
	}
	d, err := NewLoader(bs, s, 1)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if d.DOSWeight() != 1 || d.NumBands() != 2 {
		t.Fatalf("dosweight=%d bands=%d", d.DOSWeight(), d.NumBands())
	}
	if d.Energies()[0][0] != 1 || d.Energies()[1][0] != 3 {
		t.Fatalf("spin up must be stacked first: %v", d.Energies())
	}
}

func TestBandana(t *testing.T) {
	s := testutil.CubicStructure(t, 3)
	bs, err := bandstructure.New([][3]float64{{0, 0, 0}, {0.5, 0, 0}}, map[bandstructure.Spin][][]float64{
		bandstructure.SpinUp: {{-10, -9}, {-1, 1}, {10, 12}},
	}, 0, s)
	if err != nil {
		t.Fatalf("bandstructure.New: %v", err)
	}
	d, err := NewLoader(bs, s, 8)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	w, err := d.Bandana(-2, 2)
	if err != nil {
		t.Fatalf("Bandana: %v", err)
	}
	if w.NumBands() != 1 || w.Energies()[0][0] != -1 {
		t.Fatalf("window kept %v", w.Energies())
	}
	if w.NumElectrons() != 6 {
		t.Fatalf("nelect got %d want 6", w.NumElectrons())
	}
	if d.NumBands() != 3 {
		t.Fatal("Bandana modified the receiver")
	}

	if _, err := d.Bandana(20, 30); !errors.Is(err, ErrEmptyWindow) {
		t.Fatalf("expected ErrEmptyWindow, got %v", err)
	}
}

func TestBandanaRangesPerSpin(t *testing.T) {
	s := testutil.CubicStructure(t, 3)
	bs, err := bandstructure.New([][3]float64{{0, 0, 0}, {0.5, 0, 0}}, map[bandstructure.Spin][][]float64{
		bandstructure.SpinUp:   {{-10, -9}, {-1, 0}, {0.5, 1}, {10, 12}},
		bandstructure.SpinDown: {{-9, -8}, {-8, -7}, {1, 3}, {11, 12}},
	}, 0, s)
	if err != nil {
		t.Fatalf("bandstructure.New: %v", err)
	}
	d, err := NewLoader(bs, s, 8)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	full := d.BandRanges()
	if len(full) != 2 || full[0] != (BandRange{bandstructure.SpinUp, 0, 3}) || full[1] != (BandRange{bandstructure.SpinDown, 0, 3}) {
		t.Fatalf("unwindowed ranges %+v", full)
	}

	w, err := d.Bandana(-2, 2)
	if err != nil {
		t.Fatalf("Bandana: %v", err)
	}
	want := []BandRange{
		{Spin: bandstructure.SpinUp, First: 1, Last: 2},
		{Spin: bandstructure.SpinDown, First: 2, Last: 2},
	}
	got := w.BandRanges()
	if len(got) != len(want) {
		t.Fatalf("ranges got %+v want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("range %d got %+v want %+v", i, got[i], want[i])
		}
	}
	if ib := w.IBands(); len(ib) != 3 || ib[0] != 1 || ib[1] != 2 || ib[2] != 6 {
		t.Fatalf("ibands got %v", ib)
	}
	// 3 bands fully below at dosweight 1.
	if w.NumElectrons() != 5 {
		t.Fatalf("nelect got %d want 5", w.NumElectrons())
	}

	// Windowing twice keeps source indices.
	w2, err := w.Bandana(0.6, 2)
	if err != nil {
		t.Fatalf("Bandana: %v", err)
	}
	if ib := w2.IBands(); len(ib) != 2 || ib[0] != 2 || ib[1] != 6 {
		t.Fatalf("nested ibands got %v", ib)
	}
}
