package skw

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-bands/bandstructure"
	"github.com/cwbudde/algo-bands/internal/testutil"
)

func fitCubic(t *testing.T, workers int) (*Data, []Star, *Coefficients) {
	t.Helper()
	s := testutil.CubicStructure(t, 3)
	bs := testutil.CubicBandStructure(t, 4, s)
	data, err := NewLoader(bs, s, 2)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	stars, err := SphereGenerator{}.Equivalences(s, 5*data.NumKPoints(), nil)
	if err != nil {
		t.Fatalf("Equivalences: %v", err)
	}
	coeffs, err := Fitter{}.Fit(data, stars, workers)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return data, stars, coeffs
}

func TestFitPassesThroughSamples(t *testing.T) {
	data, stars, coeffs := fitCubic(t, 2)
	if coeffs.NumBands() != 2 || coeffs.NumStars() != len(stars) {
		t.Fatalf("coefficient shape %dx%d", coeffs.NumBands(), coeffs.NumStars())
	}

	got, err := Eval(stars, coeffs, data.KPoints())
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	for b, want := range data.Energies() {
		testutil.RequireSliceNearlyEqual(t, got[b], want, 1e-8)
	}
}

func TestFitWorkerCountDoesNotChangeResult(t *testing.T) {
	_, _, serial := fitCubic(t, 1)
	_, _, parallel := fitCubic(t, 8)
	_, _, hint := fitCubic(t, 0)
	for b := 0; b < serial.NumBands(); b++ {
		testutil.RequireSliceNearlyEqual(t, parallel.Band(b), serial.Band(b), 1e-12)
		testutil.RequireSliceNearlyEqual(t, hint.Band(b), serial.Band(b), 1e-12)
	}
}

func TestFitRespectsSymmetry(t *testing.T) {
	_, stars, coeffs := fitCubic(t, 1)
	k := [3]float64{0.13, 0.27, 0.41}
	images := [][3]float64{
		k,
		{k[1], k[0], k[2]},
		{-k[0], k[1], k[2]},
		{k[2], -k[1], k[0]},
		{-k[0], -k[1], -k[2]},
	}
	got, err := Eval(stars, coeffs, images)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	for b := range got {
		for i := 1; i < len(images); i++ {
			if math.Abs(got[b][i]-got[b][0]) > 1e-10 {
				t.Fatalf("band %d: E(%v)=%v differs from E(%v)=%v", b, images[i], got[b][i], k, got[b][0])
			}
		}
	}
}

func TestFitSingleKPoint(t *testing.T) {
	s := testutil.CubicStructure(t, 3)
	bs, err := bandstructure.New([][3]float64{{0, 0, 0}}, map[bandstructure.Spin][][]float64{
		bandstructure.SpinUp: {{-3.5}},
	}, 0, s)
	if err != nil {
		t.Fatalf("bandstructure.New: %v", err)
	}
	data, err := NewLoader(bs, s, 1)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	stars, err := SphereGenerator{}.Equivalences(s, 5, nil)
	if err != nil {
		t.Fatalf("Equivalences: %v", err)
	}
	coeffs, err := Fitter{}.Fit(data, stars, 1)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	got, _ := Eval(stars, coeffs, [][3]float64{{0.3, 0.1, 0}})
	if math.Abs(got[0][0]+3.5) > 1e-12 {
		t.Fatalf("constant band got %v", got[0][0])
	}
}

func TestFitErrors(t *testing.T) {
	s := testutil.CubicStructure(t, 3)
	bs := testutil.CubicBandStructure(t, 4, s)
	data, err := NewLoader(bs, s, 2)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	if _, err := (Fitter{}).Fit(data, nil, 1); !errors.Is(err, ErrNoEquivalences) {
		t.Fatalf("expected ErrNoEquivalences, got %v", err)
	}

	few, err := SphereGenerator{}.Equivalences(s, 3, nil)
	if err != nil {
		t.Fatalf("Equivalences: %v", err)
	}
	if _, err := (Fitter{}).Fit(data, few, 1); !errors.Is(err, ErrTooFewStars) {
		t.Fatalf("expected ErrTooFewStars, got %v", err)
	}
}

func TestFitDuplicateKPointsIsSingular(t *testing.T) {
	s := testutil.CubicStructure(t, 3)
	kp := [][3]float64{{0, 0, 0}, {0.25, 0, 0}, {0.25, 0, 0}, {0.5, 0.5, 0}}
	bs, err := bandstructure.New(kp, map[bandstructure.Spin][][]float64{
		bandstructure.SpinUp: {{0, 1, 1, 2}},
	}, 0, s)
	if err != nil {
		t.Fatalf("bandstructure.New: %v", err)
	}
	data, err := NewLoader(bs, s, 1)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	stars, err := SphereGenerator{}.Equivalences(s, 20, nil)
	if err != nil {
		t.Fatalf("Equivalences: %v", err)
	}
	if _, err := (Fitter{}).Fit(data, stars, 1); !errors.Is(err, ErrSingularSystem) {
		t.Fatalf("expected ErrSingularSystem, got %v", err)
	}
}
