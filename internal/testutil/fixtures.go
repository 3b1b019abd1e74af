package testutil

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-bands/bandstructure"
	"github.com/cwbudde/algo-bands/crystal"
)

// IrreducibleCubicKPoints returns the symmetry-inequivalent points of an
// n x n x n Gamma-centred mesh of a simple cubic lattice (n even).
func IrreducibleCubicKPoints(n int) [][3]float64 {
	var out [][3]float64
	half := n / 2
	for i := 0; i <= half; i++ {
		for j := 0; j <= i; j++ {
			for l := 0; l <= j; l++ {
				out = append(out, [3]float64{
					float64(i) / float64(n),
					float64(j) / float64(n),
					float64(l) / float64(n),
				})
			}
		}
	}
	return out
}

// TightBinding evaluates a nearest-neighbour simple cubic s-band,
// E(k) = onsite - 2t (cos 2*pi*kx + cos 2*pi*ky + cos 2*pi*kz).
func TightBinding(onsite, hopping float64, k [3]float64) float64 {
	return onsite - 2*hopping*(math.Cos(2*math.Pi*k[0])+math.Cos(2*math.Pi*k[1])+math.Cos(2*math.Pi*k[2]))
}

// CubicStructure returns a one-atom simple cubic crystal.
func CubicStructure(tb testing.TB, a float64) *crystal.Structure {
	tb.Helper()
	s, err := crystal.NewStructure(crystal.Cubic(a), []crystal.Site{{Species: "Po"}})
	if err != nil {
		tb.Fatalf("structure: %v", err)
	}
	return s
}

// CubicBandStructure samples two tight-binding bands on the irreducible
// wedge of an n-mesh. Pass a nil structure to build one without metadata.
func CubicBandStructure(tb testing.TB, n int, structure *crystal.Structure) *bandstructure.BandStructure {
	tb.Helper()
	kp := IrreducibleCubicKPoints(n)
	lower := make([]float64, len(kp))
	upper := make([]float64, len(kp))
	for i, k := range kp {
		lower[i] = TightBinding(-1, 0.5, k)
		upper[i] = TightBinding(4, -0.25, k)
	}
	bs, err := bandstructure.New(kp, map[bandstructure.Spin][][]float64{
		bandstructure.SpinUp: {lower, upper},
	}, 1.0, structure)
	if err != nil {
		tb.Fatalf("band structure: %v", err)
	}
	return bs
}
