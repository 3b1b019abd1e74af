package skw

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-bands/crystal"
	"github.com/cwbudde/algo-bands/symmetry"
)

// maxRadiusSteps bounds the sphere-growing loop in Equivalences.
const maxRadiusSteps = 64

// Vec3i is a direct-lattice vector in fractional (integer) coordinates.
type Vec3i [3]int

// Star is an equivalence class of lattice vectors related by the point
// group. The first star of an equivalence set is always {0}.
type Star []Vec3i

// Radius returns the Cartesian length of the star's vectors in Angstrom.
func (s Star) Radius(l crystal.Lattice) float64 {
	if len(s) == 0 {
		return 0
	}
	return cartLength(l, s[0])
}

func cartLength(l crystal.Lattice, v Vec3i) float64 {
	c := l.FractionalToCartesian([3]float64{float64(v[0]), float64(v[1]), float64(v[2])})
	return math.Sqrt(c[0]*c[0] + c[1]*c[1] + c[2]*c[2])
}

// SphereGenerator builds equivalence classes from the lattice points inside
// a sphere. The sphere grows until it holds at least the requested number of
// stars; the innermost stars are kept.
type SphereGenerator struct {
	// SymmetryTolerance is forwarded to the space-group search. Zero uses
	// the package defaults.
	SymmetryTolerance float64
}

// Equivalences returns nkpt stars for atoms. magmom is optional; nil means
// no magnetic moments.
func (g SphereGenerator) Equivalences(atoms *crystal.Structure, nkpt int, magmom []float64) ([]Star, error) {
	if atoms == nil {
		return nil, ErrMissingStructure
	}
	if nkpt <= 0 {
		return nil, ErrInvalidTarget
	}

	ops, err := symmetry.Operations(atoms, magmom, g.SymmetryTolerance)
	if err != nil {
		return nil, err
	}
	rots := symmetry.Rotations(ops, true)

	l := atoms.Lattice
	radius := initialRadius(l, nkpt*len(rots))
	for step := 0; step < maxRadiusSteps; step++ {
		stars := starsInSphere(l, rots, radius)
		if len(stars) >= nkpt {
			return stars[:nkpt], nil
		}
		radius *= math.Cbrt(2)
	}
	return nil, ErrNoEquivalences
}

// initialRadius estimates the sphere radius holding npoints lattice points.
func initialRadius(l crystal.Lattice, npoints int) float64 {
	r := math.Cbrt(3 * float64(npoints) * l.Volume() / (4 * math.Pi))
	lengths := l.Lengths()
	return math.Max(r, math.Max(lengths[0], math.Max(lengths[1], lengths[2])))
}

// starsInSphere groups all lattice points with |R| <= radius into stars,
// ordered by radius and then by their first vector.
func starsInSphere(l crystal.Lattice, rots []symmetry.Matrix3, radius float64) []Star {
	recip := l.Reciprocal().Lengths()
	var bound [3]int
	for i := range bound {
		bound[i] = int(math.Ceil(radius*recip[i]/(2*math.Pi))) + 1
	}

	type point struct {
		v Vec3i
		r float64
	}
	var pts []point
	for i := -bound[0]; i <= bound[0]; i++ {
		for j := -bound[1]; j <= bound[1]; j++ {
			for k := -bound[2]; k <= bound[2]; k++ {
				v := Vec3i{i, j, k}
				if r := cartLength(l, v); r <= radius {
					pts = append(pts, point{v: v, r: r})
				}
			}
		}
	}

	const radiusTol = 1e-8
	sort.Slice(pts, func(a, b int) bool {
		if math.Abs(pts[a].r-pts[b].r) > radiusTol {
			return pts[a].r < pts[b].r
		}
		return descVec(pts[a].v, pts[b].v)
	})

	visited := make(map[Vec3i]bool, len(pts))
	var stars []Star
	for _, p := range pts {
		if visited[p.v] {
			continue
		}
		star := orbit(p.v, rots)
		for _, v := range star {
			visited[v] = true
		}
		stars = append(stars, star)
	}

	// Rotations preserve length, so every orbit lies inside the sphere.
	return stars
}

func orbit(v Vec3i, rots []symmetry.Matrix3) Star {
	seen := make(map[Vec3i]bool, len(rots))
	out := make(Star, 0, len(rots))
	for _, w := range rots {
		img := Vec3i(w.Apply(v))
		if !seen[img] {
			seen[img] = true
			out = append(out, img)
		}
	}
	sort.Slice(out, func(a, b int) bool { return descVec(out[a], out[b]) })
	return out
}

// descVec orders vectors by descending components, first axis first.
func descVec(a, b Vec3i) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
