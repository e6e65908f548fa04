// sim/geometry.go
package sim

import (
	"fmt"
	"math/rand"
	"slices"
	"sync"
)

// DefaultThickness is the thickness extent used when none is configured.
// The site pattern repeats every 6 units of thickness.
const DefaultThickness = 6

// maxSampleAttempts bounds rejection sampling in RandomSite. Legal density is
// 1/8 of the bounding box, so hitting the bound means the extents are broken.
const maxSampleAttempts = 100_000

// Site is a point in the periodic lattice grid.
type Site struct {
	X, Y, Z int
}

func (s Site) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.X, s.Y, s.Z)
}

// neighbourOffsets are applied in this order by Geometry.Neighbours.
var neighbourOffsets = [...]Site{
	{2, 0, 0},
	{1, 2, 0},
	{1, -2, 0},
	{0, 1, 1},
	{0, -1, 1},
	{1, 1, 1},
	{1, -1, 1},
	{-1, 1, 1},
	{-1, -1, 1},
}

// IsLegal reports whether the coordinates belong to the pyrochlore structure.
func IsLegal(s Site) bool {
	x, y, z := floorMod(s.X, 4), floorMod(s.Y, 8), floorMod(s.Z, 4)
	switch {
	case z%2 == 1: // sparse layers
		return (x == 1 && y == z) || (x == 3 && y == z+4)
	case y%4 == 0: // triangle base
		return x%2 == 0
	case y%4 == 2: // triangle apex
		return x == y/2
	default:
		return false
	}
}

// Geometry describes the bounding box x∈[0,Size) × y∈[0,Size) × z∈[0,Thickness)
// with periodic boundaries in all three directions.
//
// Thread-safety: safe for concurrent use. The site list is computed once.
type Geometry struct {
	thickness int
	size      int

	once  sync.Once
	sites []Site
}

// NewGeometry creates a geometry with the given thickness; the in-plane
// extent is twice the thickness. Thickness must be a positive multiple of 6.
func NewGeometry(thickness int) (*Geometry, error) {
	if thickness <= 0 || thickness%6 != 0 {
		return nil, fmt.Errorf("%w: thickness %d is not a positive multiple of 6", ErrInvalidGeometry, thickness)
	}
	return &Geometry{thickness: thickness, size: thickness * 2}, nil
}

// Size returns the in-plane extent.
func (g *Geometry) Size() int { return g.size }

// Thickness returns the thickness extent.
func (g *Geometry) Thickness() int { return g.thickness }

// AllSites returns every legal site ordered by ascending x, then y, then z.
// The returned slice is a fresh copy on every call.
func (g *Geometry) AllSites() []Site {
	return slices.Clone(g.legalSites())
}

// SiteCount returns the number of legal sites.
func (g *Geometry) SiteCount() int {
	return len(g.legalSites())
}

func (g *Geometry) legalSites() []Site {
	g.once.Do(func() {
		for x := 0; x < g.size; x++ {
			for y := 0; y < g.size; y++ {
				for z := 0; z < g.thickness; z++ {
					if s := (Site{x, y, z}); IsLegal(s) {
						g.sites = append(g.sites, s)
					}
				}
			}
		}
	})
	return g.sites
}

// RandomSite draws a uniformly distributed legal site by rejection sampling
// over the bounding box.
func (g *Geometry) RandomSite(rng *rand.Rand) (Site, error) {
	for i := 0; i < maxSampleAttempts; i++ {
		s := Site{rng.Intn(g.size), rng.Intn(g.size), rng.Intn(g.thickness)}
		if IsLegal(s) {
			return s, nil
		}
	}
	return Site{}, fmt.Errorf("%w: %d attempts in %dx%dx%d box",
		ErrGeometryExhausted, maxSampleAttempts, g.size, g.size, g.thickness)
}

// Neighbours returns the legal sites reached from s by the fixed forward
// offsets, wrapped periodically. Every lattice link is reported by exactly
// one of its two endpoints.
func (g *Geometry) Neighbours(s Site) []Site {
	out := make([]Site, 0, len(neighbourOffsets))
	for _, o := range neighbourOffsets {
		n := g.move(s, o.X, o.Y, o.Z)
		if n != s && IsLegal(n) && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// Adjacent returns the undirected adjacency of s: its forward Neighbours
// followed by every legal site whose Neighbours contain s.
func (g *Geometry) Adjacent(s Site) []Site {
	out := g.Neighbours(s)
	for _, o := range neighbourOffsets {
		n := g.move(s, -o.X, -o.Y, -o.Z)
		if n != s && IsLegal(n) && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func (g *Geometry) move(s Site, dx, dy, dz int) Site {
	return Site{
		X: floorMod(s.X+dx, g.size),
		Y: floorMod(s.Y+dy, g.size),
		Z: floorMod(s.Z+dz, g.thickness),
	}
}

func floorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
