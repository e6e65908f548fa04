package sim

import (
	"fmt"
	"sync"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
)

// Reach is a site together with its minimum hop count from some origin.
type Reach struct {
	Site Site
	Hops int
}

// linkGraph is the site set and link relation the distance cache expands over.
type linkGraph interface {
	AllSites() []Site
	Neighbours(s Site) []Site
}

// DistanceCache memoizes bounded breadth-first expansions per origin over
// the directed graph of forward Neighbours links.
//
// The cache is keyed by origin only: the first call for an origin fixes the
// hop bound used for that origin for the lifetime of the cache. Callers must
// use one interaction distance consistently.
//
// Thread-safety: safe for concurrent use. Each origin is expanded once under
// its own sync.Once; results are read-only afterwards.
type DistanceCache struct {
	graph *core.Graph
	sites map[string]Site

	mu      sync.Mutex
	entries map[Site]*distanceEntry
}

type distanceEntry struct {
	once    sync.Once
	reached []Reach
	err     error
}

// NewDistanceCache builds the link graph of g and returns an empty cache over it.
func NewDistanceCache(g *Geometry) (*DistanceCache, error) {
	return newDistanceCache(g)
}

func newDistanceCache(links linkGraph) (*DistanceCache, error) {
	graph := core.NewGraph(core.WithDirected(true))
	all := links.AllSites()
	sites := make(map[string]Site, len(all))
	for _, s := range all {
		id := s.String()
		sites[id] = s
		if err := graph.AddVertex(id); err != nil {
			return nil, fmt.Errorf("%w: vertex %v: %v", ErrInvalidGeometry, s, err)
		}
	}
	for _, s := range all {
		for _, n := range links.Neighbours(s) {
			if _, ok := sites[n.String()]; !ok {
				return nil, fmt.Errorf("%w: neighbour %v of %v is not a lattice site", ErrInvalidGeometry, n, s)
			}
			if _, err := graph.AddEdge(s.String(), n.String(), 0); err != nil {
				return nil, fmt.Errorf("%w: link %v->%v: %v", ErrInvalidGeometry, s, n, err)
			}
		}
	}
	return &DistanceCache{
		graph:   graph,
		sites:   sites,
		entries: make(map[Site]*distanceEntry),
	}, nil
}

// Reachable returns every site within maxHops of origin in BFS visit order,
// starting with the origin at 0 hops. The slice is shared; callers must not
// modify it.
func (c *DistanceCache) Reachable(origin Site, maxHops int) ([]Reach, error) {
	c.mu.Lock()
	e, ok := c.entries[origin]
	if !ok {
		e = &distanceEntry{}
		c.entries[origin] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.reached, e.err = c.expand(origin, maxHops)
	})
	return e.reached, e.err
}

// DistancesWithin returns a copy of the cached expansion as a map from site
// to hop count.
func (c *DistanceCache) DistancesWithin(origin Site, maxHops int) (map[Site]int, error) {
	reached, err := c.Reachable(origin, maxHops)
	if err != nil {
		return nil, err
	}
	out := make(map[Site]int, len(reached))
	for _, r := range reached {
		out[r.Site] = r.Hops
	}
	return out, nil
}

// Len returns the number of origins requested so far.
func (c *DistanceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// expand walks the link graph from origin. A site keeps the depth at which
// the walk first enqueued it.
func (c *DistanceCache) expand(origin Site, maxHops int) ([]Reach, error) {
	if maxHops < 1 {
		return nil, fmt.Errorf("%w: hop bound %d", ErrInvalidConfig, maxHops)
	}
	res, err := bfs.BFS(c.graph, origin.String(), bfs.WithMaxDepth(maxHops))
	if err != nil {
		return nil, fmt.Errorf("%w: expanding %v: %v", ErrInvalidGeometry, origin, err)
	}
	reached := make([]Reach, 0, len(res.Order))
	for _, id := range res.Order {
		reached = append(reached, Reach{Site: c.sites[id], Hops: res.Depth[id]})
	}
	return reached, nil
}
