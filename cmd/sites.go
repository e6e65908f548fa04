package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pyrochlore-sim/pyrochlore-sim/sim"
)

// sitesCmd prints a summary of the lattice geometry
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Summarize the lattice geometry: extents, sites, links and interaction reach",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		geometry, err := sim.NewGeometry(cfg.Geometry.Thickness)
		if err != nil {
			logrus.Fatalf("Invalid geometry: %v", err)
		}
		cache, err := sim.NewDistanceCache(geometry)
		if err != nil {
			logrus.Fatalf("Invalid geometry: %v", err)
		}
		if err := printGeometry(os.Stdout, geometry, cache, cfg.Physics.InteractionDistance); err != nil {
			logrus.Fatalf("Unable to expand interaction partners: %v", err)
		}
	},
}

// printGeometry writes extents, site and link counts, the adjacency degree
// histogram, and how many sites fall within the interaction distance.
func printGeometry(w io.Writer, g *sim.Geometry, cache *sim.DistanceCache, maxHops int) error {
	sites := g.AllSites()
	links := 0
	degrees := make(map[int]int)
	minReach, maxReach := len(sites), 0
	for _, s := range sites {
		links += len(g.Neighbours(s))
		degrees[len(g.Adjacent(s))]++
		reached, err := cache.Reachable(s, maxHops)
		if err != nil {
			return err
		}
		reach := len(reached) - 1
		minReach = min(minReach, reach)
		maxReach = max(maxReach, reach)
	}

	fmt.Fprintln(w, "=== Lattice Geometry ===")
	fmt.Fprintf(w, "Extent               : %d x %d x %d\n", g.Size(), g.Size(), g.Thickness())
	fmt.Fprintf(w, "Legal sites          : %d\n", g.SiteCount())
	fmt.Fprintf(w, "Links                : %d\n", links)
	keys := make([]int, 0, len(degrees))
	for k := range degrees {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "Sites with degree %-3d: %d\n", k, degrees[k])
	}
	fmt.Fprintf(w, "Partners within %-4d : %d..%d\n", maxHops, minReach, maxReach)
	return nil
}

func init() {
	registerEngineFlags(sitesCmd)
}
