// Package topology models the static region/polygon graph of the grid and
// the precomputed connection paths used to route power between polygons.
// A Grid is built once at startup and is read-only thereafter.
package topology

import (
	"fmt"
	"sort"
)

// Polygon identifies one spatial unit of the grid. Polygons are numbered
// from 1 up to the number of polygons in the grid.
type Polygon int

// Edge is a directed transmission link between two adjacent polygons.
type Edge struct {
	From, To Polygon
}

// Path is an ordered sequence of directed edges describing how power routes
// from a source polygon to a sink. An empty path means local delivery.
type Path []Edge

// Hops returns the number of edges traversed by the path.
func (p Path) Hops() int { return len(p) }

// Sink returns the destination polygon of a path originating at src.
func (p Path) Sink(src Polygon) Polygon {
	if len(p) == 0 {
		return src
	}
	return p[len(p)-1].To
}

// Grid is the static topology: regions, their polygons and the shortest
// connection path between every pair of connected polygons.
type Grid struct {
	regions  []*Region
	regionOf map[Polygon]*Region
	numPolys int
	paths    map[[2]Polygon]Path
}

// New builds a Grid from an ordered region list and a set of transmission
// links. Links are treated as bidirectional; the directed path between each
// ordered polygon pair is precomputed by breadth-first search.
func New(regions []*Region, links []Edge) (*Grid, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("topology: no regions")
	}
	g := &Grid{
		regions:  regions,
		regionOf: make(map[Polygon]*Region),
	}
	for i, r := range regions {
		if r.Num != i {
			return nil, fmt.Errorf("topology: region %s has ordinal %d, want %d", r.ID, r.Num, i)
		}
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("topology: %w", err)
		}
		for p := range r.Shares {
			if owner, ok := g.regionOf[p]; ok {
				return nil, fmt.Errorf("topology: polygon %d in both %s and %s", p, owner.ID, r.ID)
			}
			g.regionOf[p] = r
			if int(p) > g.numPolys {
				g.numPolys = int(p)
			}
		}
	}
	for _, l := range links {
		if _, ok := g.regionOf[l.From]; !ok {
			return nil, fmt.Errorf("topology: link references unknown polygon %d", l.From)
		}
		if _, ok := g.regionOf[l.To]; !ok {
			return nil, fmt.Errorf("topology: link references unknown polygon %d", l.To)
		}
	}
	g.paths = shortestPaths(g.polygons(), links)
	return g, nil
}

func (g *Grid) polygons() []Polygon {
	polys := make([]Polygon, 0, len(g.regionOf))
	for p := range g.regionOf {
		polys = append(polys, p)
	}
	sort.Slice(polys, func(i, j int) bool { return polys[i] < polys[j] })
	return polys
}

// shortestPaths runs a BFS from every polygon over the undirected link set
// and records the directed edge sequence to every reachable polygon.
func shortestPaths(polys []Polygon, links []Edge) map[[2]Polygon]Path {
	adjacent := make(map[Polygon][]Polygon)
	for _, l := range links {
		adjacent[l.From] = append(adjacent[l.From], l.To)
		adjacent[l.To] = append(adjacent[l.To], l.From)
	}
	for _, neighbours := range adjacent {
		sort.Slice(neighbours, func(i, j int) bool { return neighbours[i] < neighbours[j] })
	}

	paths := make(map[[2]Polygon]Path)
	for _, src := range polys {
		prev := map[Polygon]Polygon{src: src}
		queue := []Polygon{src}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adjacent[cur] {
				if _, seen := prev[next]; seen {
					continue
				}
				prev[next] = cur
				queue = append(queue, next)
			}
		}
		for dst := range prev {
			var path Path
			for at := dst; at != src; at = prev[at] {
				path = append(Path{{From: prev[at], To: at}}, path...)
			}
			paths[[2]Polygon{src, dst}] = path
		}
	}
	return paths
}

// Regions returns the ordered region list.
func (g *Grid) Regions() []*Region { return g.regions }

// NumPolygons returns the highest polygon number in the grid.
func (g *Grid) NumPolygons() int { return g.numPolys }

// RegionOf returns the region a polygon belongs to.
func (g *Grid) RegionOf(p Polygon) (*Region, bool) {
	r, ok := g.regionOf[p]
	return r, ok
}

// Path returns the connection path from polygon a to polygon b. The second
// return value is false when no path exists, which callers must treat as
// zero deliverable power, not an error.
func (g *Grid) Path(a, b Polygon) (Path, bool) {
	p, ok := g.paths[[2]Polygon{a, b}]
	return p, ok
}

// Direct reports whether a and b are the same polygon or adjacent.
func (g *Grid) Direct(a, b Polygon) bool {
	p, ok := g.Path(a, b)
	return ok && len(p) <= 1
}

// inScope reports whether every polygon touched by the path belongs to a
// region in scope.
func (g *Grid) inScope(path Path, scope []*Region) bool {
	for _, e := range path {
		if r, ok := g.regionOf[e.From]; !ok || !r.In(scope) {
			return false
		}
		if r, ok := g.regionOf[e.To]; !ok || !r.In(scope) {
			return false
		}
	}
	return true
}

// Connections returns the paths from src to every load polygon, restricted
// to paths that stay within the scoped regions, sorted ascending by hop
// count so local delivery is attempted first.
func (g *Grid) Connections(src Polygon, scope []*Region, loads []Polygon) []Path {
	inLoad := make(map[Polygon]bool, len(loads))
	for _, p := range loads {
		inLoad[p] = true
	}
	var conns []Path
	for _, dst := range g.polygons() {
		if !inLoad[dst] {
			continue
		}
		path, ok := g.Path(src, dst)
		if !ok || !g.inScope(path, scope) {
			continue
		}
		conns = append(conns, path)
	}
	sort.SliceStable(conns, func(i, j int) bool { return conns[i].Hops() < conns[j].Hops() })
	return conns
}

// Distance returns the distance in kilometres between two region centres.
func (g *Grid) Distance(a, b *Region) float64 {
	return a.Centre.Distance(b.Centre)
}
