package topology

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats/scalar"
)

// shareTolerance bounds how far a region's demand shares may drift from
// summing to one before the region is rejected at construction time.
const shareTolerance = 1e-6

// LatLong is a geographic coordinate used for region centres.
type LatLong struct {
	Lat, Long float64
}

// Distance returns the great-circle distance to other in kilometres.
func (l LatLong) Distance(other LatLong) float64 {
	const earthRadiusKm = 6371
	lat1 := l.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dlat := (other.Lat - l.Lat) * math.Pi / 180
	dlong := (other.Long - l.Long) * math.Pi / 180
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlong/2)*math.Sin(dlong/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Region is a market region made up of one or more polygons. Num is the
// ordinal used for matrix positions. Shares apportions the region's demand
// across its polygons and must sum to one.
type Region struct {
	Num    int
	ID     string
	Descr  string
	Centre LatLong
	Shares map[Polygon]float64
}

func (r *Region) String() string { return r.ID }

// Polygons returns the region's polygons in ascending order.
func (r *Region) Polygons() []Polygon {
	polys := make([]Polygon, 0, len(r.Shares))
	for p := range r.Shares {
		polys = append(polys, p)
	}
	sort.Slice(polys, func(i, j int) bool { return polys[i] < polys[j] })
	return polys
}

func (r *Region) validate() error {
	if len(r.Shares) == 0 {
		return fmt.Errorf("region %s has no polygons", r.ID)
	}
	var sum float64
	for p, share := range r.Shares {
		if p < 1 {
			return fmt.Errorf("region %s: polygon %d out of range", r.ID, p)
		}
		if share < 0 {
			return fmt.Errorf("region %s: negative demand share for polygon %d", r.ID, p)
		}
		sum += share
	}
	if !scalar.EqualWithinAbs(sum, 1, shareTolerance) {
		return fmt.Errorf("region %s: demand shares sum to %.6f, want 1", r.ID, sum)
	}
	return nil
}

// In reports whether r appears in the given region set.
func (r *Region) In(set []*Region) bool {
	for _, other := range set {
		if other == r {
			return true
		}
	}
	return false
}
