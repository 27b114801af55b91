// Package demand holds the hourly per-polygon demand matrix consumed by
// the simulation and the ingestion path that produces it from regional
// traces.
package demand

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/mwheeler/gridsim/core/topology"
)

// Matrix is a nonnegative power value per (hour, polygon). The simulation
// copies it before scribbling on it, so the input stays immutable.
type Matrix struct {
	data     *mat.Dense
	hours    int
	polygons int
}

// NewMatrix returns a zeroed hours x polygons matrix.
func NewMatrix(hours, polygons int) *Matrix {
	return &Matrix{
		data:     mat.NewDense(hours, polygons, nil),
		hours:    hours,
		polygons: polygons,
	}
}

// Hours returns the number of hours covered.
func (m *Matrix) Hours() int { return m.hours }

// Polygons returns the number of polygon columns.
func (m *Matrix) Polygons() int { return m.polygons }

// Value returns the demand at hour for polygon p.
func (m *Matrix) Value(hour int, p topology.Polygon) float64 {
	return m.data.At(hour, int(p)-1)
}

// Set assigns the demand at hour for polygon p.
func (m *Matrix) Set(hour int, p topology.Polygon, mw float64) {
	if mw < 0 {
		panic(fmt.Sprintf("demand: negative demand %.6f for polygon %d hour %d", mw, p, hour))
	}
	m.data.Set(hour, int(p)-1, mw)
}

// Row returns a mutable view of one hour's polygon demand vector.
func (m *Matrix) Row(hour int) []float64 {
	return m.data.RawRowView(hour)
}

// HourTotal returns the total demand in one hour.
func (m *Matrix) HourTotal(hour int) float64 {
	return floats.Sum(m.data.RawRowView(hour))
}

// Total returns the total demand energy across all hours.
func (m *Matrix) Total() float64 {
	return mat.Sum(m.data)
}

// PolygonTotal returns the total demand energy of one polygon across all
// hours.
func (m *Matrix) PolygonTotal(p topology.Polygon) float64 {
	var sum float64
	for h := 0; h < m.hours; h++ {
		sum += m.data.At(h, int(p)-1)
	}
	return sum
}

// Copy returns a deep copy the caller is free to mutate.
func (m *Matrix) Copy() *Matrix {
	return &Matrix{
		data:     mat.DenseCopyOf(m.data),
		hours:    m.hours,
		polygons: m.polygons,
	}
}

// ZeroPolygon clears the demand of one polygon across all hours, used to
// drop regions out of scope.
func (m *Matrix) ZeroPolygon(p topology.Polygon) {
	for h := 0; h < m.hours; h++ {
		m.data.Set(h, int(p)-1, 0)
	}
}
