package costs

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/mwheeler/gridsim/core/topology"
)

func TestCostMatrix(t *testing.T) {
	regions := []*topology.Region{
		{Num: 0, ID: "A", Centre: topology.LatLong{Lat: -30, Long: 150}, Shares: map[topology.Polygon]float64{1: 1}},
		{Num: 1, ID: "B", Centre: topology.LatLong{Lat: -35, Long: 145}, Shares: map[topology.Polygon]float64{2: 1}},
	}
	grid, err := topology.New(regions, []topology.Edge{{From: 1, To: 2}})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}

	tx := NewTransmission(nil, 0.05, 50)
	caps := mat.NewDense(2, 2, []float64{0, 1000, 1000, 0})
	got := tx.CostMatrix(grid, caps)

	// diagonal has zero distance and zero capacity
	if got.At(0, 0) != 0 || got.At(1, 1) != 0 {
		t.Fatal("diagonal must be zero")
	}
	dist := grid.Distance(regions[0], regions[1])
	want := TxCost(1000) * 1000 * dist / AnnuityFactor(50, 0.05)
	if math.Abs(got.At(0, 1)-want) > 1e-6 {
		t.Fatalf("cost(0,1) = %.2f, want %.2f", got.At(0, 1), want)
	}
	// symmetric capacities yield a symmetric cost matrix
	if math.Abs(got.At(0, 1)-got.At(1, 0)) > 1e-9 {
		t.Fatal("cost matrix must be symmetric for symmetric capacities")
	}
}

func TestNewTransmission_CustomCostFn(t *testing.T) {
	flat := func(mw float64) float64 { return 10 }
	tx := NewTransmission(flat, 0.05, 50)
	if tx.costPerMWKm(123) != 10 {
		t.Fatal("custom cost expression not used")
	}
}
