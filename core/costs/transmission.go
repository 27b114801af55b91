package costs

import (
	"gonum.org/v1/gonum/mat"

	"github.com/mwheeler/gridsim/core/topology"
)

// Transmission annualises the cost of inter-region transmission capacity.
type Transmission struct {
	costPerMWKm func(mw float64) float64
	af          float64
}

// NewTransmission returns a transmission cost model with the given cost
// expression ($/MW/km), discount rate and asset lifetime in years.
func NewTransmission(costFn func(mw float64) float64, discount float64, lifetime int) *Transmission {
	if costFn == nil {
		costFn = TxCost
	}
	return &Transmission{costPerMWKm: costFn, af: AnnuityFactor(lifetime, discount)}
}

// CostMatrix returns the annualised cost of the given region-to-region
// capacity matrix over the grid's inter-region distances.
func (t *Transmission) CostMatrix(grid *topology.Grid, capacities *mat.Dense) *mat.Dense {
	regions := grid.Regions()
	n := len(regions)
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cap := capacities.At(i, j)
			dist := grid.Distance(regions[i], regions[j])
			out.Set(i, j, t.costPerMWKm(cap)*cap*dist/t.af)
		}
	}
	return out
}
