package demand

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mwheeler/gridsim/core/topology"
)

// ReadHalfHourly parses half-hourly regional demand (one column per
// region, '#' comments) and averages consecutive pairs of rows into hourly
// values. The row count must be even and every row must carry exactly
// numRegions values.
func ReadHalfHourly(r io.Reader, numRegions int) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = numRegions

	var halfHours [][]float64
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("demand: %w", err)
		}
		row := make([]float64, numRegions)
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("demand: row %d column %d: %w", len(halfHours)+1, i+1, err)
			}
			if v < 0 {
				return nil, fmt.Errorf("demand: negative demand in row %d column %d", len(halfHours)+1, i+1)
			}
			row[i] = v
		}
		halfHours = append(halfHours, row)
	}
	if len(halfHours)%2 != 0 {
		return nil, fmt.Errorf("demand: odd number of rows in half-hourly demand data")
	}

	hourly := make([][]float64, len(halfHours)/2)
	for h := range hourly {
		row := make([]float64, numRegions)
		for i := 0; i < numRegions; i++ {
			row[i] = (halfHours[2*h][i] + halfHours[2*h+1][i]) / 2
		}
		hourly[h] = row
	}
	return hourly, nil
}

// Apportion converts hourly regional demand into polygon resolution using
// each region's demand-share weights. Column order follows the region
// ordinals.
func Apportion(hourly [][]float64, grid *topology.Grid) (*Matrix, error) {
	regions := grid.Regions()
	if len(hourly) == 0 {
		return nil, fmt.Errorf("demand: empty demand trace")
	}
	if len(hourly[0]) != len(regions) {
		return nil, fmt.Errorf("demand: %d columns for %d regions", len(hourly[0]), len(regions))
	}
	m := NewMatrix(len(hourly), grid.NumPolygons())
	for h, row := range hourly {
		for _, r := range regions {
			for p, share := range r.Shares {
				m.Set(h, p, row[r.Num]*share)
			}
		}
	}
	return m, nil
}
