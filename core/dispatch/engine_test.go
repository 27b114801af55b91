package dispatch

import (
	"math"
	"testing"

	"github.com/mwheeler/gridsim/core/generator"
	"github.com/mwheeler/gridsim/core/topology"
)

func testGrid(t *testing.T) *topology.Grid {
	t.Helper()
	regions := []*topology.Region{
		{Num: 0, ID: "N", Shares: map[topology.Polygon]float64{1: 1}},
		{Num: 1, ID: "S", Shares: map[topology.Polygon]float64{2: 0.5, 3: 0.5}},
	}
	g, err := topology.New(regions, []topology.Edge{{From: 1, To: 2}, {From: 2, To: 3}})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return g
}

func newEngine(t *testing.T, grid *topology.Grid, gens []generator.Generator, nsp float64, track bool) *Engine {
	t.Helper()
	e, err := New(Config{
		Grid:           grid,
		Scope:          grid.Regions(),
		Generators:     gens,
		NSPLimit:       nsp,
		TrackExchanges: track,
		LoadPolygons:   []topology.Polygon{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

type recorded struct {
	src, dst topology.Polygon
	mw       float64
}

type recorder []recorded

func (r *recorder) AddExchange(_ int, src, dst topology.Polygon, mw float64) {
	*r = append(*r, recorded{src, dst, mw})
}

func dispatchOne(e *Engine, demand []float64, n int) (gen, spill []float64, residual float64) {
	gen = make([]float64, n)
	spill = make([]float64, n)
	var total float64
	for _, d := range demand {
		total += d
	}
	residual = e.DispatchHour(0, demand, total, gen, spill, nil)
	return gen, spill, residual
}

func TestDispatchHour_MeritOrder(t *testing.T) {
	grid := testGrid(t)
	gens := []generator.Generator{
		generator.NewOCGT(1, 60, 0.7, "first"),
		generator.NewOCGT(1, 60, 0.7, "second"),
	}
	e := newEngine(t, grid, gens, 1, false)

	gen, _, residual := dispatchOne(e, []float64{100, 0, 0}, 2)
	if gen[0] != 60 || gen[1] != 40 {
		t.Fatalf("generation = %v, want [60 40]", gen)
	}
	if residual != 0 {
		t.Fatalf("residual = %.1f, want 0", residual)
	}
}

func TestDispatchHour_UnmetDemand(t *testing.T) {
	grid := testGrid(t)
	gens := []generator.Generator{generator.NewOCGT(1, 30, 0.7, "ocgt")}
	e := newEngine(t, grid, gens, 1, false)

	_, _, residual := dispatchOne(e, []float64{100, 0, 0}, 1)
	if residual != 70 {
		t.Fatalf("residual = %.1f, want 70", residual)
	}
}

func TestDispatchHour_NSPLimit(t *testing.T) {
	grid := testGrid(t)
	trace := []float64{1.0}
	gens := []generator.Generator{
		generator.NewWind(1, 200, trace, "wind"),
		generator.NewOCGT(1, 200, 0.7, "ocgt"),
	}
	e := newEngine(t, grid, gens, 0.75, false)

	gen, spill, residual := dispatchOne(e, []float64{100, 0, 0}, 2)
	// async cap = 100 * 0.75: the wind farm may serve 75 MW and spills the
	// rest of its availability; gas covers the remainder
	if gen[0] != 75 {
		t.Fatalf("wind = %.1f, want 75", gen[0])
	}
	if gen[1] != 25 {
		t.Fatalf("ocgt = %.1f, want 25", gen[1])
	}
	if residual != 0 {
		t.Fatalf("residual = %.1f, want 0", residual)
	}
	if spill[0] != 125 {
		t.Fatalf("wind spill = %.1f, want 125 (curtailed, no store)", spill[0])
	}
}

func TestDispatchHour_NSPLimitSharedCeiling(t *testing.T) {
	grid := testGrid(t)
	trace := []float64{1.0}
	gens := []generator.Generator{
		generator.NewWind(1, 50, trace, "wind-a"),
		generator.NewWind(1, 50, trace, "wind-b"),
	}
	e := newEngine(t, grid, gens, 0.6, false)

	gen, _, _ := dispatchOne(e, []float64{100, 0, 0}, 2)
	// the 60 MW ceiling is shared: the first farm consumes 50 of it and
	// leaves 10 for the second
	if gen[0] != 50 || gen[1] != 10 {
		t.Fatalf("generation = %v, want [50 10]", gen)
	}
}

func TestDispatchHour_SpillStoredInMeritOrder(t *testing.T) {
	grid := testGrid(t)
	trace := []float64{1.0}
	wind := generator.NewWind(1, 200, trace, "wind")
	first := generator.NewPumpedHydro(2, 60, 10000, 1.0, "psh-first")
	second := generator.NewPumpedHydro(3, 60, 10000, 1.0, "psh-second")
	first.Reset()
	second.Reset()
	firstBefore := first.Stored()
	secondBefore := second.Stored()

	e := newEngine(t, grid, []generator.Generator{wind, first, second}, 1, false)
	gen, spill, _ := dispatchOne(e, []float64{100, 0, 0}, 3)

	if gen[0] != 100 {
		t.Fatalf("wind = %.1f, want 100", gen[0])
	}
	// 100 MW of spill: the first store takes its 60 MW rating, the second
	// takes the remaining 40
	if got := first.Stored() - firstBefore; got != 60 {
		t.Fatalf("first store gained %.1f, want 60", got)
	}
	if got := second.Stored() - secondBefore; got != 40 {
		t.Fatalf("second store gained %.1f, want 40", got)
	}
	if spill[0] != 0 {
		t.Fatalf("remaining spill = %.1f, want 0", spill[0])
	}
}

func TestDispatchHour_SpillerSkipsItself(t *testing.T) {
	grid := testGrid(t)
	// A CST bank could both spill and store; here a pumped hydro plant that
	// generated must not be offered another generator's spill in the same
	// hour it ran, and a spilling store must never charge from itself.
	trace := []float64{1.0}
	wind := generator.NewWind(1, 100, trace, "wind")
	psh := generator.NewPumpedHydro(2, 100, 1000, 1.0, "psh")
	psh.Reset()

	e := newEngine(t, grid, []generator.Generator{psh, wind}, 1, false)
	// demand 80: psh generates 80 (ran this hour), wind delivers 0 and
	// spills 100; the psh refuses the spill because it ran
	gen, spill, _ := dispatchOne(e, []float64{80, 0, 0}, 2)
	if gen[0] != 80 {
		t.Fatalf("psh = %.1f, want 80", gen[0])
	}
	if spill[1] != 100 {
		t.Fatalf("wind spill = %.1f, want 100 curtailed", spill[1])
	}
}

func TestDispatchHour_ExchangeRecording(t *testing.T) {
	grid := testGrid(t)
	gens := []generator.Generator{generator.NewOCGT(2, 500, 0.7, "ocgt")}
	e := newEngine(t, grid, gens, 1, true)

	var rec recorder
	gen := make([]float64, 1)
	spill := make([]float64, 1)
	demand := []float64{50, 30, 20}
	residual := e.DispatchHour(0, demand, 100, gen, spill, &rec)
	if residual != 0 {
		t.Fatalf("residual = %.1f, want 0", residual)
	}

	// local delivery first, recorded as a self-loop
	want := []recorded{
		{2, 2, 30},
		{2, 1, 50},
		{2, 3, 20},
	}
	if len(rec) != len(want) {
		t.Fatalf("exchanges = %v, want %v", rec, want)
	}
	for i, w := range want {
		if rec[i] != w {
			t.Fatalf("exchange %d = %v, want %v", i, rec[i], w)
		}
	}
	// routed demand is consumed in place
	for i, d := range demand {
		if d != 0 {
			t.Fatalf("demand[%d] = %.1f, want 0", i, d)
		}
	}
}

func TestDispatchHour_MultiHopRecordsEveryEdge(t *testing.T) {
	grid := testGrid(t)
	gens := []generator.Generator{generator.NewOCGT(1, 500, 0.7, "ocgt")}
	e := newEngine(t, grid, gens, 1, true)

	var rec recorder
	gen := make([]float64, 1)
	spill := make([]float64, 1)
	// demand only in polygon 3, two hops away
	e.DispatchHour(0, []float64{0, 0, 40}, 40, gen, spill, &rec)

	want := []recorded{
		{1, 2, 40},
		{2, 3, 40},
	}
	if len(rec) != len(want) || rec[0] != want[0] || rec[1] != want[1] {
		t.Fatalf("exchanges = %v, want %v", rec, want)
	}
}

func TestNew_Validation(t *testing.T) {
	grid := testGrid(t)
	if _, err := New(Config{Grid: nil}); err == nil {
		t.Fatal("expected error for nil grid")
	}
	if _, err := New(Config{Grid: grid, NSPLimit: 1.5}); err == nil {
		t.Fatal("expected error for nsp limit above one")
	}
	if _, err := New(Config{Grid: grid, NSPLimit: -0.1}); err == nil {
		t.Fatal("expected error for negative nsp limit")
	}
	// tracking requires polygon assignments
	gens := []generator.Generator{generator.NewOCGT(0, 100, 0.7, "ocgt")}
	if _, err := New(Config{Grid: grid, Generators: gens, NSPLimit: 1, TrackExchanges: true}); err == nil {
		t.Fatal("expected error for unassigned generator under tracking")
	}
}

func TestDispatchHour_ZeroNSPLimit(t *testing.T) {
	grid := testGrid(t)
	trace := []float64{1.0}
	gens := []generator.Generator{generator.NewWind(1, 200, trace, "wind")}
	e := newEngine(t, grid, gens, 0, false)

	gen, _, residual := dispatchOne(e, []float64{100, 0, 0}, 1)
	if gen[0] != 0 {
		t.Fatalf("wind = %.1f, want 0 under a zero nsp limit", gen[0])
	}
	if math.Abs(residual-100) > generator.Tolerance {
		t.Fatalf("residual = %.1f, want 100", residual)
	}
}

// overdelivering wraps a generator and reports more power than offered.
type overdelivering struct {
	generator.Generator
}

func (g overdelivering) Step(hour int, demand float64) (float64, float64) {
	return demand + 5, 0
}

func TestDispatchHour_OverDeliveryPanics(t *testing.T) {
	grid := testGrid(t)
	gens := []generator.Generator{overdelivering{generator.NewOCGT(1, 100, 0.7, "rogue")}}
	e := newEngine(t, grid, gens, 1, false)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when generation exceeds offered demand")
		}
	}()
	dispatchOne(e, []float64{50, 0, 0}, 1)
}
