package generator

import (
	"math"
	"testing"
)

func TestTraceGenerator_Step(t *testing.T) {
	trace := []float64{0.5, 1.0, 0.0}
	g := NewWind(1, 100, trace, "wind")

	power, spilled := g.Step(0, 1000)
	if power != 50 || spilled != 0 {
		t.Fatalf("hour 0: power=%.1f spilled=%.1f, want 50/0", power, spilled)
	}

	// demand below availability spills the excess
	power, spilled = g.Step(1, 30)
	if power != 30 || spilled != 70 {
		t.Fatalf("hour 1: power=%.1f spilled=%.1f, want 30/70", power, spilled)
	}

	power, spilled = g.Step(2, 1000)
	if power != 0 || spilled != 0 {
		t.Fatalf("hour 2: power=%.1f spilled=%.1f, want 0/0", power, spilled)
	}

	if got := g.SuppliedEnergy(); got != 80 {
		t.Fatalf("supplied = %.1f, want 80", got)
	}
	if got := g.SpilledEnergy(); got != 70 {
		t.Fatalf("spilled total = %.1f, want 70", got)
	}
}

func TestTraceGenerator_OutOfRangeHourPanics(t *testing.T) {
	g := NewPV(1, 100, []float64{1}, "pv")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for hour outside trace")
		}
	}()
	g.Step(1, 10)
}

func TestGeothermal_DiscardsSpill(t *testing.T) {
	g := NewGeothermalHSA(1, 100, []float64{1.0}, "geo")
	if !g.Synchronous() {
		t.Fatal("geothermal must be synchronous")
	}
	power, spilled := g.Step(0, 20)
	if power != 20 || spilled != 0 {
		t.Fatalf("power=%.1f spilled=%.1f, want 20/0", power, spilled)
	}
	if g.SeriesSpilled()[0] != 0 {
		t.Fatal("geothermal must not record spill")
	}
}

func TestTraceGenerator_CapacityFactor(t *testing.T) {
	g := NewWind(1, 100, []float64{0.5, 0.5}, "wind")
	g.Step(0, 1000)
	g.Step(1, 1000)
	if cf := g.CapacityFactor(); math.Abs(cf-0.5) > Tolerance {
		t.Fatalf("capacity factor = %.3f, want 0.5", cf)
	}

	fresh := NewWind(1, 100, nil, "wind")
	if cf := fresh.CapacityFactor(); !math.IsNaN(cf) {
		t.Fatalf("capacity factor before dispatch = %.3f, want NaN", cf)
	}
}

func TestTraceGenerator_Reset(t *testing.T) {
	g := NewWind(1, 100, []float64{1}, "wind")
	g.Step(0, 10)
	g.Reset()
	if len(g.SeriesPower()) != 0 || len(g.SeriesSpilled()) != 0 {
		t.Fatal("reset must clear the dispatch series")
	}
}

func TestLimitBuild(t *testing.T) {
	g := NewWind(1, 100, nil, "wind")
	g.LimitBuild(5)
	s := g.Setters()
	if len(s) != 1 || s[0].Max != 5 {
		t.Fatalf("setter max = %v, want 5", s)
	}
	// never raises an existing lower bound
	g.LimitBuild(10)
	if g.Setters()[0].Max != 5 {
		t.Fatal("LimitBuild must not raise the bound")
	}
	s[0].Set(2)
	if g.Capacity() != 2000 {
		t.Fatalf("capacity = %.0f MW, want 2000", g.Capacity())
	}
}
