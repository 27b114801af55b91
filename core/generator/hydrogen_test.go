package generator

import (
	"math"
	"testing"
)

func TestHydrogenTank(t *testing.T) {
	tank := NewHydrogenTank(1000, "tank")
	if tank.Stored() != 500 {
		t.Fatalf("initial store = %.1f, want 500", tank.Stored())
	}
	if got := tank.Charge(600); got != 500 {
		t.Fatalf("charge accepted %.1f, want headroom-limited 500", got)
	}
	if !tank.Full() {
		t.Fatal("tank should be full")
	}
	if got := tank.Discharge(1200); got != 1000 {
		t.Fatalf("discharge = %.1f, want 1000", got)
	}
	if tank.Stored() != 0 {
		t.Fatalf("store = %.1f, want 0", tank.Stored())
	}
}

func TestHydrogenTank_NegativePanics(t *testing.T) {
	tank := NewHydrogenTank(100, "tank")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for negative charge")
		}
	}()
	tank.Charge(-1)
}

func TestElectrolyser_StoreOnly(t *testing.T) {
	tank := NewHydrogenTank(10000, "tank")
	e, err := NewElectrolyser(tank, 1, 100, 0.8, "electrolyser")
	if err != nil {
		t.Fatalf("electrolyser: %v", err)
	}

	// never generates
	power, spilled := e.Step(0, 500)
	if power != 0 || spilled != 0 {
		t.Fatalf("electrolyser generated %.1f/%.1f, want 0/0", power, spilled)
	}

	before := tank.Stored()
	accepted := e.Store(0, 250)
	if accepted != 100 {
		t.Fatalf("accepted %.1f, want rating-capped 100", accepted)
	}
	if got := tank.Stored() - before; math.Abs(got-80) > Tolerance {
		t.Fatalf("tank gained %.1f, want 80 at 0.8 efficiency", got)
	}
}

func TestElectrolyser_TankHeadroomLimits(t *testing.T) {
	tank := NewHydrogenTank(100, "tank") // 50 stored, 50 headroom
	e, err := NewElectrolyser(tank, 1, 1000, 0.5, "electrolyser")
	if err != nil {
		t.Fatalf("electrolyser: %v", err)
	}
	// 50 MWh of headroom at 0.5 efficiency admits 100 MW
	if got := e.Store(0, 500); math.Abs(got-100) > Tolerance {
		t.Fatalf("accepted %.1f, want 100", got)
	}
}

func TestHydrogenGT_BurnsFromSharedTank(t *testing.T) {
	tank := NewHydrogenTank(1000, "tank") // 500 stored
	gt, err := NewHydrogenGT(tank, 1, 100, 0.4, "h2-gt")
	if err != nil {
		t.Fatalf("hydrogen gt: %v", err)
	}

	// 100 MW needs 250 MWh of hydrogen
	power, _ := gt.Step(0, 1000)
	if power != 100 {
		t.Fatalf("power = %.1f, want 100", power)
	}
	if tank.Stored() != 250 {
		t.Fatalf("tank = %.1f, want 250", tank.Stored())
	}

	// only 250 left: 100 MWe output is fuel-limited
	power, _ = gt.Step(1, 1000)
	if power != 100 {
		t.Fatalf("power = %.1f, want 100", power)
	}
	power, _ = gt.Step(2, 1000)
	if power != 0 {
		t.Fatalf("power from empty tank = %.1f, want 0", power)
	}
}

func TestHydrogen_ResetRefillsTank(t *testing.T) {
	tank := NewHydrogenTank(1000, "tank")
	gt, err := NewHydrogenGT(tank, 1, 100, 0.4, "h2-gt")
	if err != nil {
		t.Fatalf("hydrogen gt: %v", err)
	}
	gt.Step(0, 1000)
	gt.Reset()
	if tank.Stored() != 500 {
		t.Fatalf("tank after reset = %.1f, want 500", tank.Stored())
	}
	if gt.RunHours() != 0 {
		t.Fatal("run hours must reset")
	}
}

func TestHydrogen_NilTankRejected(t *testing.T) {
	if _, err := NewElectrolyser(nil, 1, 100, 0.8, "e"); err == nil {
		t.Fatal("expected error for nil tank")
	}
	if _, err := NewHydrogenGT(nil, 1, 100, 0.4, "g"); err == nil {
		t.Fatal("expected error for nil tank")
	}
}

func TestHydrogen_BadEfficiencyRejected(t *testing.T) {
	tank := NewHydrogenTank(1000, "tank")
	for _, eff := range []float64{0, -0.5, 1.5} {
		if _, err := NewElectrolyser(tank, 1, 100, eff, "e"); err == nil {
			t.Errorf("electrolyser efficiency %v: expected error", eff)
		}
		if _, err := NewHydrogenGT(tank, 1, 100, eff, "g"); err == nil {
			t.Errorf("hydrogen GT efficiency %v: expected error", eff)
		}
	}
	if _, err := NewElectrolyser(tank, 1, 100, 1, "e"); err != nil {
		t.Errorf("efficiency 1: %v", err)
	}
}
