package system

import (
	"testing"

	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
)

func TestRaiseWaterSettlesAtTarget(t *testing.T) {
	r := newRig(t, "village")
	liquid, ok := r.level().Liquid()
	if !ok {
		t.Fatalf("expected village liquid")
	}
	if liquid.Height != -4 || liquid.OriginalHeight != -4 {
		t.Fatalf("expected authored height -4, got %v (original %v)", liquid.Height, liquid.OriginalHeight)
	}

	r.level().RaiseWater(120, -3)
	NewLiquidSystem(r.level()).Update(r.w)

	if liquid.Height != -3 || liquid.Moving {
		t.Fatalf("expected water at rest at -3, got %v moving=%v", liquid.Height, liquid.Moving)
	}
	offset := r.state.Data().GlobalWaterHeight
	if offset == nil || *offset != 1 {
		t.Fatalf("expected a global water offset of 1, got %v", offset)
	}
}

func TestWaterOffsetSurvivesReload(t *testing.T) {
	r := newRig(t, "village")
	r.level().RaiseWater(120, -3)
	r.level().UpdateLiquid(FixedDelta)

	r.request(t, func(e ecs.Entity) error {
		return ecs.Add(r.w, e, component.ResetToInitialLevelRequestComponent.Kind(), &component.ResetToInitialLevelRequest{})
	})

	liquid, ok := r.level().Liquid()
	if !ok {
		t.Fatalf("expected village liquid after reload")
	}
	if liquid.Height != -3 {
		t.Fatalf("expected restored height -3, got %v", liquid.Height)
	}
}

func TestStopWaterHaltsRaise(t *testing.T) {
	r := newRig(t, "village")
	r.level().RaiseWater(1, 6)
	r.level().UpdateLiquid(FixedDelta)
	r.level().StopWater()
	r.level().UpdateLiquid(FixedDelta)

	liquid, _ := r.level().Liquid()
	if liquid.Moving {
		t.Fatalf("expected the raise to stop")
	}
	if liquid.Height <= -4 || liquid.Height >= -3.9 {
		t.Fatalf("expected one step of rise, got %v", liquid.Height)
	}
}

func TestSetWaterHeightUsesTunedSpeed(t *testing.T) {
	r := newRig(t, "village")
	r.level().SetWaterHeight(-6)

	liquid, _ := r.level().Liquid()
	if !liquid.Moving || liquid.Raising || liquid.Target != -6 {
		t.Fatalf("expected a plain move to -6, got %+v", *liquid)
	}
	if liquid.Speed != r.tuning.Liquid.Speed {
		t.Fatalf("expected tuned speed %v, got %v", r.tuning.Liquid.Speed, liquid.Speed)
	}
}
