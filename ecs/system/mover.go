package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// StartMove tweens e by offset over duration seconds from where it is
// now. A zero duration moves it at once.
func StartMove(w *ecs.World, e ecs.Entity, offset mgl64.Vec3, duration float64) bool {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return false
	}
	m, ok := ecs.Get(w, e, component.MoverComponent.Kind())
	if !ok {
		if err := ecs.Add(w, e, component.MoverComponent.Kind(), &component.Mover{}); err != nil {
			return false
		}
		m, _ = ecs.Get(w, e, component.MoverComponent.Kind())
	}
	*m = component.Mover{From: t.Origin, To: t.Origin.Add(offset), Duration: duration, Active: true}
	return true
}

// MoverSystem advances mover tweens and carries the bodies standing on a
// moving entity along with it.
type MoverSystem struct {
	pause *Pause
}

func NewMoverSystem(pause *Pause) *MoverSystem { return &MoverSystem{pause: pause} }

func (s *MoverSystem) Update(w *ecs.World) {
	if w == nil || s.pause.Active() {
		return
	}
	moved := map[ecs.Entity]mgl64.Vec3{}
	ecs.ForEach2(w, component.MoverComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, m *component.Mover, t *component.Transform) {
		m.Delta = mgl64.Vec3{}
		if !m.Active {
			return
		}
		m.Elapsed += FixedDelta
		step := 1.0
		if m.Duration > 0 {
			step = mathz.Clamp01(m.Elapsed / m.Duration)
		}
		next := mathz.LerpVec(m.From, m.To, mathz.SmoothStep(0, 1, step))
		m.Delta = next.Sub(t.Origin)
		t.Origin = next
		if !mathz.VecIsZeroApprox(m.Delta) {
			moved[e] = m.Delta
		}
		if step < 1 {
			return
		}
		if m.PingPong {
			m.From, m.To = m.To, m.From
			m.Elapsed = 0
			return
		}
		m.Active = false
	})
	if len(moved) == 0 {
		return
	}

	ecs.ForEach2(w, component.BodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, b *component.Body, t *component.Transform) {
		if !b.Floor.Hit() {
			return
		}
		if d, ok := moved[b.Floor.Collider]; ok {
			t.Origin = t.Origin.Add(d)
		}
	})
}
