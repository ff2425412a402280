package system

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/ecs/entity"
)

func newTestCamera(t *testing.T) (*ecs.World, *CameraController, *[]string) {
	t.Helper()
	w := ecs.NewWorld()
	e, err := entity.NewCameraAt(w, mgl64.Vec3{0, 1, 10}, component.ViewFront)
	if err != nil {
		t.Fatalf("new camera: %v", err)
	}
	c := NewCameraController(w, e, component.DefaultTuning().Camera)

	var log []string
	for kind, name := range map[ecs.EventKind]string{
		ecs.EventPreRotate: "pre",
		ecs.EventRotating:  "rotating",
		ecs.EventRotated:   "rotated",
	} {
		w.Events().Subscribe(kind, func(ev ecs.Event) {
			if kind == ecs.EventRotating {
				log = append(log, fmt.Sprintf("%s %.2f", name, ev.Step))
				return
			}
			log = append(log, name)
		})
	}
	return w, c, &log
}

func TestCameraChangeRotationInstant(t *testing.T) {
	w, c, log := newTestCamera(t)

	c.ChangeRotation(component.ViewRight, 0)

	want := []string{"pre", "rotating 1.00", "rotated"}
	if fmt.Sprint(*log) != fmt.Sprint(want) {
		t.Fatalf("expected events %v, got %v", want, *log)
	}
	if c.Orthogonal() != component.ViewRight || c.LastOrthogonal() != component.ViewFront {
		t.Fatalf("expected front -> right, got %v -> %v", c.LastOrthogonal(), c.Orthogonal())
	}
	if c.Rotating() {
		t.Fatalf("expected rotation to be finished")
	}
	tr, _ := ecs.Get(w, c.Entity(), component.TransformComponent.Kind())
	if tr.Basis != component.ViewRight.Basis() {
		t.Fatalf("expected camera basis to match the right view")
	}
}

func TestCameraChangeRotationToSameViewIsSilent(t *testing.T) {
	_, c, log := newTestCamera(t)
	c.ChangeRotation(component.ViewFront, 0)
	if len(*log) != 0 {
		t.Fatalf("expected no events, got %v", *log)
	}
}

func TestCameraRotateByTweens(t *testing.T) {
	w, c, log := newTestCamera(t)

	if !c.RotateBy(1) {
		t.Fatalf("expected rotation to start")
	}
	if c.RotateBy(1) {
		t.Fatalf("expected a second rotation to be refused while turning")
	}
	if !c.Rotating() || c.Orthogonal() != component.ViewRight {
		t.Fatalf("expected rotating toward right, got rotating=%v view=%v", c.Rotating(), c.Orthogonal())
	}

	c.Update(FixedDelta, nil, true)
	if len(*log) != 2 || (*log)[0] != "pre" {
		t.Fatalf("expected pre then one rotating step, got %v", *log)
	}
	mid := c.Basis()
	if mid == component.ViewFront.Basis() || mid == component.ViewRight.Basis() {
		t.Fatalf("expected an in-between basis while turning")
	}

	for range 40 {
		c.Update(FixedDelta, nil, true)
	}
	if c.Rotating() {
		t.Fatalf("expected rotation to finish")
	}
	if last := (*log)[len(*log)-1]; last != "rotated" {
		t.Fatalf("expected rotated last, got %q", last)
	}
	tr, _ := ecs.Get(w, c.Entity(), component.TransformComponent.Kind())
	if tr.Basis != component.ViewRight.Basis() {
		t.Fatalf("expected canonical right basis after the turn")
	}
}

func TestCameraFollowsTargetInsideDragWindow(t *testing.T) {
	w, c, _ := newTestCamera(t)
	target := ecs.CreateEntity(w)
	tr := component.NewTransform(mgl64.Vec3{0, 1, 0}, mgl64.Ident3())
	if err := ecs.Add(w, target, component.TransformComponent.Kind(), &tr); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	cam, _ := ecs.Get(w, c.Entity(), component.CameraComponent.Kind())
	cam.Target = target

	// Inside the horizontal window the camera only takes the target's depth.
	tr.Origin = mgl64.Vec3{1, 1, 2}
	c.Update(FixedDelta, nil, false)
	if got := c.Origin(); got.X() != 0 || got.Z() != 2 {
		t.Fatalf("expected camera to hold x and match depth, got %v", got)
	}

	tr.Origin = mgl64.Vec3{10, 1, 2}
	for range 200 {
		c.Update(FixedDelta, nil, false)
	}
	if got := c.Origin().X(); got < 7.5 || got > 8.5 {
		t.Fatalf("expected camera to trail the target by the drag window, got x=%v", got)
	}
}
