package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
)

func NewCamera(w *ecs.World) (ecs.Entity, error) {
	return BuildEntity(w, "camera.yaml")
}

// NewCameraAt creates the camera looking at origin from view.
func NewCameraAt(w *ecs.World, origin mgl64.Vec3, view component.Orthogonal) (ecs.Entity, error) {
	camera, err := NewCamera(w)
	if err != nil {
		return 0, err
	}
	if err := SetEntityOrigin(w, camera, origin); err != nil {
		return 0, fmt.Errorf("camera: override transform: %w", err)
	}
	if view != component.ViewNone {
		cam, ok := ecs.Get(w, camera, component.CameraComponent.Kind())
		if !ok {
			return 0, fmt.Errorf("camera: prefab has no camera component")
		}
		cam.Orthogonal = view
	}
	return camera, nil
}
