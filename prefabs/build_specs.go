package prefabs

import (
	"github.com/milk9111/perspective/ecs/component"
	"gopkg.in/yaml.v3"
)

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	Origin [3]float64 `yaml:"origin"`
}

type ColliderComponentSpec struct {
	Extents [3]float64             `yaml:"extents"`
	Layer   component.PhysicsLayer `yaml:"layer"`
	Area    bool                   `yaml:"area"`
}

type BodyComponentSpec struct {
	Mask component.PhysicsLayer `yaml:"mask"`
}

type PlayerComponentSpec struct {
	Action     component.ActionType `yaml:"action"`
	BlinkSpeed float64              `yaml:"blink_speed"`
}

type AnimationComponentSpec struct {
	Current string  `yaml:"current"`
	Speed   float64 `yaml:"speed"`
}

type CameraComponentSpec struct {
	View component.Orthogonal `yaml:"view"`
	Size float64              `yaml:"size"`
}

type PersistentComponentSpec struct {
	ID                string `yaml:"id"`
	KeepOnLevelChange bool   `yaml:"keep_on_level_change"`
	KeepOnReload      bool   `yaml:"keep_on_reload"`
}
