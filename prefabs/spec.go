package prefabs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/milk9111/perspective/ecs/component"
	"gopkg.in/yaml.v3"
)

const (
	ActionsFile    = "actions.yaml"
	AnimationsFile = "animations.yaml"
	TuningFile     = "tuning.yaml"
)

// ErrMissingAction is returned when the action table leaves an action out.
var ErrMissingAction = errors.New("prefabs: action table is missing actions")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadActionTable reads actions.yaml and checks that it covers every action.
func LoadActionTable() (*component.ActionTable, error) {
	rows, err := LoadSpec[map[component.ActionType]component.ActionInfo](ActionsFile)
	if err != nil {
		return nil, err
	}
	return BuildActionTable(rows)
}

func BuildActionTable(rows map[component.ActionType]component.ActionInfo) (*component.ActionTable, error) {
	table := component.NewActionTable(rows)
	if missing := table.Missing(); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, a := range missing {
			names = append(names, a.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingAction, strings.Join(names, ", "))
	}
	return table, nil
}

// LoadClips reads the animation clip table.
func LoadClips() (map[string]component.AnimationClip, error) {
	clips, err := LoadSpec[map[string]component.AnimationClip](AnimationsFile)
	if err != nil {
		return nil, err
	}
	for name, clip := range clips {
		if clip.Length <= 0 {
			return nil, fmt.Errorf("prefabs: clip %s: length must be positive", name)
		}
	}
	return clips, nil
}

// LoadTuning overlays tuning.yaml onto the compiled-in defaults.
func LoadTuning() (component.Tuning, error) {
	tuning := component.DefaultTuning()
	data, err := Load(TuningFile)
	if err != nil {
		return tuning, fmt.Errorf("prefabs: load %s: %w", TuningFile, err)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return component.DefaultTuning(), fmt.Errorf("prefabs: unmarshal %s: %w", TuningFile, err)
	}
	return tuning, nil
}

// CheckAnimations reports action animations that have no clip.
func CheckAnimations(table *component.ActionTable, clips map[string]component.AnimationClip) error {
	var missing []string
	for _, a := range component.AllActionTypes() {
		if a == component.ActionNone {
			continue
		}
		name := table.AnimationName(a)
		if _, ok := clips[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("prefabs: animations without clips: %s", strings.Join(missing, ", "))
}
