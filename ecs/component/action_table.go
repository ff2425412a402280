package component

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ActionGroup classifies actions. Group membership is the single source of
// truth for the Is* traits below.
type ActionGroup int

const (
	GroupNone ActionGroup = iota
	GroupCarry
	GroupClimb
	GroupEnter
	GroupIdle
	GroupLook
	GroupLedge
	GroupDrums
	GroupSwim
	GroupDefeated
)

var groupNames = [...]string{"none", "carry", "climb", "enter", "idle", "look", "ledge", "drums", "swim", "defeated"}

func (g ActionGroup) String() string {
	if g < GroupNone || g > GroupDefeated {
		return "invalid"
	}
	return groupNames[g]
}

func (g *ActionGroup) UnmarshalYAML(value *yaml.Node) error {
	for i, name := range groupNames {
		if name == value.Value {
			*g = ActionGroup(i)
			return nil
		}
	}
	return fmt.Errorf("component: unknown action group %q", value.Value)
}

// ActionInfo is one row of the action properties table.
type ActionInfo struct {
	Animation             string      `yaml:"animation"`
	Group                 ActionGroup `yaml:"group"`
	AllowsDirectionChange bool        `yaml:"allows_direction_change"`
	IgnoresGravity        bool        `yaml:"ignores_gravity"`
	DisallowsRespawn      bool        `yaml:"disallows_respawn"`
	FacesBack             bool        `yaml:"faces_back"`
	HandlesDepthChange    bool        `yaml:"handles_depth_change"`
	PreventsFall          bool        `yaml:"prevents_fall"`
	PreventsRotation      *bool       `yaml:"prevents_rotation"`
}

// ActionTable maps every action to its properties. Lookups of actions with
// no entry panic: a missing row is an authoring bug.
type ActionTable struct {
	infos [actionTypeCount]*ActionInfo
}

func NewActionTable(rows map[ActionType]ActionInfo) *ActionTable {
	t := &ActionTable{}
	for a, info := range rows {
		if !a.Valid() {
			continue
		}
		info := info
		t.infos[a] = &info
	}
	return t
}

func (t *ActionTable) Lookup(a ActionType) (ActionInfo, bool) {
	if t == nil || !a.Valid() || t.infos[a] == nil {
		return ActionInfo{}, false
	}
	return *t.infos[a], true
}

func (t *ActionTable) Info(a ActionType) ActionInfo {
	info, ok := t.Lookup(a)
	if !ok {
		panic(fmt.Sprintf("action table: no entry for %s", a))
	}
	return info
}

// Missing lists the actions other than ActionNone without a row.
func (t *ActionTable) Missing() []ActionType {
	var out []ActionType
	for _, a := range AllActionTypes() {
		if a == ActionNone {
			continue
		}
		if _, ok := t.Lookup(a); !ok {
			out = append(out, a)
		}
	}
	return out
}

func (t *ActionTable) AnimationName(a ActionType) string {
	return t.Info(a).Animation
}

func (t *ActionTable) AllowsDirectionChange(a ActionType) bool {
	return t.Info(a).AllowsDirectionChange
}

func (t *ActionTable) IgnoresGravity(a ActionType) bool {
	return t.Info(a).IgnoresGravity
}

func (t *ActionTable) DisallowsRespawn(a ActionType) bool {
	return t.Info(a).DisallowsRespawn
}

func (t *ActionTable) FacesBack(a ActionType) bool {
	return t.Info(a).FacesBack
}

func (t *ActionTable) HandlesDepthChange(a ActionType) bool {
	return t.Info(a).HandlesDepthChange
}

func (t *ActionTable) PreventsFall(a ActionType) bool {
	return t.Info(a).PreventsFall
}

// PreventsRotation defaults to the inverse of AllowsDirectionChange.
func (t *ActionTable) PreventsRotation(a ActionType) bool {
	info := t.Info(a)
	if info.PreventsRotation != nil {
		return *info.PreventsRotation
	}
	return !info.AllowsDirectionChange
}

func (t *ActionTable) group(a ActionType) ActionGroup {
	if a == ActionNone {
		return GroupNone
	}
	return t.Info(a).Group
}

func (t *ActionTable) IsCarrying(a ActionType) bool     { return t.group(a) == GroupCarry }
func (t *ActionTable) IsClimbing(a ActionType) bool     { return t.group(a) == GroupClimb }
func (t *ActionTable) IsEnteringDoor(a ActionType) bool { return t.group(a) == GroupEnter }
func (t *ActionTable) IsIdle(a ActionType) bool         { return t.group(a) == GroupIdle }
func (t *ActionTable) IsLooking(a ActionType) bool      { return t.group(a) == GroupLook }
func (t *ActionTable) IsOnLedge(a ActionType) bool      { return t.group(a) == GroupLedge }
func (t *ActionTable) IsPlayingDrums(a ActionType) bool { return t.group(a) == GroupDrums }
func (t *ActionTable) IsSwimming(a ActionType) bool     { return t.group(a) == GroupSwim }
func (t *ActionTable) IsAlive(a ActionType) bool        { return t.group(a) != GroupDefeated }
