// Package save holds the player's save data and the stores that persist it.
package save

import (
	"maps"
	"time"

	"github.com/milk9111/perspective/ecs/component"
)

// WinConditions counts what a level has had solved or collected.
type WinConditions struct {
	LockedDoors       int `yaml:"locked_doors"`
	UnlockedDoors     int `yaml:"unlocked_doors"`
	Chests            int `yaml:"chests"`
	BigCubes          int `yaml:"big_cubes"`
	OtherCollectibles int `yaml:"other_collectibles"`
	SmallCubes        int `yaml:"small_cubes"`
	Secrets           int `yaml:"secrets"`
}

// Fills reports whether every count of w is at least the count of goal.
func (w WinConditions) Fills(goal WinConditions) bool {
	return w.UnlockedDoors >= goal.UnlockedDoors &&
		w.LockedDoors >= goal.LockedDoors &&
		w.Chests >= goal.Chests &&
		w.BigCubes >= goal.BigCubes &&
		w.OtherCollectibles >= goal.OtherCollectibles &&
		w.SmallCubes >= goal.SmallCubes &&
		w.Secrets >= goal.Secrets
}

// LevelData is the per-level part of the save.
type LevelData struct {
	InactiveNodes         map[string]bool `yaml:"inactive_nodes"`
	LastStableWaterHeight *float64        `yaml:"last_stable_water_height,omitempty"`
	FilledConditions      WinConditions   `yaml:"filled_conditions"`
	FirstVisit            bool            `yaml:"first_visit"`
}

func NewLevelData() *LevelData {
	return &LevelData{InactiveNodes: make(map[string]bool)}
}

func (l *LevelData) Clone() *LevelData {
	out := *l
	out.InactiveNodes = maps.Clone(l.InactiveNodes)
	if l.LastStableWaterHeight != nil {
		h := *l.LastStableWaterHeight
		out.LastStableWaterHeight = &h
	}
	return &out
}

// Data is one save slot.
type Data struct {
	IsNew        bool       `yaml:"is_new"`
	CreationTime time.Time  `yaml:"creation_time"`
	PlayTime     float64    `yaml:"play_time"`
	SavedTime    *time.Time `yaml:"saved_time,omitempty"`

	Level string               `yaml:"level"`
	View  component.Orthogonal `yaml:"view"`
	Floor [3]float64           `yaml:"floor"`

	Keys       int `yaml:"keys"`
	BigCubes   int `yaml:"big_cubes"`
	AntiCubes  int `yaml:"anti_cubes"`
	SmallCubes int `yaml:"small_cubes"`

	GlobalWaterHeight *float64 `yaml:"global_water_height,omitempty"`

	World map[string]*LevelData `yaml:"world"`
}

func NewData() *Data {
	d := &Data{}
	d.Clear()
	d.CreationTime = time.Now()
	return d
}

// Clear resets the slot to a fresh game.
func (d *Data) Clear() {
	d.IsNew = true
	d.PlayTime = 0
	d.SavedTime = nil
	d.Level = ""
	d.View = component.ViewNone
	d.Floor = [3]float64{}
	d.Keys, d.BigCubes, d.AntiCubes, d.SmallCubes = 0, 0, 0, 0
	d.GlobalWaterHeight = nil
	d.World = make(map[string]*LevelData)
}

// ThisLevel returns the data of the current level, creating it on first
// use. It panics when no level is set.
func (d *Data) ThisLevel() *LevelData {
	if d.Level == "" {
		panic("save: level name is not set")
	}
	if d.World == nil {
		d.World = make(map[string]*LevelData)
	}
	l, ok := d.World[d.Level]
	if !ok {
		l = NewLevelData()
		d.World[d.Level] = l
	}
	if l.InactiveNodes == nil {
		l.InactiveNodes = make(map[string]bool)
	}
	return l
}

// EnterLevel makes name the current level and records whether this is the
// first visit.
func (d *Data) EnterLevel(name string) {
	d.Level = name
	if l, ok := d.World[name]; ok {
		l.FirstVisit = false
		return
	}
	l := NewLevelData()
	l.FirstVisit = true
	if d.World == nil {
		d.World = make(map[string]*LevelData)
	}
	d.World[name] = l
}

// Clone deep-copies the slot.
func (d *Data) Clone() *Data {
	out := *d
	if d.SavedTime != nil {
		t := *d.SavedTime
		out.SavedTime = &t
	}
	if d.GlobalWaterHeight != nil {
		h := *d.GlobalWaterHeight
		out.GlobalWaterHeight = &h
	}
	out.World = make(map[string]*LevelData, len(d.World))
	for k, v := range d.World {
		out.World[k] = v.Clone()
	}
	return &out
}
