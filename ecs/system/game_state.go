package system

import (
	"context"
	"errors"
	"time"

	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/save"
	"github.com/rs/zerolog"
)

// SaveDelay is how long a save request waits before the snapshot is
// written, so bursts of requests produce one write.
const SaveDelay = 4.0

// GameState owns the save slot in play and the hand-off between levels.
// It outlives the worlds it is used with.
type GameState struct {
	store save.Store
	slot  int
	data  *save.Data
	log   zerolog.Logger

	pending   *save.Data
	saveTimer float64

	// NextChange is set while a level change is in flight.
	NextChange *component.NextChangeInfo
}

func NewGameState(store save.Store, slot int, log zerolog.Logger) *GameState {
	if store == nil {
		store = save.NewMemoryStore()
	}
	return &GameState{store: store, slot: slot, data: save.NewData(), log: log}
}

func (g *GameState) Data() *save.Data { return g.data }

func (g *GameState) Slot() int { return g.slot }

// LoadGame reads the slot. A slot with no snapshot starts a new game.
func (g *GameState) LoadGame(ctx context.Context) error {
	data, err := g.store.Load(ctx, g.slot)
	if errors.Is(err, save.ErrNoSnapshot) {
		g.data = save.NewData()
		return nil
	}
	if err != nil {
		return err
	}
	g.data = data
	return nil
}

// SaveGame snapshots the slot and schedules the write.
func (g *GameState) SaveGame() {
	g.pending = g.data.Clone()
	g.saveTimer = SaveDelay
}

// Tick counts down a scheduled write and performs it when due.
func (g *GameState) Tick(ctx context.Context, delta float64) {
	g.data.PlayTime += delta
	if g.pending == nil {
		return
	}
	g.saveTimer -= delta
	if g.saveTimer > 0 {
		return
	}
	g.WriteSaveData(ctx)
}

// WriteSaveData writes the scheduled snapshot now.
func (g *GameState) WriteSaveData(ctx context.Context) {
	if g.pending == nil {
		return
	}
	if g.data.SavedTime != nil {
		g.pending.IsNew = false
		g.data.IsNew = false
	}
	now := time.Now()
	g.data.SavedTime = &now
	g.pending.SavedTime = &now

	snapshot := g.pending
	g.pending = nil
	g.saveTimer = 0
	if err := g.store.Save(ctx, g.slot, snapshot); err != nil {
		g.log.Error().Err(err).Int("slot", g.slot).Msg("save failed")
	}
}

// ClearSave resets the slot and removes its snapshot.
func (g *GameState) ClearSave(ctx context.Context) {
	g.data.Clear()
	g.pending = nil
	if err := g.store.Clear(ctx, g.slot); err != nil {
		g.log.Error().Err(err).Int("slot", g.slot).Msg("clear save failed")
	}
}

// MakeNodeInactive records a named node as removed from play in the
// current level.
func (g *GameState) MakeNodeInactive(name string) {
	if name == "" || g.data.Level == "" {
		return
	}
	g.data.ThisLevel().InactiveNodes[name] = true
}

// IsNodeInactive reports whether the current level has removed name.
func (g *GameState) IsNodeInactive(name string) bool {
	if name == "" || g.data.Level == "" {
		return false
	}
	return g.data.ThisLevel().InactiveNodes[name]
}
