package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
)

// RespawnHelper records where the player last stood safely and puts it
// back there.
type RespawnHelper struct {
	player *PlayerHandle
	camera *CameraController
	level  *Level
}

func NewRespawnHelper(player *PlayerHandle, camera *CameraController, level *Level) *RespawnHelper {
	return &RespawnHelper{player: player, camera: camera, level: level}
}

func (r *RespawnHelper) state() *component.Respawn { return r.player.Respawn() }

// Used reports whether the last reset came from Load.
func (r *RespawnHelper) Used() bool { return r.state().Used }

func (r *RespawnHelper) SetUsed(v bool) { r.state().Used = v }

func (r *RespawnHelper) FloorOriginOnLeave() mgl64.Vec3 { return r.state().FloorOriginOnLeave }

func (r *RespawnHelper) OffsetOnFloorLeave() float64 { return r.state().OffsetOnFloorLeave }

func (r *RespawnHelper) RespawnOrigin() mgl64.Vec3 { return r.state().RespawnOrigin }

// Load puts the player back on the last recorded pose.
func (r *RespawnHelper) Load() {
	s := r.state()
	p := r.player
	s.Used = true
	p.SetOrigin(s.RespawnOrigin)
	action := s.LastAction
	if action == component.ActionNone {
		action = component.ActionIdle
	}
	p.SetAction(action)
	p.SetFacing(s.LastFacing)
	p.SetGlobalVelocity(p.Axes().Up.Mul(Snap))
	p.State().HeldBody = s.LastHeldBody
	p.Body().Floor = component.CollisionInfo{Collider: s.LastFloor}
	if r.camera != nil && s.Orthogonal != component.ViewNone {
		r.camera.ChangeRotation(s.Orthogonal, 1)
	}
}

// LoadAtCheckpoint puts the player above the saved checkpoint floor.
func (r *RespawnHelper) LoadAtCheckpoint() {
	s := r.state()
	p := r.player
	ps := p.State()
	ps.HeldBody = 0
	ps.CarriedBody = 0

	data := r.level.GameState().Data()
	if r.camera != nil && data.View != component.ViewNone {
		r.camera.ChangeRotation(data.View, 0)
	}

	up := p.Axes().Up
	if !s.Checkpoint.Valid() || !ecs.IsAlive(r.level.World(), s.Checkpoint) {
		floor := mgl64.Vec3{data.Floor[0], data.Floor[1], data.Floor[2]}
		p.SetOrigin(floor.Add(up.Mul(p.Size().Y() * 2)))
	} else {
		origin, ext := colliderViewExtents(r.level.World(), s.Checkpoint, p.Basis())
		p.SetOrigin(origin.Add(up.Mul(ext.Y() + p.Size().Y())))
	}

	p.SetAction(component.ActionIdle)
	p.SetFacing(component.DirRight)
}

// Record remembers the current pose when the player is somewhere it can
// respawn: grounded, climbing, swimming, or hanging from a corner or
// entering a pipe. A checkpoint record also saves the level, view and
// floor.
func (r *RespawnHelper) Record(markCheckpoint bool) {
	s := r.state()
	p := r.player
	if !(p.OnFloor() || p.IsClimbing() || p.IsSwimming() ||
		s.LastAction == component.ActionCornerGrab || s.LastAction == component.ActionEnterPipe) {
		return
	}

	axes := p.Axes()
	origin := p.Origin()
	orthogonal := component.OrthogonalOf(p.Basis())
	w := r.level.World()

	switch {
	case p.IsClimbing():
		s.FloorOriginOnLeave = mathz.Scale(axes.XMask, mathz.Floor(origin)).
			Add(axes.Right.Mul(0.5)).
			Add(mathz.Ceil(mathz.Scale(axes.YMask, origin))).
			Add(axes.Up.Mul(0.5)).
			Add(axes.ZMask.Mul(origin.Z()))
	case s.LastAction == component.ActionCornerGrab || p.Actions().IsSwimming(s.LastAction) || s.LastAction == component.ActionEnterPipe:
		s.FloorOriginOnLeave = origin
	case s.LastFloor.Valid() && ecs.IsAlive(w, s.LastFloor):
		floor, ext := colliderViewExtents(w, s.LastFloor, p.Basis())
		s.FloorOriginOnLeave = floor.Add(axes.Up.Mul(ext.Y() + p.Size().Y()))
	}

	if r.camera != nil {
		s.OffsetOnFloorLeave = r.camera.Offset().Y()
	}

	if !p.Actions().DisallowsRespawn(p.Action()) && !p.InBackground() {
		s.LastAction = p.Action()
		s.RespawnOrigin = s.FloorOriginOnLeave
		s.LastFacing = p.Facing()
		s.LastFloor, _ = p.Floor()
		s.LastHeldBody = p.State().HeldBody
		s.Orthogonal = orthogonal
		s.HasRecord = true
	}

	if markCheckpoint && s.LastFloor.Valid() {
		s.Checkpoint = s.LastFloor
		data := r.level.GameState().Data()
		data.Level = r.level.Name()
		data.View = orthogonal
		if floor, ok := OriginOf(w, s.LastFloor); ok {
			data.Floor = [3]float64{floor.X(), floor.Y(), floor.Z()}
		}
		r.level.GameState().SaveGame()
	}
}

// colliderViewExtents returns the origin of e and its half extents along
// the axes of basis.
func colliderViewExtents(w *ecs.World, e ecs.Entity, basis mgl64.Mat3) (mgl64.Vec3, mgl64.Vec3) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	c, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
	if !ok {
		return t.Origin, mgl64.Vec3{}
	}
	return t.Origin, component.ViewExtents(component.WorldExtents(c.Extents, t.Basis), basis)
}

// RespawnSystem serves respawn requests raised by hazards and black holes.
type RespawnSystem struct {
	helper *RespawnHelper
}

func NewRespawnSystem(helper *RespawnHelper) *RespawnSystem {
	return &RespawnSystem{helper: helper}
}

func (s *RespawnSystem) Update(w *ecs.World) {
	if w == nil || s.helper == nil {
		return
	}
	var requests []ecs.Entity
	atCheckpoint := false
	ecs.ForEach(w, component.RespawnRequestComponent.Kind(), func(e ecs.Entity, req *component.RespawnRequest) {
		requests = append(requests, e)
		atCheckpoint = atCheckpoint || req.AtCheckpoint
	})
	if len(requests) == 0 {
		return
	}
	for _, e := range requests {
		_ = ecs.Remove(w, e, component.RespawnRequestComponent.Kind())
	}
	s.helper.player.Reset()
	if atCheckpoint {
		s.helper.LoadAtCheckpoint()
		return
	}
	s.helper.Load()
}
