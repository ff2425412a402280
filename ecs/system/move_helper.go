package system

import (
	"math"

	"github.com/milk9111/perspective/mathz"
)

// JumpInfo is the ballistics of a jump that peaks at MaxHeight after
// Duration seconds. Releasing the button early caps the rise at
// Termination, which lands the jump at MinHeight.
type JumpInfo struct {
	Fall        float64
	Jump        float64
	Termination float64
}

func NewJumpInfo(minHeight, maxHeight, duration float64) JumpInfo {
	fall := (-2 * maxHeight) / (duration * duration)
	jump := math.Sqrt(-2 * fall * maxHeight)
	return JumpInfo{
		Fall:        fall,
		Jump:        jump,
		Termination: math.Sqrt(jump*jump + 2*fall*(maxHeight-minHeight)),
	}
}

// Scaled returns the jump with every velocity multiplied by f.
func (j JumpInfo) Scaled(f float64) JumpInfo {
	return JumpInfo{Fall: j.Fall * f, Jump: j.Jump * f, Termination: j.Termination * f}
}

// MoveHelper ramps a body's local x velocity toward input times a walk or
// run speed. Input held past RunThreshold for longer than one
// acceleration step switches to the run speed.
type MoveHelper struct {
	WalkSpeed    float64
	RunSpeed     float64
	Acceleration float64
	RunThreshold float64

	runTime float64
	delta   float64
}

func NewMoveHelper(walkSpeed, runSpeed, acceleration, runThreshold float64) *MoveHelper {
	return &MoveHelper{
		WalkSpeed:    walkSpeed,
		RunSpeed:     runSpeed,
		Acceleration: acceleration,
		RunThreshold: runThreshold,
	}
}

// Update moves the x component of velocity and returns the result.
func (m *MoveHelper) Update(delta, input, velocityX float64) float64 {
	m.delta = delta
	if math.Abs(input) > m.RunThreshold {
		m.runTime += delta
	} else {
		m.runTime = 0
	}
	top := m.WalkSpeed
	if m.IsRunning() {
		top = m.RunSpeed
	}
	return mathz.MoveToward(velocityX, input*top, m.Acceleration*delta)
}

func (m *MoveHelper) Reset() { m.runTime = 0 }

func (m *MoveHelper) RunTime() float64 { return m.runTime }

func (m *MoveHelper) IsRunning() bool {
	return m.runTime > m.Acceleration*m.delta
}
