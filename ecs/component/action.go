package component

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ActionType is the player's discrete action. Every value except
// ActionNone needs an entry in the action table.
type ActionType int

const (
	ActionNone ActionType = iota

	ActionIdle
	ActionIdleLookAround
	ActionIdlePlay
	ActionIdleSleep
	ActionIdleYawn
	ActionCarryIdle
	ActionCarryHeavyIdle
	ActionTeeter
	ActionTeeterPaul

	ActionWalkTo
	ActionWalk
	ActionRun
	ActionRunSwitch
	ActionCarryWalk
	ActionCarryHeavyWalk
	ActionSlide
	ActionCarrySlide
	ActionCarryHeavySlide

	ActionJump
	ActionCarryJump
	ActionCarryHeavyJump
	ActionBounce
	ActionFly
	ActionFall
	ActionLand
	ActionDropDown

	ActionAirPanic
	ActionDying
	ActionSuckedIn
	ActionHurt
	ActionCrushHorz
	ActionCrushVert

	ActionGrab
	ActionPush
	ActionGrabTombstone
	ActionLetGoOfTombstone
	ActionPivotTombstone
	ActionPushPivot
	ActionHitBell
	ActionTurnAwayFromBell
	ActionTurnToBell
	ActionOpenDoor
	ActionLiftTrile
	ActionThrowTrile
	ActionDropTrile
	ActionLiftHeavy
	ActionThrowHeavy
	ActionDropHeavy

	ActionLookUp
	ActionLookDown
	ActionLookLeft
	ActionLookRight

	ActionDrumsCrash
	ActionDrumsHiHat
	ActionDrumsIdle
	ActionDrumsTom
	ActionDrumsTom2
	ActionDrumsToss
	ActionDrumsTwirl

	ActionEnterDoor
	ActionEnterDoorSpin
	ActionEnterPipe
	ActionEnterTunnel
	ActionExitDoor
	ActionCarryEnter
	ActionCarryEnterDoorSpin
	ActionCarryEnterTunnel
	ActionCarryExit
	ActionCarryHeavyEnter
	ActionCarryHeavyEnterDoorSpin
	ActionCarryHeavyEnterTunnel
	ActionCarryHeavyExit
	ActionGateWarp

	ActionIdleToClimbBack
	ActionIdleToClimbFront
	ActionIdleToClimbSide
	ActionClimbFront
	ActionClimbBack
	ActionClimbSide
	ActionClimbFrontSideways
	ActionClimbBackSideways
	ActionClimbOver
	ActionJumpToClimb
	ActionJumpToClimbSide

	ActionCornerPullUp
	ActionCornerLowerTo
	ActionCornerGrab
	ActionLedgeGrabFront
	ActionLedgeGrabBack
	ActionLedgePullUpFront
	ActionLedgePullUpBack
	ActionLedgeLowerTo
	ActionShimmyFront
	ActionShimmyBack
	ActionToCornerFront
	ActionToCornerBack
	ActionFromCornerBack

	ActionFloat
	ActionSwim
	ActionHurtSwim
	ActionSink

	ActionFirstPerson
	ActionFindTreasure
	ActionOpenTreasure
	ActionReadListen

	actionTypeCount
)

var actionNames = [actionTypeCount]string{
	ActionNone:                    "None",
	ActionIdle:                    "Idle",
	ActionIdleLookAround:          "IdleLookAround",
	ActionIdlePlay:                "IdlePlay",
	ActionIdleSleep:               "IdleSleep",
	ActionIdleYawn:                "IdleYawn",
	ActionCarryIdle:               "CarryIdle",
	ActionCarryHeavyIdle:          "CarryHeavyIdle",
	ActionTeeter:                  "Teeter",
	ActionTeeterPaul:              "TeeterPaul",
	ActionWalkTo:                  "WalkTo",
	ActionWalk:                    "Walk",
	ActionRun:                     "Run",
	ActionRunSwitch:               "RunSwitch",
	ActionCarryWalk:               "CarryWalk",
	ActionCarryHeavyWalk:          "CarryHeavyWalk",
	ActionSlide:                   "Slide",
	ActionCarrySlide:              "CarrySlide",
	ActionCarryHeavySlide:         "CarryHeavySlide",
	ActionJump:                    "Jump",
	ActionCarryJump:               "CarryJump",
	ActionCarryHeavyJump:          "CarryHeavyJump",
	ActionBounce:                  "Bounce",
	ActionFly:                     "Fly",
	ActionFall:                    "Fall",
	ActionLand:                    "Land",
	ActionDropDown:                "DropDown",
	ActionAirPanic:                "AirPanic",
	ActionDying:                   "Dying",
	ActionSuckedIn:                "SuckedIn",
	ActionHurt:                    "Hurt",
	ActionCrushHorz:               "CrushHorz",
	ActionCrushVert:               "CrushVert",
	ActionGrab:                    "Grab",
	ActionPush:                    "Push",
	ActionGrabTombstone:           "GrabTombstone",
	ActionLetGoOfTombstone:        "LetGoOfTombstone",
	ActionPivotTombstone:          "PivotTombstone",
	ActionPushPivot:               "PushPivot",
	ActionHitBell:                 "HitBell",
	ActionTurnAwayFromBell:        "TurnAwayFromBell",
	ActionTurnToBell:              "TurnToBell",
	ActionOpenDoor:                "OpenDoor",
	ActionLiftTrile:               "LiftTrile",
	ActionThrowTrile:              "ThrowTrile",
	ActionDropTrile:               "DropTrile",
	ActionLiftHeavy:               "LiftHeavy",
	ActionThrowHeavy:              "ThrowHeavy",
	ActionDropHeavy:               "DropHeavy",
	ActionLookUp:                  "LookUp",
	ActionLookDown:                "LookDown",
	ActionLookLeft:                "LookLeft",
	ActionLookRight:               "LookRight",
	ActionDrumsCrash:              "DrumsCrash",
	ActionDrumsHiHat:              "DrumsHiHat",
	ActionDrumsIdle:               "DrumsIdle",
	ActionDrumsTom:                "DrumsTom",
	ActionDrumsTom2:               "DrumsTom2",
	ActionDrumsToss:               "DrumsToss",
	ActionDrumsTwirl:              "DrumsTwirl",
	ActionEnterDoor:               "EnterDoor",
	ActionEnterDoorSpin:           "EnterDoorSpin",
	ActionEnterPipe:               "EnterPipe",
	ActionEnterTunnel:             "EnterTunnel",
	ActionExitDoor:                "ExitDoor",
	ActionCarryEnter:              "CarryEnter",
	ActionCarryEnterDoorSpin:      "CarryEnterDoorSpin",
	ActionCarryEnterTunnel:        "CarryEnterTunnel",
	ActionCarryExit:               "CarryExit",
	ActionCarryHeavyEnter:         "CarryHeavyEnter",
	ActionCarryHeavyEnterDoorSpin: "CarryHeavyEnterDoorSpin",
	ActionCarryHeavyEnterTunnel:   "CarryHeavyEnterTunnel",
	ActionCarryHeavyExit:          "CarryHeavyExit",
	ActionGateWarp:                "GateWarp",
	ActionIdleToClimbBack:         "IdleToClimbBack",
	ActionIdleToClimbFront:        "IdleToClimbFront",
	ActionIdleToClimbSide:         "IdleToClimbSide",
	ActionClimbFront:              "ClimbFront",
	ActionClimbBack:               "ClimbBack",
	ActionClimbSide:               "ClimbSide",
	ActionClimbFrontSideways:      "ClimbFrontSideways",
	ActionClimbBackSideways:       "ClimbBackSideways",
	ActionClimbOver:               "ClimbOver",
	ActionJumpToClimb:             "JumpToClimb",
	ActionJumpToClimbSide:         "JumpToClimbSide",
	ActionCornerPullUp:            "CornerPullUp",
	ActionCornerLowerTo:           "CornerLowerTo",
	ActionCornerGrab:              "CornerGrab",
	ActionLedgeGrabFront:          "LedgeGrabFront",
	ActionLedgeGrabBack:           "LedgeGrabBack",
	ActionLedgePullUpFront:        "LedgePullUpFront",
	ActionLedgePullUpBack:         "LedgePullUpBack",
	ActionLedgeLowerTo:            "LedgeLowerTo",
	ActionShimmyFront:             "ShimmyFront",
	ActionShimmyBack:              "ShimmyBack",
	ActionToCornerFront:           "ToCornerFront",
	ActionToCornerBack:            "ToCornerBack",
	ActionFromCornerBack:          "FromCornerBack",
	ActionFloat:                   "Float",
	ActionSwim:                    "Swim",
	ActionHurtSwim:                "HurtSwim",
	ActionSink:                    "Sink",
	ActionFirstPerson:             "FirstPerson",
	ActionFindTreasure:            "FindTreasure",
	ActionOpenTreasure:            "OpenTreasure",
	ActionReadListen:              "ReadListen",
}

func (a ActionType) String() string {
	if a < 0 || a >= actionTypeCount {
		return fmt.Sprintf("ActionType(%d)", int(a))
	}
	return actionNames[a]
}

func (a ActionType) Valid() bool {
	return a >= 0 && a < actionTypeCount
}

// In reports whether a is one of set.
func (a ActionType) In(set ...ActionType) bool {
	for _, s := range set {
		if a == s {
			return true
		}
	}
	return false
}

// AllActionTypes lists every action, ActionNone included.
func AllActionTypes() []ActionType {
	out := make([]ActionType, actionTypeCount)
	for i := range out {
		out[i] = ActionType(i)
	}
	return out
}

func ParseActionType(s string) (ActionType, error) {
	for i, name := range actionNames {
		if name == s {
			return ActionType(i), nil
		}
	}
	return ActionNone, fmt.Errorf("component: unknown action %q", s)
}

func (a *ActionType) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseActionType(value.Value)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a ActionType) MarshalYAML() (any, error) {
	return a.String(), nil
}
