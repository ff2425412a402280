package component

import "github.com/go-gl/mathgl/mgl64"

// NpcAction is what a character is doing. Each action plays the clip
// "npc_" + its name.
type NpcAction int

const (
	NpcNone NpcAction = iota
	NpcIdle
	NpcIdle2
	NpcIdle3
	NpcWalk
	NpcTurn
	NpcTalk
	NpcBurrow
	NpcHide
	NpcComeOut

	npcActionCount
)

var npcActionNames = [npcActionCount]string{
	"none", "idle", "idle2", "idle3", "walk", "turn", "talk", "burrow", "hide", "come_out",
}

func (a NpcAction) String() string {
	if a < 0 || a >= npcActionCount {
		return "invalid"
	}
	return npcActionNames[a]
}

func ParseNpcAction(name string) (NpcAction, bool) {
	for i, n := range npcActionNames {
		if n == name && i != int(NpcNone) {
			return NpcAction(i), true
		}
	}
	return NpcNone, false
}

// AllowsRandomChange reports whether the action ends on a timer rather
// than with its clip.
func (a NpcAction) AllowsRandomChange() bool {
	return a == NpcIdle || a == NpcIdle3 || a == NpcWalk
}

func (a NpcAction) Loops() bool {
	switch a {
	case NpcIdle2, NpcTurn, NpcBurrow, NpcHide, NpcComeOut:
		return false
	}
	return true
}

func (a NpcAction) IsSpecialIdle() bool {
	return a == NpcIdle2 || a == NpcIdle3
}

func (a NpcAction) Clip() string {
	return "npc_" + a.String()
}

// Npc is a character that idles, paces between Home and Home+Path and
// talks to the player. Can lists the actions it has clips for.
type Npc struct {
	WalkSpeed        float64
	AvoidsPlayer     bool
	RandomizeSpeech  bool
	SayFirstLineOnce bool
	Speech           []string
	Path             mgl64.Vec3
	Can              map[NpcAction]bool

	Action   NpcAction
	Facing   Direction
	Line     string
	Speaking bool
	Started  bool

	Home           mgl64.Vec3
	WalkStep       float64
	WalkedDistance float64
	SaidFirstLine  bool
	LineIndex      int
	WaitToSpeak    bool
	SinceChange    float64
	UntilChange    float64
}

var NpcComponent = NewComponent[Npc]()

// CodeArea listens for a button sequence while the player stands inside
// it.
type CodeArea struct {
	Pattern []InputAction

	Entered    []InputAction
	Inside     bool
	SinceInput float64
	Solved     bool
}

var CodeAreaComponent = NewComponent[CodeArea]()
