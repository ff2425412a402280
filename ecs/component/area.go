package component

import "github.com/go-gl/mathgl/mgl64"

// ChangeLevel marks an area that leads to another level. Door, BitDoor and
// Warp point at optional child entities that change how the player enters.
type ChangeLevel struct {
	NextLevel     string
	Volume        int
	DoSpin        bool
	KeyRequired   bool
	ViewAfterWarp Orthogonal

	Door    Entity
	BitDoor Entity
	Warp    Entity
}

var ChangeLevelComponent = NewComponent[ChangeLevel]()

// BlackHole marks a deadly area that swallows the player.
type BlackHole struct{}

var BlackHoleComponent = NewComponent[BlackHole]()

type CollectableKind int

const (
	CollectableNone CollectableKind = iota
	CollectableSmallCube
	CollectableBigCube
	CollectableAntiCube
	CollectableGoldenKey
	CollectableTreasureChest
)

var collectableNames = [...]string{"none", "small_cube", "big_cube", "anti_cube", "golden_key", "treasure_chest"}

func (k CollectableKind) String() string {
	if k < CollectableNone || int(k) >= len(collectableNames) {
		return "invalid"
	}
	return collectableNames[k]
}

func ParseCollectableKind(s string) (CollectableKind, bool) {
	for i, name := range collectableNames {
		if name == s {
			return CollectableKind(i), true
		}
	}
	return CollectableNone, false
}

// IsTreasure reports whether collecting the kind plays the treasure scene.
func (k CollectableKind) IsTreasure() bool {
	return k == CollectableBigCube || k == CollectableAntiCube
}

// Collectable is an area the player collects by touching it, or a chest it
// opens. A chest's Item is the collectable it reveals.
type Collectable struct {
	Kind        CollectableKind
	Item        CollectableKind
	Monitorable bool
}

var CollectableComponent = NewComponent[Collectable]()

// Door is the swinging panel of a door area. The swing starts when
// Opening is set and finishes after Duration seconds.
type Door struct {
	Opening  bool
	Elapsed  float64
	Duration float64

	ClosedBasis mgl64.Mat3
}

var DoorComponent = NewComponent[Door]()

// Progress is the normalized swing, in [0, 1].
func (d *Door) Progress() float64 {
	if d.Duration <= 0 {
		return 1
	}
	p := d.Elapsed / d.Duration
	if p > 1 {
		return 1
	}
	return p
}

// Warp marks a warp gate area.
type Warp struct{}

var WarpComponent = NewComponent[Warp]()

// Checkpoint marks a floor the player respawns above after dying.
type Checkpoint struct{}

var CheckpointComponent = NewComponent[Checkpoint]()
