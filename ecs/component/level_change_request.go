package component

// NextChangeInfo is handed from the old level to the new one.
type NextChangeInfo struct {
	Volume int
	Action ActionType

	// HasPickup is set when the player carried a body through the door.
	HasPickup   bool
	PickupHeavy bool

	// View is set by warp gates: the new level starts above the volume,
	// seen from View, and the spot becomes the checkpoint.
	View Orthogonal
}

// LevelChangeRequest is a one-shot request emitted by gameplay systems to
// ask the game loop to load a different level. Systems only emit data; the
// game owns level IO and world reinitialization.
type LevelChangeRequest struct {
	NextLevel string
	Info      NextChangeInfo
}

var LevelChangeRequestComponent = NewComponent[LevelChangeRequest]()
