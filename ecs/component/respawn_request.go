package component

// RespawnRequest asks for the player to be put back where it last stood
// safely. AtCheckpoint respawns at the saved checkpoint instead.
type RespawnRequest struct {
	AtCheckpoint bool
}

var RespawnRequestComponent = NewComponent[RespawnRequest]()
