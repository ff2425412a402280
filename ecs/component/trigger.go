package component

// Trigger runs a script when a body enters its collider.
type Trigger struct {
	Script string
	Mask   PhysicsLayer
	Once   bool

	Fired  bool
	Inside map[Entity]bool
}

var TriggerComponent = NewComponent[Trigger]()
