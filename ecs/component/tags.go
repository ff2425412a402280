package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type CameraTag struct{}

var CameraTagComponent = NewComponent[CameraTag]()

// Name identifies an entity authored in a level file.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()

// Volume is a numbered spawn point for level changes.
type Volume struct {
	ID int
}

var VolumeComponent = NewComponent[Volume]()

// Inactive marks nodes the save data has removed from play.
type Inactive struct{}

var InactiveComponent = NewComponent[Inactive]()
