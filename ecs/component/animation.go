package component

// AnimationClip describes a named clip. Frames are not modeled: behaviors
// only observe position, length and whether the clip is still playing.
type AnimationClip struct {
	Length float64 `yaml:"length"`
	Loop   bool    `yaml:"loop"`
}

// Animation is the playback state of an entity's clip player.
type Animation struct {
	Current  string
	Position float64
	Speed    float64
	Playing  bool
	Loop     bool
}

var AnimationComponent = NewComponent[Animation]()
