package component

// CubeAssembly tracks the small cubes collected since the last full set.
// Timer counts down to the moment the set is checked; Assembled is the big
// cube spawned from a full set while the player collects it.
type CubeAssembly struct {
	Timer     float64
	Counting  bool
	Assembled Entity
}

var CubeAssemblyComponent = NewComponent[CubeAssembly]()
