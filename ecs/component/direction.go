package component

// Direction is a facing or approach direction. The order matters: the
// opposite of a direction is three entries away.
type Direction int

const (
	DirLeft Direction = iota
	DirDown
	DirBackward
	DirRight
	DirUp
	DirForward
	DirNone
)

var directionNames = [...]string{"left", "down", "backward", "right", "up", "forward", "none"}

func (d Direction) String() string {
	if d < DirLeft || d > DirNone {
		return "invalid"
	}
	return directionNames[d]
}

func (d Direction) Opposite() Direction {
	if d == DirNone {
		return DirNone
	}
	return (d + 3) % 6
}

// Sign is +1 for Right/Up/Forward, -1 for Left/Down/Backward and 0 for None.
func (d Direction) Sign() float64 {
	if d == DirNone {
		return 0
	}
	if d >= DirRight {
		return 1
	}
	return -1
}

// DirectionFrom maps the sign of v onto Left/Right/None.
func DirectionFrom(v float64) Direction {
	if v > 0 {
		return DirRight
	}
	if v < 0 {
		return DirLeft
	}
	return DirNone
}
