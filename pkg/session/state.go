package session

// State is where the input field is in its edit cycle.
type State int

const (
	Idle State = iota
	Classifying
	Matching
	Displaying
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Classifying:
		return "classifying"
	case Matching:
		return "matching"
	case Displaying:
		return "displaying"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

// Key is a keystroke class as seen by the session.
type Key int

const (
	KeyEdit Key = iota // any key that changes the buffer
	KeySpace
	KeyEnter
	KeyRight
	KeyUp
	KeyDown
)

func (k Key) String() string {
	switch k {
	case KeyEdit:
		return "edit"
	case KeySpace:
		return "space"
	case KeyEnter:
		return "enter"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	}
	return "unknown"
}
