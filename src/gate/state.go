package gate

import "fmt"

// State is the position of a Gate in its session lifecycle.
type State int32

const (
	Disconnected State = iota
	Connected
	Waiting
	Reading
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connected:
		return "Connected"
	case Waiting:
		return "Waiting"
	case Reading:
		return "Reading"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}
