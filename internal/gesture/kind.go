// Package gesture decides which gestures may start on a stacked surface,
// classifies how a finished pan resolves, and turns raw pointer samples into
// pan and tap events.
package gesture

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/winstack/internal/geometry"
)

// WindowType selects how a surface reacts to being dragged down.
type WindowType int

const (
	// Dismissable surfaces are removed from the stack when flung or dragged down.
	Dismissable WindowType = iota
	// Offsetable surfaces come to rest partially lowered and can be tapped back up.
	Offsetable
)

// String returns the string representation of WindowType.
func (t WindowType) String() string {
	switch t {
	case Dismissable:
		return "dismissable"
	case Offsetable:
		return "offsetable"
	default:
		return "unknown"
	}
}

// ParseWindowType parses the text form produced by String.
func ParseWindowType(s string) (WindowType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dismissable", "dismiss", "":
		return Dismissable, nil
	case "offsetable", "offset":
		return Offsetable, nil
	default:
		return Dismissable, fmt.Errorf("invalid window type %q, must be one of: dismissable, offsetable", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t WindowType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *WindowType) UnmarshalText(text []byte) error {
	parsed, err := ParseWindowType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Kind is the closed set of gestures a surface can be asked about.
// It is implemented only by Pan and Tap.
type Kind interface {
	kind()
}

// Pan describes a pan about to begin.
type Pan struct {
	// Start is where the pointer went down, in the surface's coordinate space.
	Start geometry.Point
	// VelocityY is the vertical velocity at the moment of recognition, in points/sec.
	VelocityY float64
}

// Tap describes a tap about to be delivered.
type Tap struct {
	Position geometry.Point
}

func (Pan) kind() {}
func (Tap) kind() {}

// Phase is the lifecycle phase of a continuous gesture.
type Phase int

const (
	PhasePossible Phase = iota
	PhaseBegan
	PhaseChanged
	PhaseEnded
	PhaseCancelled
	PhaseFailed
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhasePossible:
		return "possible"
	case PhaseBegan:
		return "began"
	case PhaseChanged:
		return "changed"
	case PhaseEnded:
		return "ended"
	case PhaseCancelled:
		return "cancelled"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PanEvent is one update of a recognized pan.
// Translation is measured from where the pan began.
type PanEvent struct {
	Phase       Phase
	Translation geometry.Point
	Velocity    geometry.Point
}
