// Package animation defines the contract for driving a surface frame to a
// target over time, and a frame-stepped engine implementing it.
package animation

import (
	"fmt"
	"strings"
	"time"
)

// Style selects how a transition is performed.
type Style int

const (
	// None applies the target frame immediately.
	None Style = iota
	// Linear interpolates at a constant rate over a fixed duration.
	Linear
	// Spring follows a damped oscillation seeded with an initial velocity.
	Spring
)

// String returns the string representation of the style.
func (s Style) String() string {
	switch s {
	case None:
		return "none"
	case Linear:
		return "linear"
	case Spring:
		return "spring"
	default:
		return "unknown"
	}
}

// ParseStyle parses the text form produced by String. Empty input is Spring.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return None, nil
	case "linear":
		return Linear, nil
	case "spring", "":
		return Spring, nil
	default:
		return Spring, fmt.Errorf("invalid animation style %q, must be one of: none, linear, spring", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Style) UnmarshalText(text []byte) error {
	parsed, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Params describes one transition.
type Params struct {
	Style    Style
	Duration time.Duration
	// Damping is the spring damping ratio; 1 is critically damped.
	Damping float64
	// InitialVelocity is the spring's starting speed as a fraction of the travel
	// distance per second, in the direction of the target.
	InitialVelocity float64
}
