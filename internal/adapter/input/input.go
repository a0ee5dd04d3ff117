// Package input loads replay scripts: a screen size and a list of stack
// operations and pointer gestures to run against it.
package input

import (
	"fmt"
	"time"

	"github.com/jmylchreest/winstack/internal/animation"
	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
)

// Pointer action types, named after W3C WebDriver pointer actions.
const (
	ActionPointerMove   = "pointerMove"
	ActionPointerDown   = "pointerDown"
	ActionPointerUp     = "pointerUp"
	ActionPointerCancel = "pointerCancel"
	ActionPause         = "pause"
)

// Script is a replay script.
type Script struct {
	Name   string        `json:"name,omitempty" yaml:"name,omitempty"`
	Screen geometry.Size `json:"screen" yaml:"screen"`
	Steps  []Step        `json:"steps" yaml:"steps"`
}

// Step is one script entry. Exactly one field is set.
type Step struct {
	Push      *PushStep       `json:"push,omitempty" yaml:"push,omitempty"`
	Pop       *PopStep        `json:"pop,omitempty" yaml:"pop,omitempty"`
	SetOffset *OffsetStep     `json:"set_offset,omitempty" yaml:"set_offset,omitempty"`
	Wait      string          `json:"wait,omitempty" yaml:"wait,omitempty"`
	Tap       *geometry.Point `json:"tap,omitempty" yaml:"tap,omitempty"`
	Gesture   []PointerAction `json:"gesture,omitempty" yaml:"gesture,omitempty"`
}

// PushStep pushes a new window.
type PushStep struct {
	Title  string `json:"title" yaml:"title"`
	Body   string `json:"body,omitempty" yaml:"body,omitempty"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Style  string `json:"style,omitempty" yaml:"style,omitempty"`
	Locked bool   `json:"locked,omitempty" yaml:"locked,omitempty"`
}

// WindowType returns the parsed window type.
func (p *PushStep) WindowType() (gesture.WindowType, error) {
	return gesture.ParseWindowType(p.Type)
}

// AnimationStyle returns the parsed style. Empty means Spring.
func (p *PushStep) AnimationStyle() (animation.Style, error) {
	return animation.ParseStyle(p.Style)
}

// PopStep pops the top window.
type PopStep struct {
	Animated *bool `json:"animated,omitempty" yaml:"animated,omitempty"`
}

// IsAnimated reports the animated flag, which defaults to true.
func (p *PopStep) IsAnimated() bool {
	return p.Animated == nil || *p.Animated
}

// OffsetStep moves the top window to an offset.
type OffsetStep struct {
	Y     float64 `json:"y" yaml:"y"`
	Style string  `json:"style,omitempty" yaml:"style,omitempty"`
}

// AnimationStyle returns the parsed style. Empty means Spring.
func (o *OffsetStep) AnimationStyle() (animation.Style, error) {
	return animation.ParseStyle(o.Style)
}

// PointerAction is one W3C-style pointer action. Duration is in milliseconds
// and applies to pointerMove and pause.
type PointerAction struct {
	Type     string  `json:"type" yaml:"type"`
	X        float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y        float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Duration int     `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Span returns the action's duration.
func (a PointerAction) Span() time.Duration {
	return time.Duration(a.Duration) * time.Millisecond
}

// WaitDuration parses the wait field. It accepts duration strings or integer
// milliseconds.
func (s *Step) WaitDuration() (time.Duration, error) {
	return parseDuration(s.Wait)
}

// Kind names the step's operation.
func (s *Step) Kind() string {
	switch {
	case s.Push != nil:
		return "push"
	case s.Pop != nil:
		return "pop"
	case s.SetOffset != nil:
		return "set_offset"
	case s.Wait != "":
		return "wait"
	case s.Tap != nil:
		return "tap"
	case len(s.Gesture) > 0:
		return "gesture"
	default:
		return ""
	}
}

// Validate checks the script for structural errors.
func (sc *Script) Validate() error {
	if sc.Screen.Empty() {
		return fmt.Errorf("screen width and height must be positive, got %vx%v", sc.Screen.Width, sc.Screen.Height)
	}
	for i := range sc.Steps {
		if err := sc.Steps[i].validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *Step) validate() error {
	set := 0
	for _, ok := range []bool{s.Push != nil, s.Pop != nil, s.SetOffset != nil, s.Wait != "", s.Tap != nil, len(s.Gesture) > 0} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of push, pop, set_offset, wait, tap, gesture must be set, got %d", set)
	}

	switch {
	case s.Push != nil:
		if _, err := s.Push.WindowType(); err != nil {
			return err
		}
		if _, err := s.Push.AnimationStyle(); err != nil {
			return err
		}
	case s.SetOffset != nil:
		if _, err := s.SetOffset.AnimationStyle(); err != nil {
			return err
		}
	case s.Wait != "":
		d, err := s.WaitDuration()
		if err != nil {
			return err
		}
		if d < 0 {
			return fmt.Errorf("wait must not be negative, got %s", d)
		}
	case len(s.Gesture) > 0:
		for j, a := range s.Gesture {
			switch a.Type {
			case ActionPointerMove, ActionPointerDown, ActionPointerUp, ActionPointerCancel, ActionPause:
			default:
				return fmt.Errorf("gesture action %d: unknown type %q", j+1, a.Type)
			}
			if a.Duration < 0 {
				return fmt.Errorf("gesture action %d: duration must not be negative", j+1)
			}
		}
	}
	return nil
}

// AdapterError represents a script loading error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
