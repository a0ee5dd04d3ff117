// Package journal records the lifecycle callbacks of a window stack as a flat
// sequence of events that hosts can print, inspect or assert on.
package journal

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
)

// Kind identifies which delegate callback produced an event.
type Kind string

const (
	KindPan         Kind = "pan"
	KindWillAnimate Kind = "will_animate"
	KindDidAnimate  Kind = "did_animate"
	KindDidRemove   Kind = "did_remove"
)

// Event is one delegate callback.
type Event struct {
	ID       string             `json:"id" yaml:"id"`
	Seq      int                `json:"seq" yaml:"seq"`
	Kind     Kind               `json:"kind" yaml:"kind"`
	WindowID string             `json:"window_id,omitempty" yaml:"window_id,omitempty"`
	Title    string             `json:"title,omitempty" yaml:"title,omitempty"`
	Type     gesture.WindowType `json:"type" yaml:"type"`
	Style    string             `json:"style,omitempty" yaml:"style,omitempty"`
	Frame    *geometry.Frame    `json:"frame,omitempty" yaml:"frame,omitempty"`
	At       time.Time          `json:"at" yaml:"at"`
}

// Card is the content value the bundled hosts push onto a stack.
type Card struct {
	ID    string
	Title string
	Body  string
	// Locked cards refuse pans.
	Locked bool
}

// NewCard creates a card with a fresh ULID.
func NewCard(title, body string) *Card {
	return &Card{
		ID:    ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Title: title,
		Body:  body,
	}
}

func (c *Card) String() string {
	return c.Title
}

// describe extracts an identity and a display title from arbitrary content.
func describe(content any) (id, title string) {
	switch c := content.(type) {
	case *Card:
		return c.ID, c.Title
	case fmt.Stringer:
		return "", c.String()
	case string:
		return "", c
	default:
		return "", fmt.Sprint(content)
	}
}

// Unlocked is a pan predicate that refuses pans on locked cards and allows
// every other content.
func Unlocked(content any, _ gesture.WindowType) bool {
	c, ok := content.(*Card)
	return !ok || !c.Locked
}
