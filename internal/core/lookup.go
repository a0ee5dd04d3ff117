package core

import (
	"slices"

	"github.com/jmylchreest/winstack/internal/journal"
)

// LookupByID finds an event by its ULID.
// Returns nil if not found.
func LookupByID(events []journal.Event, id string) *journal.Event {
	for i := range events {
		if events[i].ID == id {
			return &events[i]
		}
	}
	return nil
}

// LookupBySeq finds an event by its sequence number.
// Returns nil if not found.
func LookupBySeq(events []journal.Event, seq int) *journal.Event {
	for i := range events {
		if events[i].Seq == seq {
			return &events[i]
		}
	}
	return nil
}

// WindowIDs returns the distinct window IDs in order of first appearance.
func WindowIDs(events []journal.Event) []string {
	var ids []string
	for _, e := range events {
		if e.WindowID != "" && !slices.Contains(ids, e.WindowID) {
			ids = append(ids, e.WindowID)
		}
	}
	return ids
}

// Lifetime returns the first and last events recorded for a window.
func Lifetime(events []journal.Event, windowID string) (first, last *journal.Event) {
	for i := range events {
		if events[i].WindowID != windowID {
			continue
		}
		if first == nil {
			first = &events[i]
		}
		last = &events[i]
	}
	return first, last
}
