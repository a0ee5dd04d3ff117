// Package core provides filtering and lookup over journal events.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/winstack/internal/journal"
)

// FilterOptions specifies criteria for filtering events.
type FilterOptions struct {
	Since    time.Duration // Filter to events newer than Now-Since (0=all)
	Now      time.Time     // Reference for Since (zero=time.Now)
	Kind     journal.Kind  // Exact match on kind (empty=any)
	WindowID string        // Exact match on window ID (empty=any)
	Search   string        // Case-insensitive substring of the title
	Limit    int           // Keep only the most recent events (0=unlimited)
}

// Filter returns the events matching opts, oldest first.
func Filter(events []journal.Event, opts FilterOptions) []journal.Event {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	search := strings.ToLower(opts.Search)
	result := make([]journal.Event, 0, len(events))

	for _, e := range events {
		// Time filter
		if opts.Since > 0 && e.At.Before(now.Add(-opts.Since)) {
			continue
		}

		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}

		if opts.WindowID != "" && e.WindowID != opts.WindowID {
			continue
		}

		if search != "" && !strings.Contains(strings.ToLower(e.Title), search) {
			continue
		}

		result = append(result, e)
	}

	// Apply limit
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[len(result)-opts.Limit:]
	}

	return result
}

var kindNames = []string{
	string(journal.KindPan),
	string(journal.KindWillAnimate),
	string(journal.KindDidAnimate),
	string(journal.KindDidRemove),
}

// ParseKind validates an event kind name. Empty means any kind.
func ParseKind(s string) (journal.Kind, error) {
	switch k := journal.Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", journal.KindPan, journal.KindWillAnimate, journal.KindDidAnimate, journal.KindDidRemove:
		return k, nil
	default:
		if hint, ok := Suggest(s, kindNames); ok {
			return "", fmt.Errorf("unknown event kind %q (did you mean %q?)", s, hint)
		}
		return "", fmt.Errorf("unknown event kind %q (valid: pan, will_animate, did_animate, did_remove)", s)
	}
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	// Special case: 0 means no filter (all time)
	if s == "0" || s == "" {
		return 0, nil
	}

	// Handle day suffix (7d -> 168h)
	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	// Handle week suffix (1w -> 168h)
	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	// Standard Go duration parsing
	return time.ParseDuration(s)
}
