// Package output provides output formatters for stack events.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/winstack/internal/journal"
)

// Formatter formats events for output.
type Formatter interface {
	// Format writes formatted events to the writer.
	Format(w io.Writer, events []journal.Event) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "plain"
	FormatIDs   FormatType = "ids"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (FormatType, error) {
	switch f := FormatType(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatPlain, FormatIDs:
		return f, nil
	case "":
		return FormatPlain, nil
	default:
		return "", fmt.Errorf("invalid output format %q, must be one of: json, yaml, plain, ids", s)
	}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string // Custom template for plain format, executed per event
	ShowFrames bool   // Include frames in plain output
	ShowPans   bool   // Include pan events (they arrive once per pointer move)
	Summary    bool   // Append a totals line to plain output
}

// DefaultFormatterOptions returns sensible defaults for plain output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowFrames: true,
		Summary:    true,
	}
}

// filter applies the options shared by every formatter.
func filter(events []journal.Event, opts FormatterOptions) []journal.Event {
	if opts.ShowPans {
		return events
	}
	kept := make([]journal.Event, 0, len(events))
	for _, e := range events {
		if e.Kind != journal.KindPan {
			kept = append(kept, e)
		}
	}
	return kept
}
