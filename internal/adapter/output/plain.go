package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/journal"
)

// PlainFormatter formats events as plain text, one line per event.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes events as plain text.
func (f *PlainFormatter) Format(w io.Writer, events []journal.Event) error {
	events = filter(events, f.opts)
	var start time.Time
	if len(events) > 0 {
		start = events[0].At
	}

	for i := range events {
		if err := f.formatEvent(w, i+1, &events[i], events[i].At.Sub(start)); err != nil {
			return err
		}
	}

	if f.opts.Summary && f.template == nil {
		return f.formatSummary(w, events)
	}
	return nil
}

// templateData provides data for custom templates.
type templateData struct {
	Index   int
	Event   *journal.Event
	Elapsed time.Duration
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"frame":    formatFrame,
		"ms": func(d time.Duration) int64 {
			return d.Milliseconds()
		},
	}
}

// formatEvent formats a single event.
func (f *PlainFormatter) formatEvent(w io.Writer, index int, e *journal.Event, elapsed time.Duration) error {
	// Use custom template if available
	if f.template != nil {
		data := templateData{
			Index:   index,
			Event:   e,
			Elapsed: elapsed,
		}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d] +%dms %-12s", e.Seq, elapsed.Milliseconds(), e.Kind)

	title := e.Title
	if title == "" {
		title = "-"
	}
	fmt.Fprintf(&sb, " %q (%s)", truncate(title, 40), e.Type)

	if e.Style != "" {
		sb.WriteString(" " + e.Style)
	}
	if f.opts.ShowFrames && e.Frame != nil {
		sb.WriteString(" " + formatFrame(e.Frame))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func (f *PlainFormatter) formatSummary(w io.Writer, events []journal.Event) error {
	removed := 0
	windows := make(map[string]bool)
	for _, e := range events {
		if e.Kind == journal.KindDidRemove {
			removed++
		}
		if e.WindowID != "" {
			windows[e.WindowID] = true
		}
	}

	var span time.Duration
	if len(events) > 1 {
		span = events[len(events)-1].At.Sub(events[0].At)
	}

	_, err := fmt.Fprintf(w, "%s events, %s windows, %s removed over %ss\n",
		humanize.Comma(int64(len(events))),
		humanize.Comma(int64(len(windows))),
		humanize.Comma(int64(removed)),
		humanize.FtoaWithDigits(span.Seconds(), 3))
	return err
}

func formatFrame(f *geometry.Frame) string {
	if f == nil {
		return ""
	}
	return f.String()
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
