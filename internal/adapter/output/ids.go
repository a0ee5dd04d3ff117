package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/winstack/internal/core"
	"github.com/jmylchreest/winstack/internal/journal"
)

// IDsFormatter outputs the distinct window IDs in the order they first appear,
// one per line.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes window IDs to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, events []journal.Event) error {
	for _, id := range core.WindowIDs(events) {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}
