package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/winstack/internal/journal"
)

// YAMLFormatter formats events as a YAML list.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes events as a YAML sequence.
func (f *YAMLFormatter) Format(w io.Writer, events []journal.Event) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(filter(events, f.opts)); err != nil {
		return err
	}
	return encoder.Close()
}
