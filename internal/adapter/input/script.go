package input

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const maxScriptSize = 10 * 1024 * 1024 // 10MB max

// LoadScript reads a script from path, or from stdin when path is "-".
func LoadScript(path string) (*Script, error) {
	if path == "-" {
		return ReadScript(os.Stdin, "stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &AdapterError{Source: path, Message: "failed to open script", Err: err}
	}
	defer f.Close()

	return ReadScript(f, path)
}

// ReadScript reads a script from r. source names r in errors.
func ReadScript(r io.Reader, source string) (*Script, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxScriptSize+1))
	if err != nil {
		return nil, &AdapterError{Source: source, Message: "failed to read script", Err: err}
	}
	if len(data) > maxScriptSize {
		return nil, &AdapterError{Source: source, Message: "script exceeds 10MB"}
	}
	return ParseScript(data, source)
}

// ParseScript decodes a YAML or JSON script and validates it. JSON is
// accepted because it is valid YAML.
func ParseScript(data []byte, source string) (*Script, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &AdapterError{Source: source, Message: "script is empty"}
	}

	var sc Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, &AdapterError{Source: source, Message: "failed to parse script", Err: err}
	}

	if err := sc.Validate(); err != nil {
		return nil, &AdapterError{Source: source, Message: "invalid script", Err: err}
	}
	if sc.Name == "" {
		sc.Name = source
	}
	return &sc, nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: must be like '300ms', '1s' or milliseconds: %w", s, err)
	}
	return d, nil
}
