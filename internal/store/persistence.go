// Package store archives journal events as JSON lines so sessions can be
// inspected after the fact.
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/winstack/internal/journal"
)

// SchemaVersion is the current archive schema version.
const SchemaVersion = 1

// Persistence defines the interface for event archives.
type Persistence interface {
	// Load reads all events from storage.
	Load() ([]journal.Event, error)

	// Append adds an event to storage.
	Append(e journal.Event) error

	// AppendBatch adds multiple events efficiently.
	AppendBatch(es []journal.Event) error

	// Clear removes all stored events.
	Clear() error

	// Close releases file handles and resources.
	Close() error
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	WinstackSchemaVersion int   `json:"winstack_schema_version"`
	CreatedAt             int64 `json:"created_at"`
}

// JSONLPersistence implements Persistence using JSONL files.
type JSONLPersistence struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool

	// openFile opens the archive; replaced in tests to inject write failures.
	openFile func(name string, flag int, perm os.FileMode) (*os.File, error)
}

const archiveFlags = os.O_RDWR | os.O_CREATE | os.O_APPEND

// ErrPersistenceClosed is returned when operations are attempted on a closed persistence.
var ErrPersistenceClosed = errors.New("persistence is closed")

// NewJSONLPersistence creates a new JSONLPersistence.
// Creates the file if it doesn't exist.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Open file for appending (create if needed)
	file, err := os.OpenFile(path, archiveFlags, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	p := &JSONLPersistence{
		path:     path,
		file:     file,
		openFile: os.OpenFile,
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := p.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return p, nil
}

// Path returns the archive file.
func (p *JSONLPersistence) Path() string {
	return p.path
}

func (p *JSONLPersistence) writeHeader() error {
	data, err := json.Marshal(schemaHeader{
		WinstackSchemaVersion: SchemaVersion,
		CreatedAt:             time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = p.file.Write(append(data, '\n'))
	return err
}

// Load reads all events from storage. Malformed lines are skipped.
func (p *JSONLPersistence) Load() ([]journal.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return nil, ErrPersistenceClosed
	}

	if _, err := p.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", p.path, err)
	}

	events, err := ReadEvents(p.file)

	// Seek back to end for appending
	if _, serr := p.file.Seek(0, io.SeekEnd); serr != nil && err == nil {
		err = serr
	}
	return events, err
}

// ReadEvents parses an archive from r.
func ReadEvents(r io.Reader) ([]journal.Event, error) {
	var events []journal.Event
	scanner := bufio.NewScanner(r)

	// Increase buffer size for potentially long lines
	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.WinstackSchemaVersion > 0 {
				if header.WinstackSchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.WinstackSchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var e journal.Event
		if err := json.Unmarshal(line, &e); err != nil || e.Kind == "" {
			continue
		}
		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading file: %w", err)
	}
	return events, nil
}

// Append adds an event to storage.
func (p *JSONLPersistence) Append(e journal.Event) error {
	return p.AppendBatch([]journal.Event{e})
}

// AppendBatch adds multiple events efficiently.
func (p *JSONLPersistence) AppendBatch(es []journal.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return ErrPersistenceClosed
	}

	w := bufio.NewWriter(p.file)
	for _, e := range es {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return p.file.Sync()
}

// Clear removes all stored events. The old archive is kept as a backup until
// the new one is on disk, and is put back if any step fails.
func (p *JSONLPersistence) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}

	backupPath := p.path + ".bak"
	if p.file != nil {
		if err := p.file.Close(); err != nil {
			return err
		}
		p.file = nil
	}

	hasBackup := true
	if err := os.Rename(p.path, backupPath); err != nil {
		if !os.IsNotExist(err) {
			return p.reopen(fmt.Errorf("failed to create backup: %w", err))
		}
		hasBackup = false
	}

	// Create new empty file with header
	file, err := p.openFile(p.path, archiveFlags, 0600)
	if err != nil {
		return p.restore(backupPath, hasBackup, err)
	}
	p.file = file

	if err := p.writeHeader(); err != nil {
		return p.restore(backupPath, hasBackup, fmt.Errorf("failed to write header: %w", err))
	}
	if err := p.file.Sync(); err != nil {
		return p.restore(backupPath, hasBackup, fmt.Errorf("failed to sync archive: %w", err))
	}

	if hasBackup {
		if err := os.Remove(backupPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("archive cleared but failed to remove backup %s: %w", backupPath, err)
		}
	}
	return nil
}

// restore puts the backup back in place after a failed Clear and reopens it.
func (p *JSONLPersistence) restore(backupPath string, hasBackup bool, cause error) error {
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
	if hasBackup {
		if err := os.Rename(backupPath, p.path); err != nil {
			return errors.Join(cause, fmt.Errorf("failed to restore backup %s: %w", backupPath, err))
		}
	} else if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return errors.Join(cause, err)
	}
	return p.reopen(cause)
}

// reopen opens the archive for appending again after a failed Clear.
func (p *JSONLPersistence) reopen(cause error) error {
	file, err := os.OpenFile(p.path, archiveFlags, 0600)
	if err != nil {
		return errors.Join(cause, fmt.Errorf("failed to reopen %s: %w", p.path, err))
	}
	p.file = file
	if info, err := file.Stat(); err == nil && info.Size() == 0 {
		if err := p.writeHeader(); err != nil {
			return errors.Join(cause, err)
		}
	}
	return cause
}

// Close releases file handles and resources.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}

// LoadFile reads an archive without opening it for writing.
func LoadFile(path string) ([]journal.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()
	return ReadEvents(f)
}
