package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// TimeFormat is RFC3339 with microseconds, always UTC.
const TimeFormat = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry.
type Entry struct {
	ID        string `json:"id"`
	Timestamp string `json:"ts"`
	Operation string `json:"op"` // Operation name, e.g. "push".

	Locator string `json:"locator,omitempty"` // vault:secret/<path>#<name>
	File    string `json:"file,omitempty"`    // Local file that was pushed.
	Bytes   int    `json:"bytes,omitempty"`   // Size of the pushed value.
}

// Trail is an append-only JSON Lines file.
type Trail struct {
	Path string
}

// DefaultPath returns $XDG_STATE_HOME/confvault/audit.jsonl, falling back
// to ~/.local/state when XDG_STATE_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "confvault", "audit.jsonl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "confvault", "audit.jsonl"), nil
}

// Append writes entry as one line, filling ID and Timestamp when empty.
// Callers treat a failure as a warning; the audited operation has
// already happened.
func (t Trail) Append(entry Entry) error {
	if t.Path == "" {
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimeFormat)
	}

	if err := os.MkdirAll(filepath.Dir(t.Path), 0700); err != nil {
		return fmt.Errorf("creating audit directory: %w", err)
	}

	f, err := os.OpenFile(t.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// Entries reads all entries. A missing log yields no entries.
func (t Trail) Entries() ([]Entry, error) {
	if t.Path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(t.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return ParseEntries(data), nil
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) []Entry {
	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries
}
