package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// Operation names.
const (
	OpMigrate       = "migrate"
	OpMigrateFailed = "migrate-failed"
	OpClear         = "clear"
	OpReset         = "reset"
)

const timestampFormat = "2006-01-02T15:04:05.000000Z"

// Entry represents a single journal entry.
type Entry struct {
	Timestamp string `json:"ts"`    // RFC3339 with microseconds.
	Operation string `json:"op"`    // Operation name.
	Store     string `json:"store"` // Path of the store file.
	PID       int    `json:"pid"`   // Process that performed the operation.

	// Optional fields depending on operation.
	FromVersion string   `json:"from,omitempty"`    // For migrate.
	ToVersion   string   `json:"to,omitempty"`      // For migrate.
	Applied     []string `json:"applied,omitempty"` // For migrate.
	Failed      string   `json:"failed,omitempty"`  // For migrate-failed.
	Error       string   `json:"error,omitempty"`   // For migrate-failed.
	Keys        []string `json:"keys,omitempty"`    // For reset.
}

// Journal appends entries to a JSON Lines file. The zero Journal discards
// everything.
type Journal struct {
	Path string
}

// Enabled reports whether entries are written anywhere.
func (j Journal) Enabled() bool {
	return j.Path != ""
}

// Log appends an entry to the journal.
// If writing fails the entry is dropped; callers never see an error.
func (j Journal) Log(entry Entry) {
	if !j.Enabled() {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(timestampFormat)
	}
	if entry.PID == 0 {
		entry.PID = os.Getpid()
	}

	if err := os.MkdirAll(filepath.Dir(j.Path), 0755); err != nil {
		return
	}

	// #nosec G306 -- the journal holds no secrets, only versions and key names.
	f, err := os.OpenFile(j.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the journal.
// Returns an empty slice if the journal doesn't exist.
func (j Journal) ReadEntries() ([]Entry, error) {
	if !j.Enabled() {
		return nil, nil
	}

	data, err := os.ReadFile(j.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into journal entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

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
				// Skip malformed entries.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// Since filters entries to those at or after t. Entries with unparseable
// timestamps are dropped.
func Since(entries []Entry, t time.Time) []Entry {
	var out []Entry
	for _, e := range entries {
		ts, err := time.Parse(timestampFormat, e.Timestamp)
		if err != nil {
			continue
		}
		if !ts.Before(t) {
			out = append(out, e)
		}
	}
	return out
}

// OfOperation keeps entries whose operation is one of ops. No ops keeps all.
func OfOperation(entries []Entry, ops ...string) []Entry {
	if len(ops) == 0 {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if slices.Contains(ops, e.Operation) {
			out = append(out, e)
		}
	}
	return out
}

// Time returns the entry's timestamp, or the zero time if it cannot be parsed.
func (e Entry) Time() time.Time {
	ts, _ := time.Parse(timestampFormat, e.Timestamp)
	return ts
}
