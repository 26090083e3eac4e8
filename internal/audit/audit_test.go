package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newJournal(t *testing.T) Journal {
	t.Helper()
	return Journal{Path: filepath.Join(t.TempDir(), "logs", "audit.jsonl")}
}

func readLines(t *testing.T, j Journal) []string {
	t.Helper()
	data, err := os.ReadFile(j.Path)
	if err != nil {
		t.Fatalf("Failed to read journal: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestLog_CreatesFileAndDirectory(t *testing.T) {
	j := newJournal(t)

	j.Log(Entry{Operation: OpClear, Store: "/tmp/config.json"})

	if _, err := os.Stat(j.Path); os.IsNotExist(err) {
		t.Fatalf("Journal file was not created")
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	j := newJournal(t)

	j.Log(Entry{Operation: OpMigrate, ToVersion: "1.0.0"})
	j.Log(Entry{Operation: OpClear})
	j.Log(Entry{Operation: OpReset, Keys: []string{"a", "b"}})

	entries, err := j.ReadEntries()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Operation != OpMigrate {
		t.Errorf("Expected first operation migrate, got %s", entries[0].Operation)
	}
	if len(entries[2].Keys) != 2 {
		t.Errorf("Expected 2 reset keys, got %d", len(entries[2].Keys))
	}
}

func TestLog_ValidJSON(t *testing.T) {
	j := newJournal(t)

	j.Log(Entry{
		Operation:   OpMigrateFailed,
		Store:       "/tmp/config.json",
		FromVersion: "1.0.0",
		ToVersion:   "2.0.0",
		Applied:     []string{"1.5.0"},
		Failed:      "2.0.0",
		Error:       "boom",
	})

	lines := readLines(t, j)
	var parsed Entry
	if err := json.Unmarshal([]byte(lines[0]), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}

	if parsed.Failed != "2.0.0" {
		t.Errorf("Expected failed version 2.0.0, got %s", parsed.Failed)
	}
	if parsed.Error != "boom" {
		t.Errorf("Expected error boom, got %s", parsed.Error)
	}
	if parsed.PID != os.Getpid() {
		t.Errorf("Expected pid %d, got %d", os.Getpid(), parsed.PID)
	}
}

func TestLog_TimestampFormat(t *testing.T) {
	j := newJournal(t)

	j.Log(Entry{Operation: OpClear})

	entries, err := j.ReadEntries()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}

	ts := entries[0].Timestamp
	if !strings.HasSuffix(ts, "Z") {
		t.Errorf("Timestamp should end with Z, got %s", ts)
	}
	if !strings.Contains(ts, ".") {
		t.Errorf("Timestamp should contain microseconds, got %s", ts)
	}
	if _, err := time.Parse(timestampFormat, ts); err != nil {
		t.Errorf("Timestamp should parse: %v", err)
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	j := newJournal(t)

	j.Log(Entry{Operation: OpClear, Store: "/tmp/config.json"})

	line := readLines(t, j)[0]
	for _, field := range []string{`"from"`, `"applied"`, `"error"`, `"keys"`} {
		if strings.Contains(line, field) {
			t.Errorf("Empty %s field should be omitted", field)
		}
	}
}

func TestLog_Disabled(t *testing.T) {
	var j Journal

	// Should silently do nothing.
	j.Log(Entry{Operation: OpClear})

	entries, err := j.ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries from a disabled journal, got %v", entries)
	}
}

func TestLog_UnwritablePathDoesNotPanic(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	j := Journal{Path: filepath.Join(blocker, "audit.jsonl")}
	j.Log(Entry{Operation: OpClear})
}

func TestReadEntries_MissingFile(t *testing.T) {
	j := newJournal(t)

	entries, err := j.ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries for missing journal, got %v", entries)
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.123456Z","op":"migrate","to":"1.0.0"}
this is not valid json
{"ts":"2024-01-15T10:35:00.456789Z","op":"clear"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Errorf("Expected 2 valid entries (malformed should be skipped), got %d", len(entries))
	}
	if entries[0].ToVersion != "1.0.0" {
		t.Errorf("Expected to version 1.0.0, got %s", entries[0].ToVersion)
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries([]byte{})
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if entries != nil {
		t.Errorf("Expected nil entries for empty data, got %v", entries)
	}
}

func TestSince(t *testing.T) {
	entries := []Entry{
		{Timestamp: "2024-01-15T10:30:00.000000Z", Operation: OpMigrate},
		{Timestamp: "2024-01-16T10:30:00.000000Z", Operation: OpClear},
		{Timestamp: "garbage", Operation: OpReset},
	}

	cutoff := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	got := Since(entries, cutoff)

	if len(got) != 1 || got[0].Operation != OpClear {
		t.Errorf("Expected only the clear entry, got %v", got)
	}
}

func TestOfOperation(t *testing.T) {
	entries := []Entry{
		{Operation: OpMigrate},
		{Operation: OpClear},
		{Operation: OpMigrateFailed},
	}

	if got := OfOperation(entries); len(got) != 3 {
		t.Errorf("Expected all entries without a filter, got %d", len(got))
	}

	got := OfOperation(entries, OpMigrate, OpMigrateFailed)
	if len(got) != 2 || got[0].Operation != OpMigrate || got[1].Operation != OpMigrateFailed {
		t.Errorf("Expected the two migration entries, got %v", got)
	}
}

func TestEntryTime(t *testing.T) {
	e := Entry{Timestamp: "2024-01-15T10:30:00.123456Z"}
	want := time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.UTC)
	if got := e.Time(); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := (Entry{Timestamp: "garbage"}).Time(); !got.IsZero() {
		t.Errorf("Expected zero time for an unparseable timestamp, got %v", got)
	}
}
