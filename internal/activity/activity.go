// Package activity keeps the append-only workflow log in logs/activity.csv.
package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Actions recorded in the activity log.
const (
	ActionInit            = "workspace_initialized"
	ActionDraftSaved      = "draft_saved"
	ActionDraftCleared    = "draft_cleared"
	ActionWizardSubmitted = "wizard_submitted"
	ActionStatementImport = "statement_imported"
	ActionDepositsSeeded  = "deposits_seeded"
	ActionFeesImported    = "fees_imported"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"` // "cli" or "api"
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	EntryID   string    `json:"entry_id,omitempty"`
	DraftKey  string    `json:"draft_key,omitempty"`
}

// header is the first row of activity.csv.
var header = []string{"timestamp", "actor", "action", "details", "entry_id", "draft_key"}

const relPath = "logs/activity.csv"

const (
	colTimestamp = iota
	colActor
	colAction
	colDetails
	colEntryID
	colDraftKey
	numCols
)

func encode(e Entry) []string {
	row := make([]string, numCols)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colActor] = e.Actor
	row[colAction] = e.Action
	row[colDetails] = e.Details
	row[colEntryID] = e.EntryID
	row[colDraftKey] = e.DraftKey
	return row
}

func decode(row []string) (Entry, error) {
	ts, err := time.Parse(time.RFC3339, row[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("bad timestamp %q: %w", row[colTimestamp], err)
	}
	return Entry{
		Timestamp: ts,
		Actor:     row[colActor],
		Action:    row[colAction],
		Details:   row[colDetails],
		EntryID:   row[colEntryID],
		DraftKey:  row[colDraftKey],
	}, nil
}

// Filter selects log entries. Zero fields match everything. Limit keeps the
// most recent entries.
type Filter struct {
	Action   string
	Actor    string
	EntryID  string
	DraftKey string
	Since    time.Time
	Limit    int
}

func (f Filter) match(e Entry) bool {
	switch {
	case f.Action != "" && e.Action != f.Action:
		return false
	case f.Actor != "" && e.Actor != f.Actor:
		return false
	case f.EntryID != "" && e.EntryID != f.EntryID:
		return false
	case f.DraftKey != "" && e.DraftKey != f.DraftKey:
		return false
	case !f.Since.IsZero() && e.Timestamp.Before(f.Since):
		return false
	}
	return true
}

// Log serialises writers to one workspace's activity file. CLI commands and
// concurrent API handlers share a single Log per open workspace.
type Log struct {
	path string
	mu   sync.Mutex
}

// Open returns the log of the workspace at root. The file is created on the
// first write.
func Open(root string) *Log {
	return &Log{path: filepath.Join(root, relPath)}
}

// Path is the location of the CSV file.
func (l *Log) Path() string { return l.path }

// Append adds entries, writing the header when the file is new.
func (l *Log) Append(entries ...Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat activity log: %w", err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for _, e := range entries {
		if err := cw.Write(encode(e)); err != nil {
			return fmt.Errorf("writing %s entry: %w", e.Action, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Query returns the entries matching f in log order. A missing file is an
// empty log.
func (l *Log) Query(f Filter) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer file.Close()

	cr := csv.NewReader(file)
	cr.FieldsPerRecord = numCols

	var out []Entry
	for rowNum := 1; ; rowNum++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading activity log: %w", err)
		}
		if rowNum == 1 {
			continue
		}
		e, err := decode(row)
		if err != nil {
			return nil, fmt.Errorf("activity log row %d: %w", rowNum, err)
		}
		if f.match(e) {
			out = append(out, e)
		}
	}

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out, nil
}

// Read returns every entry of the workspace at root.
func Read(root string) ([]Entry, error) {
	return Open(root).Query(Filter{})
}
