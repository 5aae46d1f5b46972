package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FormatEntryID returns a ledger entry ID like "INC-2025-01-001".
func FormatEntryID(prefix string, year, month, seq int) string {
	return fmt.Sprintf("%s-%04d-%02d-%03d", prefix, year, month, seq)
}

// ParseEntryID parses "INC-2025-01-001" into prefix, year, month, seq.
func ParseEntryID(id string) (prefix string, year, month, seq int, err error) {
	parts := strings.SplitN(id, "-", 4)
	if len(parts) != 4 || parts[0] == "" {
		return "", 0, 0, 0, fmt.Errorf("invalid entry ID format: %q", id)
	}
	prefix = parts[0]

	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid year in entry ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid month in entry ID %q: %w", id, err)
	}
	if month < 1 || month > 12 {
		return "", 0, 0, 0, fmt.Errorf("month out of range in entry ID %q", id)
	}

	seq, err = strconv.Atoi(parts[3])
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid sequence in entry ID %q: %w", id, err)
	}

	return prefix, year, month, seq, nil
}

// NewSessionID returns a random wizard session ID.
func NewSessionID() string {
	return uuid.NewString()
}

// DraftKey returns the storage key of a wizard draft, e.g. "incomeFormDraft"
// for the shared draft or "incomeFormDraft:<session>" for a session.
func DraftKey(kind, session string) string {
	key := kind + draftSuffix
	if session == "" {
		return key
	}
	return key + ":" + session
}

// ValidSessionID reports whether s is a well-formed session ID.
func ValidSessionID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

const draftSuffix = "FormDraft"

// ParseDraftKey splits a key made by DraftKey into kind and session. The
// session, when present, must be a well-formed session ID.
func ParseDraftKey(key string) (kind, session string, err error) {
	base, session, hasSession := strings.Cut(key, ":")
	kind, ok := strings.CutSuffix(base, draftSuffix)
	if !ok || kind == "" {
		return "", "", fmt.Errorf("invalid draft key %q", key)
	}
	if hasSession && !ValidSessionID(session) {
		return "", "", fmt.Errorf("invalid session in draft key %q", key)
	}
	return kind, session, nil
}
