package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntryID(t *testing.T) {
	tests := []struct {
		prefix           string
		year, month, seq int
		want             string
	}{
		{"INC", 2025, 1, 1, "INC-2025-01-001"},
		{"CLM", 2025, 12, 99, "CLM-2025-12-099"},
		{"RGT", 2025, 1, 123, "RGT-2025-01-123"},
	}
	for _, tt := range tests {
		got := FormatEntryID(tt.prefix, tt.year, tt.month, tt.seq)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseEntryID(t *testing.T) {
	tests := []struct {
		input               string
		wantPrefix          string
		wantYear, wantMonth int
		wantSeq             int
	}{
		{"INC-2025-01-001", "INC", 2025, 1, 1},
		{"CLM-2025-12-099", "CLM", 2025, 12, 99},
		{"RGT-2024-06-010", "RGT", 2024, 6, 10},
	}
	for _, tt := range tests {
		prefix, year, month, seq, err := ParseEntryID(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.wantPrefix, prefix)
		assert.Equal(t, tt.wantYear, year)
		assert.Equal(t, tt.wantMonth, month)
		assert.Equal(t, tt.wantSeq, seq)
	}
}

func TestParseEntryID_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"not-valid",
		"INC-2025-01",
		"INC-xxxx-01-001",
		"INC-2025-13-001",
		"-2025-01-001",
	}
	for _, input := range badInputs {
		_, _, _, _, err := ParseEntryID(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestRoundTrip(t *testing.T) {
	prefix, year, month, seq, err := ParseEntryID(FormatEntryID("INC", 2026, 10, 7))
	require.NoError(t, err)
	assert.Equal(t, "INC", prefix)
	assert.Equal(t, 2026, year)
	assert.Equal(t, 10, month)
	assert.Equal(t, 7, seq)
}

func TestDraftKey(t *testing.T) {
	assert.Equal(t, "incomeFormDraft", DraftKey("income", ""))
	assert.Equal(t, "claimFormDraft:abc", DraftKey("claim", "abc"))
}

func TestNewSessionID(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	assert.NotEqual(t, a, b)
	assert.True(t, ValidSessionID(a))
	assert.False(t, ValidSessionID("incomeFormDraft"))
}

func TestParseDraftKey(t *testing.T) {
	session := NewSessionID()

	kind, got, err := ParseDraftKey(DraftKey("income", session))
	require.NoError(t, err)
	assert.Equal(t, "income", kind)
	assert.Equal(t, session, got)

	kind, got, err = ParseDraftKey("reagentFormDraft")
	require.NoError(t, err)
	assert.Equal(t, "reagent", kind)
	assert.Empty(t, got)

	for _, bad := range []string{"", "FormDraft", "income", "incomeFormDraft:nope", "../etc/passwd"} {
		_, _, err := ParseDraftKey(bad)
		assert.Error(t, err, bad)
	}
}
