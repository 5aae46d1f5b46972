package draft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleForm struct {
	ProjectID string            `json:"project_id"`
	Amount    string            `json:"amount"`
	Rows      []sampleRow       `json:"rows"`
	Extra     map[string]string `json:"extra,omitempty"`
}

type sampleRow struct {
	Subject string `json:"subject"`
	Amount  string `json:"amount"`
}

func sampleState() State[sampleForm] {
	return State[sampleForm]{
		Form: sampleForm{
			ProjectID: "P-001",
			Amount:    "120000.00",
			Rows:      []sampleRow{{Subject: "设备费", Amount: "80000"}, {Subject: "劳务费", Amount: "40000"}},
			Extra:     map[string]string{"note": "第一笔"},
		},
		CurrentStep:    2,
		CompletedSteps: []int{0, 1},
		SavedAt:        time.Date(2025, 6, 30, 8, 0, 0, 0, time.UTC),
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	in := sampleState()
	data, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode[sampleForm](data)
	require.NoError(t, err)
	assert.True(t, out.Restored)

	out.Restored = false
	assert.Equal(t, in, out)
}

func TestEncode_DropsRestoredMarker(t *testing.T) {
	in := sampleState()
	in.Restored = true
	data, err := Encode(in)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "_restored")
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode[sampleForm]([]byte(`{"form": [`))
	assert.Error(t, err)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	_, ok, err := Restore[sampleForm](ctx, store, "incomeFormDraft")
	require.NoError(t, err)
	assert.False(t, ok, "missing draft")

	require.NoError(t, Put(ctx, store, "incomeFormDraft", sampleState()))
	got, ok, err := Restore[sampleForm](ctx, store, "incomeFormDraft")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "P-001", got.Form.ProjectID)
	assert.Equal(t, 2, got.CurrentStep)
	assert.True(t, got.Restored)
}

func TestRestore_MalformedIsIgnored(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Save(ctx, "incomeFormDraft", []byte("not json")))

	got, ok, err := Restore[sampleForm](ctx, store, "incomeFormDraft")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, State[sampleForm]{}, got)
}
