package draft

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how many times Save was called.
type countingStore struct {
	*FileStore
	mu    sync.Mutex
	saves int
}

func (s *countingStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return s.FileStore.Save(ctx, key, data)
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func TestAutosaver_Immediate(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{FileStore: NewFileStore(t.TempDir())}
	a := NewAutosaver[sampleForm](ctx, store, "claimFormDraft", 0)
	defer a.Close()

	s := sampleState()
	a.Changed(s)
	s.Form.Amount = "1"
	a.Changed(s)
	require.NoError(t, a.Flush())

	assert.Equal(t, 2, store.count())
	got, ok, err := Restore[sampleForm](ctx, store, "claimFormDraft")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", got.Form.Amount)
	assert.False(t, got.SavedAt.IsZero())
}

func TestAutosaver_Debounced(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{FileStore: NewFileStore(t.TempDir())}
	a := NewAutosaver[sampleForm](ctx, store, "incomeFormDraft", 20*time.Millisecond)
	defer a.Close()

	s := sampleState()
	for _, amount := range []string{"1", "12", "120", "1200"} {
		s.Form.Amount = amount
		a.Changed(s)
	}
	require.NoError(t, a.Flush())

	assert.Equal(t, 1, store.count())
	got, ok, err := Restore[sampleForm](ctx, store, "incomeFormDraft")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1200", got.Form.Amount)
}

func TestAutosaver_CloseDropsPending(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{FileStore: NewFileStore(t.TempDir())}
	a := NewAutosaver[sampleForm](ctx, store, "incomeFormDraft", time.Hour)

	a.Changed(sampleState())
	a.Close()
	assert.Equal(t, 0, store.count())
}

func TestAutosaver_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	a := NewAutosaver[sampleForm](ctx, store, "claimFormDraft", 0)

	a.Changed(sampleState())
	require.NoError(t, a.Clear())

	_, ok, err := Restore[sampleForm](ctx, store, "claimFormDraft")
	require.NoError(t, err)
	assert.False(t, ok)
}

// slowStore holds every Save for a while after signalling that it started.
type slowStore struct {
	*FileStore
	started chan struct{}
	once    sync.Once
}

func (s *slowStore) Save(ctx context.Context, key string, data []byte) error {
	s.once.Do(func() { close(s.started) })
	time.Sleep(30 * time.Millisecond)
	return s.FileStore.Save(context.Background(), key, data)
}

func TestAutosaver_ClearWaitsForWriteInFlight(t *testing.T) {
	ctx := context.Background()
	store := &slowStore{FileStore: NewFileStore(t.TempDir()), started: make(chan struct{})}
	a := NewAutosaver[sampleForm](ctx, store, "incomeFormDraft", time.Millisecond)

	a.Changed(sampleState())
	<-store.started
	require.NoError(t, a.Clear())

	_, ok, err := Restore[sampleForm](ctx, store, "incomeFormDraft")
	require.NoError(t, err)
	assert.False(t, ok, "a submitted draft must stay deleted")
}
