package draft

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "drafts")
	store := NewFileStore(dir)

	_, err := store.Load(ctx, "claimFormDraft")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "claimFormDraft", []byte(`{"a":1}`)))
	data, err := store.Load(ctx, "claimFormDraft")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	require.NoError(t, store.Save(ctx, "claimFormDraft", []byte(`{"a":2}`)))
	data, err = store.Load(ctx, "claimFormDraft")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(data))

	require.NoError(t, store.Delete(ctx, "claimFormDraft"))
	_, err = store.Load(ctx, "claimFormDraft")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "claimFormDraft"), "deleting twice is fine")
}

func TestFileStore_List(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, store.Save(ctx, "incomeFormDraft", []byte("{}")))
	require.NoError(t, store.Save(ctx, "claimFormDraft:1b4e28ba-2fa1-11d2-883f-0016d3cca427", []byte("{}")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	keys, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"claimFormDraft:1b4e28ba-2fa1-11d2-883f-0016d3cca427", "incomeFormDraft"}, keys)
}

func TestFileStore_RejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	for _, key := range []string{"", "../escape", "a/b", "sp ace"} {
		assert.Error(t, store.Save(ctx, key, []byte("{}")), "key %q", key)
	}
}

func TestFileStore_MissingDirList(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope"))
	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Nil(t, keys)
}
