package projects

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labfund/fundops/internal/model"
)

func TestNewService(t *testing.T) {
	registry := DefaultRegistry()
	svc := NewService(registry)

	assert.Len(t, svc.All(), len(registry))
}

func TestGetExists(t *testing.T) {
	svc := NewService(DefaultRegistry())

	p, ok := svc.Get("P-2023-001")
	assert.True(t, ok)
	assert.Equal(t, "新型纳米材料研究", p.Name)

	_, ok = svc.Get("P-9999")
	assert.False(t, ok)

	assert.True(t, svc.Exists("P-2023-001"))
	assert.False(t, svc.Exists("P-9999"))
}

func TestByStatus(t *testing.T) {
	svc := NewService(DefaultRegistry())

	active := svc.ByStatus(model.ProjectStatusActive)
	assert.Len(t, active, 4)
	for _, p := range active {
		assert.Equal(t, model.ProjectStatusActive, p.Status)
	}
	assert.Len(t, svc.ByStatus(model.ProjectStatusClosed), 0)
}

func TestSnapshotsAreCopies(t *testing.T) {
	registry := DefaultRegistry()
	svc := NewService(registry)

	registry[0].Name = "changed by caller"
	all := svc.All()
	assert.Equal(t, "新型纳米材料研究", all[0].Name)

	all[0].Name = "changed again"
	p, _ := svc.Get("P-2023-001")
	assert.Equal(t, "新型纳米材料研究", p.Name)
	assert.Equal(t, "新型纳米材料研究", svc.All()[0].Name)
}

func TestSaveRoundTrip(t *testing.T) {
	registry := DefaultRegistry()
	svc := NewService(registry)

	dir := t.TempDir()
	err := svc.Save(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, Dir, File)
	_, err = os.Stat(path)
	require.NoError(t, err)

	svc2, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, svc2.All(), len(registry))

	for _, orig := range registry {
		got, ok := svc2.Get(orig.ID)
		require.True(t, ok, "project %s should exist", orig.ID)
		assert.Equal(t, orig.Name, got.Name)
		assert.Equal(t, orig.Manager, got.Manager)
		assert.Equal(t, orig.Partner, got.Partner)
		assert.Equal(t, orig.Status, got.Status)
		assert.True(t, orig.Budget.Equal(got.Budget))
		assert.Equal(t, orig.StartYear, got.StartYear)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
