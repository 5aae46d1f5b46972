package projects

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labfund/fundops/internal/model"
)

func TestRoundTrip(t *testing.T) {
	projects := []model.Project{
		{ID: "P-1", Name: "新型纳米材料研究", Manager: "张伟", Partner: "建设银行", Category: "纵向", Status: model.ProjectStatusActive, Budget: decimal.RequireFromString("1200000.50"), StartYear: 2023},
		{ID: "P-2", Name: "Graphene, Sensors", Status: model.ProjectStatusApplying},
	}

	var buf bytes.Buffer
	err := WriteProjects(&buf, projects)
	require.NoError(t, err)

	got, err := ReadProjects(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, projects[0].Name, got[0].Name)
	assert.Equal(t, projects[0].Manager, got[0].Manager)
	assert.Equal(t, "1200000.50", got[0].Budget.StringFixed(2))
	assert.Equal(t, 2023, got[0].StartYear)

	assert.Equal(t, "Graphene, Sensors", got[1].Name)
	assert.True(t, got[1].Budget.IsZero())
	assert.Equal(t, 0, got[1].StartYear)
}

func TestReadProjects_Empty(t *testing.T) {
	got, err := ReadProjects(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalProject_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   string
	}{
		{"field count", []string{"P-1"}, "expected 8 fields"},
		{"missing id", []string{"", "n", "", "", "", "", "", ""}, "missing project_id"},
		{"bad budget", []string{"P-1", "n", "", "", "", "", "lots", ""}, "parsing budget"},
		{"bad year", []string{"P-1", "n", "", "", "", "", "", "MMXX"}, "parsing start_year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalProject(tt.record)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()
	require.NotEmpty(t, registry)

	ids := make(map[string]bool)
	for _, p := range registry {
		assert.False(t, ids[p.ID], "duplicate id %s", p.ID)
		ids[p.ID] = true
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Manager)
	}
}
