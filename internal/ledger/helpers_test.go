package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// mockProjects implements ProjectChecker for testing.
type mockProjects struct {
	ids map[string]bool
}

func (m *mockProjects) Exists(id string) bool {
	return m.ids[id]
}

func newMockProjects(ids ...string) *mockProjects {
	m := &mockProjects{ids: make(map[string]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
