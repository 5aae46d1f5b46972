package ledger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labfund/fundops/internal/model"
)

func TestRoundTrip(t *testing.T) {
	entries := []model.Entry{
		{
			EntryID: "INC-2025-01-001", Date: date(2025, 1, 15), ProjectID: "P-1", Kind: model.KindIncome,
			Amount: dec("50000.00"), ManagementFee: dec("2500.00"), Counterparty: "中国建设银行", Reference: "DEP-1",
		},
		{
			EntryID: "CLM-2025-01-001", Date: date(2025, 1, 20), ProjectID: "P-1", Kind: model.KindClaim,
			Amount: dec("320.50"), Counterparty: "张伟", BankAccount: "6217 **** **** 0006", Notes: "差旅, 北京",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, entries))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadEntries(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i := range entries {
		assert.Equal(t, entries[i].EntryID, got[i].EntryID)
		assert.True(t, entries[i].Date.Equal(got[i].Date))
		assert.Equal(t, entries[i].Kind, got[i].Kind)
		assert.True(t, entries[i].Amount.Equal(got[i].Amount))
		assert.True(t, entries[i].ManagementFee.Equal(got[i].ManagementFee))
		assert.Equal(t, entries[i].BankAccount, got[i].BankAccount)
		assert.Equal(t, entries[i].Notes, got[i].Notes)
	}
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	base := func() []string {
		return []string{"INC-2025-01-001", "2025-01-15", "P-1", "income", "1.00", "", "", "", "", ""}
	}
	tests := []struct {
		name string
		col  int
		val  string
		want string
	}{
		{"date", colDate, "15/01/2025", "parsing date"},
		{"amount", colAmount, "x", "parsing amount"},
		{"fee", colFee, "y", "parsing management_fee"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := base()
			rec[tt.col] = tt.val
			_, err := UnmarshalEntry(rec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := UnmarshalEntry([]string{"x"})
	assert.ErrorContains(t, err, "expected 10 fields")
}
