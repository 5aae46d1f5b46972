package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind identifies which workflow produced a ledger entry.
type EntryKind string

const (
	KindIncome  EntryKind = "income"
	KindClaim   EntryKind = "claim"
	KindReagent EntryKind = "reagent"
)

// Prefix returns the entry ID prefix for the kind.
func (k EntryKind) Prefix() string {
	switch k {
	case KindIncome:
		return "INC"
	case KindClaim:
		return "CLM"
	case KindReagent:
		return "RGT"
	default:
		return strings.ToUpper(string(k))
	}
}

// Entry is a single row in ledger.csv.
type Entry struct {
	EntryID       string          `json:"entry_id"` // "INC-2025-01-001"
	Date          time.Time       `json:"date"`
	ProjectID     string          `json:"project_id"`
	Kind          EntryKind       `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	ManagementFee decimal.Decimal `json:"management_fee"` // zero for claims and reagents
	Counterparty  string          `json:"counterparty"`
	Reference     string          `json:"reference,omitempty"`
	BankAccount   string          `json:"bank_account,omitempty"` // masked
	Notes         string          `json:"notes,omitempty"`
}

// Net returns the amount left to the project after the management fee.
func (e Entry) Net() decimal.Decimal {
	return e.Amount.Sub(e.ManagementFee)
}
