package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit is a single incoming bank transfer waiting to be claimed by a project.
type Deposit struct {
	Reference string          `json:"reference"`
	Date      time.Time       `json:"date"`
	BankName  string          `json:"bank_name"` // as printed on the statement, branch included
	Summary   string          `json:"summary"`   // free-text remark entered by the payer
	Amount    decimal.Decimal `json:"amount"`
	// IssuingBank is the known bank BankName resolves to, empty when it does
	// not resolve.
	IssuingBank string `json:"issuing_bank,omitempty"`
}
