// Package mgmtfee splits incoming project funds into the institution's
// management fee and the share left to the project, and moves those
// allocations in and out of JSON reports.
package mgmtfee

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/labfund/fundops/internal/model"
)

var (
	ErrRate   = errors.New("management fee rate must be between 0 and 1")
	ErrAmount = errors.New("amount must be positive")
)

// Allocation is one fund amount split into fee and project share.
type Allocation struct {
	ProjectID    string          `json:"project_id"`
	EntryID      string          `json:"entry_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Rate         decimal.Decimal `json:"rate"`
	Fee          decimal.Decimal `json:"fee"`
	ProjectShare decimal.Decimal `json:"project_share"`
}

// Allocate splits amount at rate. The fee is rounded half away from zero to
// cents and the project share is whatever remains, so Fee+ProjectShare always
// equals Amount.
func Allocate(projectID string, amount, rate decimal.Decimal) (Allocation, error) {
	if !amount.IsPositive() {
		return Allocation{}, ErrAmount
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return Allocation{}, ErrRate
	}
	fee := amount.Mul(rate).Round(2)
	return Allocation{
		ProjectID:    projectID,
		Amount:       amount,
		Rate:         rate,
		Fee:          fee,
		ProjectShare: amount.Sub(fee),
	}, nil
}

// Report is the exported management-fee statement.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Allocations []Allocation    `json:"allocations"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalFee    decimal.Decimal `json:"total_fee"`
}

// NewReport totals allocations into a Report.
func NewReport(allocations []Allocation, now time.Time) Report {
	r := Report{GeneratedAt: now, Allocations: allocations}
	for _, a := range allocations {
		r.TotalAmount = r.TotalAmount.Add(a.Amount)
		r.TotalFee = r.TotalFee.Add(a.Fee)
	}
	return r
}

// FromEntries builds a Report from the income entries of a ledger. Entries of
// other kinds are ignored.
func FromEntries(entries []model.Entry, now time.Time) Report {
	var allocations []Allocation
	for _, e := range entries {
		if e.Kind != model.KindIncome {
			continue
		}
		var rate decimal.Decimal
		if e.Amount.IsPositive() {
			rate = e.ManagementFee.DivRound(e.Amount, 4)
		}
		allocations = append(allocations, Allocation{
			ProjectID:    e.ProjectID,
			EntryID:      e.EntryID,
			Amount:       e.Amount,
			Rate:         rate,
			Fee:          e.ManagementFee,
			ProjectShare: e.Net(),
		})
	}
	sort.SliceStable(allocations, func(i, j int) bool {
		return allocations[i].ProjectID < allocations[j].ProjectID
	})
	return NewReport(allocations, now)
}

// Export writes r as indented JSON.
func Export(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding management fee report: %w", err)
	}
	return nil
}

// Parse decodes and checks a report. Every allocation must satisfy
// Fee+ProjectShare == Amount with a fee inside 0..Amount.
func Parse(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("decoding management fee report: %w", err)
	}
	for i, a := range r.Allocations {
		if a.ProjectID == "" {
			return Report{}, fmt.Errorf("allocation %d: missing project_id", i)
		}
		if a.Fee.IsNegative() || a.Fee.GreaterThan(a.Amount) {
			return Report{}, fmt.Errorf("allocation %d: fee %s outside 0..%s", i, a.Fee, a.Amount)
		}
		if !a.Fee.Add(a.ProjectShare).Equal(a.Amount) {
			return Report{}, fmt.Errorf("allocation %d: fee and project share do not add up to %s", i, a.Amount)
		}
	}
	return r, nil
}

// Book holds the currently loaded report.
type Book struct {
	mu      sync.RWMutex
	current Report
}

// Current returns the loaded report.
func (b *Book) Current() Report {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Set replaces the loaded report.
func (b *Book) Set(r Report) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = r
}

// Import replaces the loaded report with the one in data. A malformed report
// is logged and leaves the previous one in place; Import then returns false.
func (b *Book) Import(data []byte) bool {
	r, err := Parse(data)
	if err != nil {
		logrus.WithError(err).Warn("ignoring malformed management fee import")
		return false
	}
	b.Set(r)
	return true
}
