package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/labfund/fundops/internal/id"
	"github.com/labfund/fundops/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	EntryID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.EntryID, e.Description)
}

// ProjectChecker tests whether a project ID exists in the registry.
type ProjectChecker interface {
	Exists(id string) bool
}

var hundred = decimal.NewFromInt(100)

func hasAtMostTwoDecimals(d decimal.Decimal) bool {
	return d.Mul(hundred).Equal(d.Mul(hundred).Floor())
}

// ValidateEntries enforces 7 invariants on a set of ledger entries for a given month.
func ValidateEntries(entries []model.Entry, projects ProjectChecker, year, month int) []ValidationError {
	var errs []ValidationError

	for _, e := range entries {
		// Invariant 1: Amount positive.
		if !e.Amount.IsPositive() {
			errs = append(errs, ValidationError{
				Invariant:   1,
				EntryID:     e.EntryID,
				Description: fmt.Sprintf("amount %s must be positive", e.Amount),
			})
		}

		// Invariant 2: No more than 2 decimal places.
		if !hasAtMostTwoDecimals(e.Amount) {
			errs = append(errs, ValidationError{
				Invariant:   2,
				EntryID:     e.EntryID,
				Description: fmt.Sprintf("amount %s has more than 2 decimal places", e.Amount),
			})
		}
		if !hasAtMostTwoDecimals(e.ManagementFee) {
			errs = append(errs, ValidationError{
				Invariant:   2,
				EntryID:     e.EntryID,
				Description: fmt.Sprintf("management fee %s has more than 2 decimal places", e.ManagementFee),
			})
		}

		// Invariant 3: Valid project references.
		if !projects.Exists(e.ProjectID) {
			errs = append(errs, ValidationError{
				Invariant:   3,
				EntryID:     e.EntryID,
				Description: fmt.Sprintf("unknown project %q", e.ProjectID),
			})
		}

		// Invariant 4: Date within month.
		if e.Date.Year() != year || int(e.Date.Month()) != month {
			errs = append(errs, ValidationError{
				Invariant:   4,
				EntryID:     e.EntryID,
				Description: fmt.Sprintf("date %s not in %04d-%02d", e.Date.Format(dateFormat), year, month),
			})
		}

		// Invariant 6: Fee within amount.
		if e.ManagementFee.IsNegative() || e.ManagementFee.GreaterThan(e.Amount) {
			errs = append(errs, ValidationError{
				Invariant:   6,
				EntryID:     e.EntryID,
				Description: fmt.Sprintf("management fee %s outside 0..%s", e.ManagementFee, e.Amount),
			})
		}
	}

	// Invariant 5: Unique sequential IDs per kind, contiguous 1..N.
	seen := make(map[string]map[int]bool)
	for _, e := range entries {
		prefix, _, _, seq, err := id.ParseEntryID(e.EntryID)
		if err != nil {
			errs = append(errs, ValidationError{
				Invariant:   5,
				EntryID:     e.EntryID,
				Description: fmt.Sprintf("invalid entry ID: %v", err),
			})
			continue
		}
		if prefix != e.Kind.Prefix() {
			errs = append(errs, ValidationError{
				Invariant:   5,
				EntryID:     e.EntryID,
				Description: fmt.Sprintf("prefix %s does not match kind %s", prefix, e.Kind),
			})
		}
		if seen[prefix] == nil {
			seen[prefix] = make(map[int]bool)
		}
		if seen[prefix][seq] {
			errs = append(errs, ValidationError{
				Invariant:   5,
				EntryID:     e.EntryID,
				Description: "duplicate entry ID",
			})
		}
		seen[prefix][seq] = true
	}

	prefixes := make([]string, 0, len(seen))
	for p := range seen {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		seqs := seen[p]
		for i := 1; i <= len(seqs); i++ {
			if !seqs[i] {
				errs = append(errs, ValidationError{
					Invariant:   5,
					EntryID:     fmt.Sprintf("%s seq %d", p, i),
					Description: fmt.Sprintf("missing sequence %d in 1..%d", i, len(seqs)),
				})
			}
		}
	}

	// Invariant 7: A deposit is booked as income at most once.
	booked := make(map[string]string)
	for _, e := range entries {
		if e.Kind != model.KindIncome || e.Reference == "" {
			continue
		}
		if first, dup := booked[e.Reference]; dup {
			errs = append(errs, ValidationError{
				Invariant:   7,
				EntryID:     e.EntryID,
				Description: fmt.Sprintf("deposit %s already booked as %s", e.Reference, first),
			})
			continue
		}
		booked[e.Reference] = e.EntryID
	}

	return errs
}
