package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/labfund/fundops/internal/draft"
	"github.com/labfund/fundops/internal/matching"
	"github.com/labfund/fundops/internal/model"
)

// ProjectLookup finds projects by ID.
type ProjectLookup interface {
	Get(id string) (model.Project, bool)
}

// DepositLookup lists and finds imported deposits.
type DepositLookup interface {
	All() []model.Deposit
	Get(ref string) (model.Deposit, bool)
}

// ClaimLookup maps deposits already booked as income to their entry IDs.
type ClaimLookup interface {
	Claims() (map[string]string, error)
}

// Deps are the collaborators the concrete wizards validate against.
type Deps struct {
	Projects ProjectLookup
	Deposits DepositLookup
	Claims   ClaimLookup
	Matcher  *matching.Matcher
	FeeRate  decimal.Decimal // default management fee rate for income
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Deps) projectExists(id string) bool {
	if d.Projects == nil {
		return true
	}
	_, ok := d.Projects.Get(id)
	return ok
}

func (d Deps) depositExists(ref string) bool {
	if d.Deposits == nil {
		return true
	}
	_, ok := d.Deposits.Get(ref)
	return ok
}

// claims returns the booked deposits. An unreadable ledger reports none; the
// ledger itself still refuses a second booking.
func (d Deps) claims() map[string]string {
	if d.Claims == nil {
		return nil
	}
	claims, err := d.Claims.Claims()
	if err != nil {
		return nil
	}
	return claims
}

func (d Deps) claimed(ref string) bool {
	_, ok := d.claims()[ref]
	return ok
}

// Unclaimed filters out deposits already booked as income.
func Unclaimed(deposits []model.Deposit, claims map[string]string) []model.Deposit {
	if len(claims) == 0 {
		return deposits
	}
	out := make([]model.Deposit, 0, len(deposits))
	for _, dep := range deposits {
		if _, ok := claims[dep.Reference]; !ok {
			out = append(out, dep)
		}
	}
	return out
}

// ErrUnknownKind is returned by Lookup for kinds without a flow.
var ErrUnknownKind = errors.New("unknown wizard kind")

// Flow is a wizard kind that can turn a complete form into a ledger entry.
type Flow interface {
	Kind() model.EntryKind
	StepTitles() []string
	// Submit decodes a JSON form, runs it through every step and converts it
	// into an entry without an ID.
	Submit(data []byte) (model.Entry, error)
	// Start opens an interactive session autosaved under key, resuming the
	// draft stored there if any.
	Start(ctx context.Context, store draft.Store, key string, delay time.Duration) (Session, error)
}

type flow[F any] struct {
	kind    model.EntryKind
	deps    Deps
	create  func() *Wizard[F]
	toEntry func(F) (model.Entry, error)
}

func (f flow[F]) Kind() model.EntryKind { return f.kind }

func (f flow[F]) StepTitles() []string { return f.create().StepTitles() }

func (f flow[F]) Submit(data []byte) (model.Entry, error) {
	form, err := decodeStrict[F](data)
	if err != nil {
		return model.Entry{}, err
	}
	w := f.create()
	w.Update(func(dst *F) { *dst = form })
	done, err := w.Submit()
	if err != nil {
		return model.Entry{}, err
	}
	return f.toEntry(done)
}

// decodeStrict rejects unknown fields and trailing data.
func decodeStrict[F any](data []byte) (F, error) {
	var form F
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&form); err != nil {
		return form, fmt.Errorf("decoding form: %w", err)
	}
	if dec.More() {
		return form, fmt.Errorf("decoding form: unexpected data after form")
	}
	return form, nil
}

// Flows returns every wizard kind wired to deps, keyed by kind.
func Flows(deps Deps) map[model.EntryKind]Flow {
	return map[model.EntryKind]Flow{
		model.KindIncome:  IncomeFlow(deps),
		model.KindClaim:   ClaimFlow(deps),
		model.KindReagent: ReagentFlow(deps),
	}
}

// Lookup returns the flow for kind, case-insensitively.
func Lookup(flows map[model.EntryKind]Flow, kind string) (Flow, error) {
	f, ok := flows[model.EntryKind(strings.ToLower(kind))]
	if !ok {
		kinds := make([]string, 0, len(flows))
		for k := range flows {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		return nil, fmt.Errorf("%w %q (expected one of %s)", ErrUnknownKind, kind, strings.Join(kinds, ", "))
	}
	return f, nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func mustDate(s string) time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
