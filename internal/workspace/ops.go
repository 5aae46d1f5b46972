package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"

	"github.com/labfund/fundops/internal/activity"
	"github.com/labfund/fundops/internal/deposits"
	"github.com/labfund/fundops/internal/draft"
	"github.com/labfund/fundops/internal/mgmtfee"
	"github.com/labfund/fundops/internal/statements"
)

// ErrMalformedDraft is returned when a draft to be saved is not a draft state.
var ErrMalformedDraft = errors.New("malformed draft")

// ImportedFile reports the outcome of one statement file.
type ImportedFile struct {
	Name       string
	Format     string
	StoredAs   string
	Parsed     int
	Added      int
	Duplicates int
}

// Import parses every CSV under import/ with the named statement format, or
// the format detected from each file's header when format is "auto". New
// deposits are added and each file moves to import/processed/. Files imported
// before a failure stay imported.
func (w *Workspace) Import(format string) ([]ImportedFile, error) {
	registry := statements.DefaultRegistry()
	if format == "" {
		format = statements.FormatAuto
	}
	if !strings.EqualFold(format, statements.FormatAuto) && registry.Get(format) == nil {
		return nil, fmt.Errorf("%w %q", statements.ErrUnknownFormat, format)
	}

	files, err := statements.Scan(w.Root)
	if err != nil {
		return nil, err
	}

	var out []ImportedFile
	for _, f := range files {
		parser, err := registry.Resolve(format, f.Path)
		if err != nil {
			return out, err
		}
		parsed, err := statements.ParseFile(parser, f.Path)
		if err != nil {
			return out, err
		}
		added := w.Deposits.Add(parsed...)
		if err := w.Deposits.Save(w.Root); err != nil {
			return out, err
		}
		stored, err := statements.MarkProcessed(w.Root, f.Name)
		if err != nil {
			return out, err
		}
		res := ImportedFile{
			Name:       f.Name,
			Format:     parser.Format(),
			StoredAs:   stored,
			Parsed:     len(parsed),
			Added:      added,
			Duplicates: len(parsed) - added,
		}
		out = append(out, res)

		logrus.WithFields(logrus.Fields{
			"file":       f.Name,
			"format":     res.Format,
			"added":      added,
			"duplicates": res.Duplicates,
		}).Info("statement imported")
		w.record(activity.ActionStatementImport, fmt.Sprintf("%s (%s): %d added, %d duplicate", f.Name, res.Format, added, res.Duplicates), "", "")
	}
	if len(out) > 0 {
		w.snapshot(context.Background(), fmt.Sprintf("import: %d statement files", len(out)))
	}
	return out, nil
}

// Seed generates n mock deposits and stores them. A zero seed picks a random
// one.
func (w *Workspace) Seed(n int, seed int64) (int, error) {
	faker := gofakeit.New(seed)
	generated := deposits.Generate(faker, n, w.Projects.All(), w.now())
	added := w.Deposits.Add(generated...)
	if err := w.Deposits.Save(w.Root); err != nil {
		return 0, err
	}
	w.record(activity.ActionDepositsSeeded, fmt.Sprintf("%d deposits", added), "", "")
	w.snapshot(context.Background(), fmt.Sprintf("seed: %d deposits", added))
	return added, nil
}

// SaveDraft stores an encoded draft state under key. The payload must decode
// as a draft state; its form is kept as is.
func (w *Workspace) SaveDraft(ctx context.Context, key string, data []byte) error {
	s, err := draft.Decode[json.RawMessage](data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDraft, err)
	}
	if len(s.Form) == 0 || string(s.Form) == "null" {
		return fmt.Errorf("%w: missing form", ErrMalformedDraft)
	}
	if s.SavedAt.IsZero() {
		s.SavedAt = w.now().UTC()
	}
	if err := draft.Put(ctx, w.Drafts, key, s); err != nil {
		return err
	}
	w.record(activity.ActionDraftSaved, fmt.Sprintf("step %d", s.CurrentStep+1), "", key)
	return nil
}

// LoadDraft returns the draft stored under key. A draft that no longer decodes
// reports draft.ErrNotFound after being logged.
func (w *Workspace) LoadDraft(ctx context.Context, key string) (draft.State[json.RawMessage], error) {
	s, ok, err := draft.Restore[json.RawMessage](ctx, w.Drafts, key)
	if err != nil {
		return draft.State[json.RawMessage]{}, err
	}
	if !ok {
		return draft.State[json.RawMessage]{}, draft.ErrNotFound
	}
	return s, nil
}

// ClearDraft deletes the draft under key.
func (w *Workspace) ClearDraft(ctx context.Context, key string) error {
	if err := w.Drafts.Delete(ctx, key); err != nil {
		return err
	}
	w.record(activity.ActionDraftCleared, "", "", key)
	return nil
}

// ExportFees writes the management-fee report for the income entries of a
// year.
func (w *Workspace) ExportFees(out io.Writer, year int) error {
	entries, err := w.Ledger.ReadYear(year)
	if err != nil {
		return err
	}
	report := mgmtfee.FromEntries(entries, w.now().UTC())
	w.Fees.Set(report)
	return mgmtfee.Export(out, report)
}

// ImportFees loads a management-fee report. Malformed reports are logged and
// leave the current one in place.
func (w *Workspace) ImportFees(data []byte) bool {
	if !w.Fees.Import(data) {
		return false
	}
	r := w.Fees.Current()
	w.record(activity.ActionFeesImported, fmt.Sprintf("%d allocations, fee %s", len(r.Allocations), r.TotalFee.StringFixed(2)), "", "")
	return true
}
