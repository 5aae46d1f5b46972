package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/labfund/fundops/internal/bankcard"
	"github.com/labfund/fundops/internal/draft"
	"github.com/labfund/fundops/internal/matching"
	"github.com/labfund/fundops/internal/model"
)

var (
	// ErrUnsupported is returned for operations the session's kind lacks,
	// such as picking a deposit on a claim.
	ErrUnsupported = errors.New("not supported by this wizard kind")
	// ErrUnknownDeposit is returned when selecting a deposit that does not exist.
	ErrUnknownDeposit = errors.New("unknown deposit")
)

// Session is a wizard being filled in step by step. Every change is handed
// to an autosaver writing the draft key.
type Session interface {
	Kind() model.EntryKind
	Key() string
	// Restored reports whether the session resumed a stored draft.
	Restored() bool
	View() (View, error)
	// Patch merges a partial JSON form into the current one.
	Patch(data []byte) error
	Next() error
	Back()
	JumpTo(step int) error
	// Candidates ranks deposits for an income form's project.
	Candidates() ([]matching.Scored, error)
	// SelectDeposit fills an income form's deposit step.
	SelectDeposit(ref string) error
	// SetAccountNumber sets a claim's payee card and fills in its bank.
	SetAccountNumber(raw string) (bankcard.Result, error)
	// Submit validates every step and converts the form into an entry
	// without an ID. The draft is left for the caller to clear.
	Submit() (model.Entry, error)
	// Close writes any pending autosave and stops the autosaver.
	Close() error
	// Discard stops the autosaver and deletes the draft.
	Discard() error
}

// View is what a client needs to render a session.
type View struct {
	Kind      model.EntryKind `json:"kind"`
	DraftKey  string          `json:"draft_key"`
	Steps     []string        `json:"steps"`
	Current   int             `json:"current_step"`
	Completed []int           `json:"completed_steps"`
	Form      json.RawMessage `json:"form"`
	Restored  bool            `json:"restored"`
}

type session[F any] struct {
	flow     flow[F]
	key      string
	restored bool
	w        *Wizard[F]
	saver    *draft.Autosaver[F]

	patchMu sync.Mutex
}

func (f flow[F]) Start(ctx context.Context, store draft.Store, key string, delay time.Duration) (Session, error) {
	w := f.create()
	s, ok, err := draft.Restore[F](ctx, store, key)
	if err != nil {
		return nil, err
	}
	if ok {
		w.Restore(s)
	}

	saver := draft.NewAutosaver[F](ctx, store, key, delay)
	w.OnChange(saver.Changed)
	return &session[F]{flow: f, key: key, restored: ok, w: w, saver: saver}, nil
}

func (s *session[F]) Kind() model.EntryKind { return s.flow.kind }

func (s *session[F]) Key() string { return s.key }

func (s *session[F]) Restored() bool { return s.restored }

func (s *session[F]) View() (View, error) {
	snap := s.w.Snapshot()
	form, err := json.Marshal(snap.Form)
	if err != nil {
		return View{}, fmt.Errorf("encoding form: %w", err)
	}
	return View{
		Kind:      s.flow.kind,
		DraftKey:  s.key,
		Steps:     s.w.StepTitles(),
		Current:   snap.CurrentStep,
		Completed: snap.CompletedSteps,
		Form:      form,
		Restored:  s.restored,
	}, nil
}

func (s *session[F]) Patch(data []byte) error {
	s.patchMu.Lock()
	defer s.patchMu.Unlock()

	form := s.w.Form()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&form); err != nil {
		return fmt.Errorf("decoding form: %w", err)
	}
	s.w.Update(func(f *F) { *f = form })
	return nil
}

func (s *session[F]) Next() error { return s.w.Next() }

func (s *session[F]) Back() { s.w.Back() }

func (s *session[F]) JumpTo(step int) error { return s.w.JumpTo(step) }

func (s *session[F]) Candidates() ([]matching.Scored, error) {
	w, ok := any(s.w).(*Wizard[IncomeForm])
	if !ok {
		return nil, fmt.Errorf("deposit candidates: %w", ErrUnsupported)
	}
	return Candidates(s.flow.deps, w.Form().Basic.ProjectID), nil
}

func (s *session[F]) SelectDeposit(ref string) error {
	w, ok := any(s.w).(*Wizard[IncomeForm])
	if !ok {
		return fmt.Errorf("selecting a deposit: %w", ErrUnsupported)
	}
	if !SelectDeposit(w, s.flow.deps, ref) {
		return fmt.Errorf("%w: %s", ErrUnknownDeposit, ref)
	}
	return nil
}

func (s *session[F]) SetAccountNumber(raw string) (bankcard.Result, error) {
	w, ok := any(s.w).(*Wizard[ClaimForm])
	if !ok {
		return bankcard.Result{}, fmt.Errorf("setting an account number: %w", ErrUnsupported)
	}
	return SetAccountNumber(w, raw), nil
}

func (s *session[F]) Submit() (model.Entry, error) {
	form, err := s.w.Submit()
	if err != nil {
		return model.Entry{}, err
	}
	return s.flow.toEntry(form)
}

func (s *session[F]) Close() error {
	err := s.saver.Flush()
	s.saver.Close()
	return err
}

func (s *session[F]) Discard() error {
	err := s.saver.Clear()
	if errors.Is(err, draft.ErrNotFound) {
		return nil
	}
	return err
}
