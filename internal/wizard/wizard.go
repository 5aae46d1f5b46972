// Package wizard drives multi-step forms: a fixed sequence of steps over one
// typed form, each step validated before the wizard moves past it.
package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labfund/fundops/internal/draft"
)

var (
	ErrStepRange  = errors.New("step out of range")
	ErrStepLocked = errors.New("step not reachable yet")
)

// Step is one page of a wizard. Validate checks only the fields the step
// owns and returns ozzo validation errors keyed by JSON field name. Labels
// maps those field names (dotted for nested fields) to what the user sees.
type Step[F any] struct {
	Title    string
	Labels   map[string]string
	Validate func(f *F) error
}

// StepError reports the invalid fields of one step.
type StepError struct {
	Step        int
	Title       string
	FieldErrors map[string]string // label -> message
}

func (e *StepError) Error() string {
	labels := make([]string, 0, len(e.FieldErrors))
	for l := range e.FieldErrors {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l + ": " + e.FieldErrors[l]
	}
	return fmt.Sprintf("step %d (%s): %s", e.Step+1, e.Title, strings.Join(parts, "; "))
}

// Wizard holds the form, the current step and the set of completed steps.
// It is safe for concurrent use.
type Wizard[F any] struct {
	mu        sync.Mutex
	kind      string
	steps     []Step[F]
	form      F
	current   int
	completed map[int]bool
	onChange  func(draft.State[F])
	now       func() time.Time
}

// New creates a wizard over steps starting from form.
func New[F any](kind string, steps []Step[F], form F) *Wizard[F] {
	return &Wizard[F]{
		kind:      kind,
		steps:     steps,
		form:      form,
		completed: make(map[int]bool),
		now:       time.Now,
	}
}

// Kind returns the wizard kind, e.g. "income".
func (w *Wizard[F]) Kind() string { return w.kind }

// OnChange registers fn to receive a snapshot after every change.
func (w *Wizard[F]) OnChange(fn func(draft.State[F])) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// StepTitles returns the step titles in order.
func (w *Wizard[F]) StepTitles() []string {
	out := make([]string, len(w.steps))
	for i, s := range w.steps {
		out[i] = s.Title
	}
	return out
}

// Current returns the index of the current step.
func (w *Wizard[F]) Current() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Form returns a deep copy of the form.
func (w *Wizard[F]) Form() F {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneForm(w.form)
}

// Update applies fn to the form. No validation happens here.
func (w *Wizard[F]) Update(fn func(f *F)) {
	w.mu.Lock()
	fn(&w.form)
	snap, notify := w.snapshotLocked(), w.onChange
	w.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
}

// Next validates the current step and advances when it is valid. On the last
// step a valid Next only marks it completed. On failure the current step is
// unchanged and the error is a *StepError.
func (w *Wizard[F]) Next() error {
	w.mu.Lock()
	if err := w.validateLocked(w.current); err != nil {
		w.mu.Unlock()
		return err
	}
	w.completed[w.current] = true
	if w.current < len(w.steps)-1 {
		w.current++
	}
	snap, notify := w.snapshotLocked(), w.onChange
	w.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
	return nil
}

// Back moves to the previous step without validating.
func (w *Wizard[F]) Back() {
	w.mu.Lock()
	if w.current == 0 {
		w.mu.Unlock()
		return
	}
	w.current--
	snap, notify := w.snapshotLocked(), w.onChange
	w.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
}

// JumpTo moves to step i. Allowed targets are completed steps, the current
// step and the step right after the last completed one.
func (w *Wizard[F]) JumpTo(i int) error {
	w.mu.Lock()
	if i < 0 || i >= len(w.steps) {
		w.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrStepRange, i)
	}
	if !w.reachableLocked(i) {
		w.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrStepLocked, i)
	}
	w.current = i
	snap, notify := w.snapshotLocked(), w.onChange
	w.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
	return nil
}

func (w *Wizard[F]) reachableLocked(i int) bool {
	if w.completed[i] || i == w.current {
		return true
	}
	last := -1
	for s := range w.completed {
		if s > last {
			last = s
		}
	}
	return i == last+1
}

// Completed returns the completed step indexes in ascending order.
func (w *Wizard[F]) Completed() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completedLocked()
}

func (w *Wizard[F]) completedLocked() []int {
	out := make([]int, 0, len(w.completed))
	for s := range w.completed {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// Submit validates every step in order and returns the form. The first
// invalid step is reported as a *StepError.
func (w *Wizard[F]) Submit() (F, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.steps {
		if err := w.validateLocked(i); err != nil {
			var zero F
			return zero, err
		}
		w.completed[i] = true
	}
	return cloneForm(w.form), nil
}

// Snapshot returns the draft state of the wizard.
func (w *Wizard[F]) Snapshot() draft.State[F] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Wizard[F]) snapshotLocked() draft.State[F] {
	return draft.State[F]{
		Form:           cloneForm(w.form),
		CurrentStep:    w.current,
		CompletedSteps: w.completedLocked(),
		SavedAt:        w.now().UTC(),
	}
}

// Restore loads a draft state. Out of range steps are dropped and the current
// step is clamped into range.
func (w *Wizard[F]) Restore(s draft.State[F]) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form = cloneForm(s.Form)
	w.completed = make(map[int]bool)
	for _, i := range s.CompletedSteps {
		if i >= 0 && i < len(w.steps) {
			w.completed[i] = true
		}
	}
	w.current = min(max(s.CurrentStep, 0), len(w.steps)-1)
}

func (w *Wizard[F]) validateLocked(i int) error {
	step := w.steps[i]
	if step.Validate == nil {
		return nil
	}
	err := step.Validate(&w.form)
	if err == nil {
		return nil
	}
	fields := fieldErrors(err, step.Labels)
	if len(fields) == 0 {
		return fmt.Errorf("validating step %d: %w", i+1, err)
	}
	return &StepError{Step: i, Title: step.Title, FieldErrors: fields}
}

// Cloner is implemented by forms holding slices or maps, so copies handed
// out by the wizard never share memory with its live form.
type Cloner[F any] interface {
	Clone() F
}

// cloneForm deep-copies f, through Clone when F has one and a JSON round
// trip otherwise.
func cloneForm[F any](f F) F {
	if c, ok := any(f).(Cloner[F]); ok {
		return c.Clone()
	}
	data, err := json.Marshal(f)
	if err != nil {
		return f
	}
	var out F
	if err := json.Unmarshal(data, &out); err != nil {
		return f
	}
	return out
}
