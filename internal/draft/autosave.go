package draft

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/labfund/fundops/internal/task"
)

// Autosaver writes a wizard's state whenever it changes. With a zero delay
// every change is written immediately; otherwise writes are debounced.
type Autosaver[F any] struct {
	ctx       context.Context
	store     Store
	key       string
	now       func() time.Time
	debouncer *task.Debouncer
}

// NewAutosaver creates an Autosaver writing under key. Pending writes are
// dropped when ctx is canceled or Close is called.
func NewAutosaver[F any](ctx context.Context, store Store, key string, delay time.Duration) *Autosaver[F] {
	a := &Autosaver[F]{ctx: ctx, store: store, key: key, now: time.Now}
	if delay > 0 {
		a.debouncer = task.NewDebouncer(ctx, delay)
	}
	return a
}

// Changed records a new state.
func (a *Autosaver[F]) Changed(s State[F]) {
	s.SavedAt = a.now().UTC()
	if a.debouncer == nil {
		a.write(a.ctx, s)
		return
	}
	a.debouncer.Trigger(func(ctx context.Context) error {
		a.write(ctx, s)
		return nil
	})
}

func (a *Autosaver[F]) write(ctx context.Context, s State[F]) {
	if err := Put(ctx, a.store, a.key, s); err != nil {
		logrus.WithField("draft", a.key).WithError(err).Error("autosave failed")
		return
	}
	logrus.WithField("draft", a.key).Debug("draft saved")
}

// Flush waits for a pending debounced write.
func (a *Autosaver[F]) Flush() error {
	if a.debouncer == nil {
		return nil
	}
	return a.debouncer.Flush()
}

// Close drops any pending write and waits for one already in progress.
func (a *Autosaver[F]) Close() {
	if a.debouncer != nil {
		a.debouncer.Close()
	}
}

// Clear removes the saved draft, typically after a successful submit. A
// write in flight finishes before the delete, so it cannot bring the draft
// back.
func (a *Autosaver[F]) Clear() error {
	a.Close()
	return a.store.Delete(a.ctx, a.key)
}
