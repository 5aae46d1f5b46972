// Package draft persists unfinished wizard forms so that they survive a
// restart, and restores them on the next visit.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by a Store when no draft exists under a key.
var ErrNotFound = errors.New("draft not found")

// State is the persisted form of a wizard: the whole form plus the step
// position. Restored marks a state produced by Decode and is never written.
type State[F any] struct {
	Form           F         `json:"form"`
	CurrentStep    int       `json:"current_step"`
	CompletedSteps []int     `json:"completed_steps"`
	SavedAt        time.Time `json:"saved_at"`
	Restored       bool      `json:"_restored,omitempty"`
}

// Store keeps encoded drafts by key.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}

// Encode serialises s. The Restored marker is dropped.
func Encode[F any](s State[F]) ([]byte, error) {
	s.Restored = false
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}
	return data, nil
}

// Decode parses a draft and marks it as restored.
func Decode[F any](data []byte) (State[F], error) {
	var s State[F]
	if err := json.Unmarshal(data, &s); err != nil {
		return State[F]{}, fmt.Errorf("decoding draft: %w", err)
	}
	s.Restored = true
	return s, nil
}

// Put encodes s and writes it under key.
func Put[F any](ctx context.Context, store Store, key string, s State[F]) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("saving draft %s: %w", key, err)
	}
	return nil
}

// Restore loads the draft under key. A missing draft reports ok=false. A
// draft that no longer decodes is logged and also reports ok=false so that
// the caller keeps its current state; only store failures are returned.
func Restore[F any](ctx context.Context, store Store, key string) (State[F], bool, error) {
	data, err := store.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return State[F]{}, false, nil
	}
	if err != nil {
		return State[F]{}, false, fmt.Errorf("loading draft %s: %w", key, err)
	}

	s, err := Decode[F](data)
	if err != nil {
		logrus.WithField("draft", key).WithError(err).Warn("ignoring unreadable draft")
		return State[F]{}, false, nil
	}
	return s, true, nil
}
