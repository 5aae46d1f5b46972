package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/labfund/fundops/internal/activity"
	"github.com/labfund/fundops/internal/id"
	"github.com/labfund/fundops/internal/model"
	"github.com/labfund/fundops/internal/wizard"
)

// ErrNoSession is returned for session IDs that are not open.
var ErrNoSession = errors.New("no such wizard session")

type sessions struct {
	mu   sync.Mutex
	open map[string]wizard.Session
}

func newSessions() *sessions {
	return &sessions{open: make(map[string]wizard.Session)}
}

// StartSession opens a wizard session of kind autosaved under the session's
// draft key. An empty sessionID starts a new session; an existing one is
// returned as is, and a closed one resumes from its draft.
func (w *Workspace) StartSession(kind, sessionID string) (string, wizard.Session, error) {
	flow, err := wizard.Lookup(w.Flows, kind)
	if err != nil {
		return "", nil, err
	}
	if sessionID == "" {
		sessionID = id.NewSessionID()
	} else if !id.ValidSessionID(sessionID) {
		return "", nil, fmt.Errorf("invalid session ID %q", sessionID)
	}

	w.sessions.mu.Lock()
	defer w.sessions.mu.Unlock()
	if s, ok := w.sessions.open[sessionID]; ok {
		if s.Kind() != flow.Kind() {
			return "", nil, fmt.Errorf("session %s is a %s wizard", sessionID, s.Kind())
		}
		return sessionID, s, nil
	}

	key := id.DraftKey(string(flow.Kind()), sessionID)
	s, err := flow.Start(w.ctx, w.Drafts, key, w.Config.AutosaveDelay(string(flow.Kind())))
	if err != nil {
		return "", nil, fmt.Errorf("starting %s session: %w", flow.Kind(), err)
	}
	w.sessions.open[sessionID] = s
	logrus.WithFields(logrus.Fields{"session": sessionID, "kind": flow.Kind(), "restored": s.Restored()}).Debug("wizard session started")
	return sessionID, s, nil
}

// Session returns an open session.
func (w *Workspace) Session(sessionID string) (wizard.Session, error) {
	w.sessions.mu.Lock()
	defer w.sessions.mu.Unlock()
	s, ok := w.sessions.open[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, sessionID)
	}
	return s, nil
}

// CloseSession writes the session's pending draft and forgets it. The draft
// stays so the session can be resumed.
func (w *Workspace) CloseSession(sessionID string) error {
	s, err := w.take(sessionID)
	if err != nil {
		return err
	}
	return s.Close()
}

// SubmitSession submits an open session to the ledger, then deletes its
// draft and closes it. A session whose form is invalid stays open.
func (w *Workspace) SubmitSession(ctx context.Context, sessionID string) (model.Entry, error) {
	s, err := w.Session(sessionID)
	if err != nil {
		return model.Entry{}, err
	}

	entry, err := s.Submit()
	if err != nil {
		return model.Entry{}, err
	}
	stored, err := w.commit(ctx, entry, s.Key())
	if err != nil {
		return model.Entry{}, err
	}

	if _, err := w.take(sessionID); err == nil {
		if err := s.Discard(); err != nil {
			logrus.WithField("draft", s.Key()).WithError(err).Warn("clearing submitted draft failed")
		}
	}
	return stored, nil
}

// DiscardSession closes a session and deletes its draft.
func (w *Workspace) DiscardSession(sessionID string) error {
	s, err := w.take(sessionID)
	if err != nil {
		return err
	}
	if err := s.Discard(); err != nil {
		return err
	}
	w.record(activity.ActionDraftCleared, "", "", s.Key())
	return nil
}

func (w *Workspace) take(sessionID string) (wizard.Session, error) {
	w.sessions.mu.Lock()
	defer w.sessions.mu.Unlock()
	s, ok := w.sessions.open[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, sessionID)
	}
	delete(w.sessions.open, sessionID)
	return s, nil
}

func (w *Workspace) closeSessions() {
	w.sessions.mu.Lock()
	open := w.sessions.open
	w.sessions.open = make(map[string]wizard.Session)
	w.sessions.mu.Unlock()

	for sid, s := range open {
		if err := s.Close(); err != nil {
			logrus.WithField("session", sid).WithError(err).Warn("saving session draft failed")
		}
	}
}
