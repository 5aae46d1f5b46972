// Package workspace opens a fundops directory and wires its services
// together: configuration, project registry, deposits, ledger, drafts and the
// activity log.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/labfund/fundops/internal/activity"
	"github.com/labfund/fundops/internal/config"
	"github.com/labfund/fundops/internal/deposits"
	"github.com/labfund/fundops/internal/draft"
	"github.com/labfund/fundops/internal/history"
	"github.com/labfund/fundops/internal/ledger"
	"github.com/labfund/fundops/internal/matching"
	"github.com/labfund/fundops/internal/mgmtfee"
	"github.com/labfund/fundops/internal/model"
	"github.com/labfund/fundops/internal/projects"
	"github.com/labfund/fundops/internal/wizard"
)

// ErrUnknownProject is returned when ranking against a project that is not
// in the registry.
var ErrUnknownProject = errors.New("unknown project")

// ErrHistoryDisabled is returned when asking for the history of a workspace
// that is not versioned.
var ErrHistoryDisabled = errors.New("workspace history is not enabled")

// Workspace holds the loaded services of one fundops directory.
type Workspace struct {
	Root     string
	Config   *config.Config
	Projects *projects.Service
	Deposits *deposits.Service
	Ledger   *ledger.Service
	Drafts   draft.Store
	Matcher  *matching.Matcher
	Fees     *mgmtfee.Book
	Activity *activity.Log
	Flows    map[model.EntryKind]wizard.Flow

	actor    string
	now      func() time.Time
	closer   func() error
	ctx      context.Context
	sessions *sessions
}

// Option customises Open.
type Option func(*Workspace)

// WithClock overrides the clock used for matching, entry dates and the log.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// WithActor sets the actor recorded in the activity log.
func WithActor(actor string) Option {
	return func(w *Workspace) { w.actor = actor }
}

// WithDraftStore replaces the configured draft store.
func WithDraftStore(s draft.Store) Option {
	return func(w *Workspace) { w.Drafts = s }
}

// Open loads the workspace at root.
func Open(ctx context.Context, root string, opts ...Option) (*Workspace, error) {
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	projs, err := projects.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	deps, err := deposits.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading deposits: %w", err)
	}

	w := &Workspace{
		Root:     root,
		Config:   cfg,
		Projects: projs,
		Deposits: deps,
		Ledger:   ledger.NewService(root, projs),
		Fees:     &mgmtfee.Book{},
		Activity: activity.Open(root),
		actor:    "cli",
		now:      time.Now,
		ctx:      ctx,
		sessions: newSessions(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.Drafts == nil {
		store, closer, err := openDraftStore(ctx, root, cfg.Drafts)
		if err != nil {
			return nil, err
		}
		w.Drafts = store
		w.closer = closer
	}

	w.Matcher = matching.New(matching.FromConfig(cfg.Matching), matching.WithClock(w.now))
	w.Flows = wizard.Flows(w.WizardDeps())
	return w, nil
}

func openDraftStore(ctx context.Context, root string, cfg config.DraftsConfig) (draft.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client, err := draft.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("opening draft store: %w", err)
		}
		return draft.NewRedisStore(client, cfg.TTL), client.Close, nil
	default:
		dir := cfg.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		return draft.NewFileStore(dir), nil, nil
	}
}

// Close writes pending session drafts and releases the draft store
// connection, if any.
func (w *Workspace) Close() error {
	w.closeSessions()
	if w.closer == nil {
		return nil
	}
	return w.closer()
}

// WizardDeps returns the wizard collaborators backed by this workspace.
func (w *Workspace) WizardDeps() wizard.Deps {
	return wizard.Deps{
		Projects: w.Projects,
		Deposits: w.Deposits,
		Claims:   w.Ledger,
		Matcher:  w.Matcher,
		FeeRate:  decimal.NewFromFloat(w.Config.Fees.ManagementRate),
		Now:      w.now,
	}
}

// Now returns the workspace clock's current time.
func (w *Workspace) Now() time.Time { return w.now() }

// Rank scores every deposit not yet booked as income against a project. An
// empty projectID returns them unscored in their stored order.
func (w *Workspace) Rank(projectID string) ([]matching.Scored, error) {
	var project *model.Project
	if projectID != "" {
		p, ok := w.Projects.Get(projectID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProject, projectID)
		}
		project = &p
	}
	claims, err := w.Ledger.Claims()
	if err != nil {
		return nil, err
	}
	return w.Matcher.Rank(wizard.Unclaimed(w.Deposits.All(), claims), project), nil
}

// Submit runs a completed form through its wizard and appends the resulting
// entry to the ledger. When draftKey is set the draft is cleared afterwards.
func (w *Workspace) Submit(ctx context.Context, kind string, data []byte, draftKey string) (model.Entry, error) {
	flow, err := wizard.Lookup(w.Flows, kind)
	if err != nil {
		return model.Entry{}, err
	}

	entry, err := flow.Submit(data)
	if err != nil {
		return model.Entry{}, err
	}

	stored, err := w.commit(ctx, entry, draftKey)
	if err != nil {
		return model.Entry{}, err
	}

	if draftKey != "" {
		if err := w.Drafts.Delete(ctx, draftKey); err != nil && !errors.Is(err, draft.ErrNotFound) {
			logrus.WithField("draft", draftKey).WithError(err).Warn("clearing submitted draft failed")
		}
	}
	return stored, nil
}

// commit appends a submitted entry to the ledger and records it.
func (w *Workspace) commit(ctx context.Context, entry model.Entry, draftKey string) (model.Entry, error) {
	stored, err := w.Ledger.Append(entry)
	if err != nil {
		return model.Entry{}, fmt.Errorf("recording %s entry: %w", entry.Kind, err)
	}

	w.record(activity.ActionWizardSubmitted,
		fmt.Sprintf("%s %s %s", entry.Kind, stored.ProjectID, stored.Amount.StringFixed(2)),
		stored.EntryID, draftKey)
	w.snapshot(ctx, fmt.Sprintf("%s: %s %s", entry.Kind, stored.EntryID, stored.ProjectID))
	return stored, nil
}

func (w *Workspace) record(action, details, entryID, draftKey string) {
	err := w.Activity.Append(activity.Entry{
		Timestamp: w.now(),
		Actor:     w.actor,
		Action:    action,
		Details:   details,
		EntryID:   entryID,
		DraftKey:  draftKey,
	})
	if err != nil {
		logrus.WithError(err).Warn("failed to write activity log")
	}
}

// snapshot commits the workspace data when history is enabled. Failures are
// logged; the change itself has already been written.
func (w *Workspace) snapshot(ctx context.Context, message string) {
	if !w.Config.History.Enabled {
		return
	}
	hash, err := history.Record(ctx, w.Root, message, historyAuthor(w.Config))
	if err != nil {
		logrus.WithError(err).Warn("failed to record workspace history")
		return
	}
	if hash != "" {
		logrus.WithFields(logrus.Fields{"commit": hash, "message": message}).Debug("workspace history recorded")
	}
}

// History returns the latest n recorded workspace changes.
func (w *Workspace) History(ctx context.Context, n int) ([]history.Commit, error) {
	if !w.Config.History.Enabled || !history.IsRepo(w.Root) {
		return nil, ErrHistoryDisabled
	}
	return history.Log(ctx, w.Root, n)
}

func historyAuthor(cfg *config.Config) history.Author {
	return history.Author{Name: cfg.History.AuthorName, Email: cfg.History.AuthorEmail}
}

// Exists reports whether root looks like an initialised workspace.
func Exists(root string) bool {
	_, err := os.Stat(filepath.Join(root, config.FileName))
	return err == nil
}
