package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/labfund/fundops/internal/activity"
	"github.com/labfund/fundops/internal/config"
	"github.com/labfund/fundops/internal/deposits"
	"github.com/labfund/fundops/internal/history"
	"github.com/labfund/fundops/internal/projects"
)

// Dirs are the directories created by Init.
var Dirs = []string{
	projects.Dir,
	deposits.Dir,
	"drafts",
	"logs",
	"import",
	filepath.Join("import", "processed"),
}

// InitOption adjusts the configuration written by Init.
type InitOption func(*config.Config)

// WithHistory turns on git versioning of the workspace data.
func WithHistory() InitOption {
	return func(c *config.Config) { c.History.Enabled = true }
}

// Init lays out a new workspace at dir with the demo project registry.
func Init(dir, orgName, university string, opts ...InitOption) error {
	if Exists(dir) {
		return fmt.Errorf("%s already contains %s", dir, config.FileName)
	}

	for _, d := range Dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(orgName, university)
	for _, opt := range opts {
		opt(cfg)
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := projects.NewService(projects.DefaultRegistry()).Save(dir); err != nil {
		return fmt.Errorf("writing project registry: %w", err)
	}

	if err := deposits.NewService(nil).Save(dir); err != nil {
		return fmt.Errorf("writing deposits: %w", err)
	}

	gitignore := "drafts/\nimport/processed/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if err := activity.Open(dir).Append(activity.Entry{
		Timestamp: time.Now(),
		Actor:     "cli",
		Action:    activity.ActionInit,
		Details:   orgName,
	}); err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}

	if cfg.History.Enabled {
		ctx := context.Background()
		if err := history.Init(ctx, dir); err != nil {
			return err
		}
		if _, err := history.Record(ctx, dir, "init: "+orgName, historyAuthor(cfg)); err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
	}
	return nil
}
