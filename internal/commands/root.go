package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/labfund/fundops/internal/buildinfo"
	"github.com/labfund/fundops/internal/config"
	"github.com/labfund/fundops/internal/logging"
	"github.com/labfund/fundops/internal/workspace"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var dir string

	rootCmd := &cobra.Command{
		Use:     "fundops",
		Short:   "Research fund operations for university project offices",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Logging defaults apply until a workspace config is loaded.
			return logging.Configure(config.Default("", "").Log, os.Stderr)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dir, "dir", ".", "workspace directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newValidateAccountCommand(),
		newMatchCommand(&dir),
		newImportCommand(&dir),
		newSeedCommand(&dir),
		newSubmitCommand(&dir),
		newDraftCommand(&dir),
		newFeesCommand(&dir),
		newServeCommand(&dir),
		newHistoryCommand(&dir),
		newActivityCommand(&dir),
	)

	return rootCmd
}

// openWorkspace opens the workspace at dir and applies its logging settings.
func openWorkspace(ctx context.Context, dir string, opts ...workspace.Option) (*workspace.Workspace, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if !workspace.Exists(root) {
		return nil, fmt.Errorf("%s is not a fundops workspace (run fundops init first)", root)
	}

	ws, err := workspace.Open(ctx, root, opts...)
	if err != nil {
		return nil, err
	}
	if err := logging.Configure(ws.Config.Log, os.Stderr); err != nil {
		_ = ws.Close()
		return nil, err
	}
	return ws, nil
}
