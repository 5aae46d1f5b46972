package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/labfund/fundops/internal/workspace"
)

func newInitCommand() *cobra.Command {
	var name string
	var university string
	var withHistory bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new fundops workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			var opts []workspace.InitOption
			if withHistory {
				opts = append(opts, workspace.WithHistory())
			}
			if err := workspace.Init(absDir, name, university, opts...); err != nil {
				return err
			}
			fmt.Printf("Initialized fundops workspace at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "research office name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&university, "university", "", "university name")
	cmd.Flags().BoolVar(&withHistory, "git", false, "record every change in a git repository")

	return cmd
}
