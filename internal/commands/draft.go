package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/labfund/fundops/internal/draft"
)

func newDraftCommand(dir *string) *cobra.Command {
	draftCmd := &cobra.Command{
		Use:   "draft",
		Short: "Inspect and clear saved wizard drafts",
	}
	draftCmd.AddCommand(
		newDraftListCommand(dir),
		newDraftShowCommand(dir),
		newDraftClearCommand(dir),
	)
	return draftCmd
}

func newDraftListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), *dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			keys, err := ws.Drafts.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
}

func newDraftShowCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <key>",
		Short: "Print a saved draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), *dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			s, err := ws.LoadDraft(cmd.Context(), args[0])
			if errors.Is(err, draft.ErrNotFound) {
				return fmt.Errorf("no draft %s", args[0])
			}
			if err != nil {
				return err
			}
			s.Restored = false

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(s)
		},
	}
}

func newDraftClearCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <key>",
		Short: "Delete a saved draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), *dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.ClearDraft(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Cleared draft %s\n", args[0])
			return nil
		},
	}
}
