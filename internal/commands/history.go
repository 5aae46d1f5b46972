package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(dir *string) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded workspace changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), *dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			commits, err := ws.History(cmd.Context(), n)
			if err != nil {
				return err
			}
			for _, c := range commits {
				fmt.Printf("%s  %s  %s\n", c.Hash, c.Date.Format("2006-01-02 15:04"), c.Subject)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 20, "number of changes to show")

	return cmd
}
