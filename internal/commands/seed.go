package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCommand(dir *string) *cobra.Command {
	var n int
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate mock bank deposits for a demo workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return fmt.Errorf("-n must be positive, got %d", n)
			}
			ws, err := openWorkspace(cmd.Context(), *dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			added, err := ws.Seed(n, seed)
			if err != nil {
				return err
			}
			fmt.Printf("Added %d deposits (%d total)\n", added, ws.Deposits.Len())
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 20, "number of deposits to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")

	return cmd
}
