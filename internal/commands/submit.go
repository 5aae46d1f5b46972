package commands

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/labfund/fundops/internal/wizard"
)

func newSubmitCommand(dir *string) *cobra.Command {
	var draftKey string

	cmd := &cobra.Command{
		Use:   "submit <kind> <answers.json>",
		Short: "Submit a completed income, claim or reagent form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading answers: %w", err)
			}

			ws, err := openWorkspace(cmd.Context(), *dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			entry, err := ws.Submit(cmd.Context(), args[0], data, draftKey)
			var stepErr *wizard.StepError
			if errors.As(err, &stepErr) {
				printStepError(stepErr)
				return fmt.Errorf("form not submitted")
			}
			if err != nil {
				return err
			}

			fmt.Printf("Recorded %s: %s %s %s\n", entry.EntryID, entry.ProjectID, entry.Kind, entry.Amount.StringFixed(2))
			if !entry.ManagementFee.IsZero() {
				fmt.Printf("Management fee: %s\n", entry.ManagementFee.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&draftKey, "draft-key", "", "draft to clear after a successful submit")

	return cmd
}

func printStepError(e *wizard.StepError) {
	fmt.Printf("Step %d (%s) has errors:\n", e.Step+1, e.Title)
	labels := make([]string, 0, len(e.FieldErrors))
	for l := range e.FieldErrors {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Printf("  %s: %s\n", l, e.FieldErrors[l])
	}
}
