package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/labfund/fundops/internal/activity"
)

func newActivityCommand(dir *string) *cobra.Command {
	var (
		filter activity.Filter
		since  string
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the workspace activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if since != "" {
				t, err := time.ParseInLocation("2006-01-02", since, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --since date %q (want YYYY-MM-DD)", since)
				}
				filter.Since = t
			}

			ws, err := openWorkspace(cmd.Context(), *dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			entries, err := ws.Activity.Query(filter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No activity recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, e := range entries {
				ref := e.EntryID
				if ref == "" {
					ref = e.DraftKey
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.Local().Format("2006-01-02 15:04"), e.Actor, e.Action, ref, e.Details)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&filter.Action, "action", "", "only show this action")
	cmd.Flags().StringVar(&filter.Actor, "actor", "", "only show entries by cli or api")
	cmd.Flags().StringVar(&since, "since", "", "only show entries on or after this date (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&filter.Limit, "count", "n", 50, "number of entries to show, 0 for all")

	return cmd
}
