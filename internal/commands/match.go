package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/labfund/fundops/internal/matching"
)

func newMatchCommand(dir *string) *cobra.Command {
	var all bool
	var reasons bool

	cmd := &cobra.Command{
		Use:   "match [project-id]",
		Short: "Rank bank deposits against a project",
		Long: "Scores every deposit against the project and lists the recommended ones first.\n" +
			"Without a project ID the deposits are listed unscored.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), *dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			projectID := ""
			if len(args) > 0 {
				projectID = args[0]
			}
			ranked, err := ws.Rank(projectID)
			if err != nil {
				return err
			}
			if projectID != "" && !all {
				ranked = matching.Recommendations(ranked)
			}
			if len(ranked) == 0 {
				fmt.Println("No matching deposits.")
				return nil
			}
			return printRanked(ranked, reasons)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list deposits below the recommendation threshold too")
	cmd.Flags().BoolVar(&reasons, "reasons", false, "show which rules contributed to each score")

	return cmd
}

func printRanked(ranked []matching.Scored, reasons bool) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tREFERENCE\tDATE\tBANK\tAMOUNT\tSCORE\tSUMMARY")
	for _, s := range ranked {
		mark := ""
		if s.Recommended {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
			mark, s.Deposit.Reference, s.Deposit.Date.Format("2006-01-02"), s.Deposit.BankName,
			s.Deposit.Amount.StringFixed(2), s.Score, s.Deposit.Summary)
		if reasons && len(s.Reasons) > 0 {
			fmt.Fprintf(tw, "\t\t\t\t\t\t%s\n", strings.Join(s.Reasons, ", "))
		}
	}
	return tw.Flush()
}
