package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newFeesCommand(dir *string) *cobra.Command {
	feesCmd := &cobra.Command{
		Use:   "fees",
		Short: "Export and import management-fee allocations",
	}
	feesCmd.AddCommand(newFeesExportCommand(dir), newFeesImportCommand(dir))
	return feesCmd
}

func newFeesExportCommand(dir *string) *cobra.Command {
	var year int
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the management-fee report for a year as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), *dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if year == 0 {
				year = ws.Now().Year()
			}

			var w io.Writer = os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return ws.ExportFees(w, year)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "ledger year (defaults to the current year)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (defaults to stdout)")

	return cmd
}

func newFeesImportCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <report.json>",
		Short: "Check and load a management-fee report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading report: %w", err)
			}

			ws, err := openWorkspace(cmd.Context(), *dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if !ws.ImportFees(data) {
				return fmt.Errorf("%s is not a valid management-fee report", args[0])
			}
			r := ws.Fees.Current()
			fmt.Printf("Loaded %d allocations: amount %s, fee %s\n",
				len(r.Allocations), r.TotalAmount.StringFixed(2), r.TotalFee.StringFixed(2))
			return nil
		},
	}
}
