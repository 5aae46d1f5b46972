package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labfund/fundops/internal/statements"
)

func newImportCommand(dir *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank statement CSVs from import/ into the deposit list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), *dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			files, err := ws.Import(format)
			for _, f := range files {
				fmt.Printf("%s [%s]: %d deposits, %d new, %d duplicate\n", f.Name, f.Format, f.Parsed, f.Added, f.Duplicates)
				if f.StoredAs != f.Name {
					fmt.Printf("  stored as processed/%s\n", f.StoredAs)
				}
			}
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("No statements to import.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", statements.FormatAuto, "statement format, or auto to detect from the header")

	return cmd
}
