package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/labfund/fundops/internal/bankcard"
)

func newValidateAccountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-account <number>...",
		Short: "Check a bank card number and show its issuing bank",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Numbers are often typed in groups of four.
			raw := strings.Join(args, " ")
			res := bankcard.Validate(raw)
			if !res.Valid {
				return fmt.Errorf("invalid account number: %s", res.Message)
			}
			fmt.Printf("%s  %s\n", bankcard.Mask(raw), res.BankName)
			return nil
		},
	}
}
