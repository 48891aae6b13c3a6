package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"loan-amortizer/calculator"
	"loan-amortizer/render"
)

func newTVMCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tvm [PRINCIPAL RATE PERIODS YEARS]",
		Short: "Print the future value of a principal",
		Long: `Print the future value of a principal compounded PERIODS times a year
over YEARS years. A zero RATE is allowed.`,
		Args: loanArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseLoan(args)
			if err != nil {
				return err
			}

			fv, err := calculator.FutureValue(params)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Money(fv))
			return err
		},
	}
}
