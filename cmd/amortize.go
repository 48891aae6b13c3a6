package cmd

import (
	"github.com/spf13/cobra"

	"loan-amortizer/calculator"
	"loan-amortizer/render"
)

func newAmortizeCmd() *cobra.Command {
	var (
		format      string
		summaryOnly bool
	)

	cmd := &cobra.Command{
		Use:   "amortize [PRINCIPAL RATE PERIODS YEARS]",
		Short: "Print the amortization schedule of a loan",
		Long: `Print the amortization schedule of a loan.

RATE is the annual rate as a fraction (0.036 for 3.6%), PERIODS the number
of payments per year. Without arguments the demo loan 27200 0.036 12 5 is used.

Examples:
  loan-amortizer amortize
  loan-amortizer amortize 100000 0.065 12 30 --summary
  loan-amortizer amortize 5000 0.07 4 2.5 --format csv`,
		Args: loanArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseLoan(args)
			if err != nil {
				return err
			}

			summary, err := calculator.Amortize(params)
			if err != nil {
				return err
			}

			return render.Write(cmd.OutOrStdout(), format, summary, summaryOnly)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", render.FormatTable, "Output format: table, json, csv")
	cmd.Flags().BoolVarP(&summaryOnly, "summary", "s", false, "Print only the totals")
	return cmd
}
