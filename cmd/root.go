package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"loan-amortizer/apperrors"
	"loan-amortizer/domain"
	"loan-amortizer/logging"
)

// demoLoan is used by amortize and tvm when no loan is given.
var demoLoan = domain.LoanParameters{
	Principal:      27200,
	AnnualRate:     0.036,
	PeriodsPerYear: 12,
	TermYears:      5,
}

func NewRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "loan-amortizer",
		Short: "Loan amortization schedules and time value of money",
		Long: `loan-amortizer computes fixed-payment amortization schedules.

Commands:
  amortize  - print the payment schedule of a loan
  tvm       - print the future value of a principal
  serve     - start the HTTP API`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel == "" {
				logLevel = os.Getenv("LOG_LEVEL")
			}
			logging.Setup(logging.ParseLevel(logLevel))
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $LOG_LEVEL or info)")

	root.AddCommand(
		newAmortizeCmd(),
		newTVMCmd(),
		newServeCmd(),
	)
	return root
}

func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

// loanArgs accepts either no arguments (the demo loan) or all four loan parameters.
func loanArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 4 {
		return fmt.Errorf("accepts 0 or 4 args (PRINCIPAL RATE PERIODS YEARS), received %d", len(args))
	}
	return nil
}

func parseLoan(args []string) (domain.LoanParameters, error) {
	if len(args) == 0 {
		return demoLoan, nil
	}

	principal, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return domain.LoanParameters{}, fmt.Errorf("%w: principal %q is not a number", apperrors.ErrInvalidArgument, args[0])
	}
	rate, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return domain.LoanParameters{}, fmt.Errorf("%w: rate %q is not a number", apperrors.ErrInvalidArgument, args[1])
	}
	periods, err := strconv.Atoi(args[2])
	if err != nil {
		return domain.LoanParameters{}, fmt.Errorf("%w: periods per year %q is not an integer", apperrors.ErrInvalidArgument, args[2])
	}
	years, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return domain.LoanParameters{}, fmt.Errorf("%w: years %q is not a number", apperrors.ErrInvalidArgument, args[3])
	}

	return domain.LoanParameters{
		Principal:      principal,
		AnnualRate:     rate,
		PeriodsPerYear: periods,
		TermYears:      years,
	}, nil
}
