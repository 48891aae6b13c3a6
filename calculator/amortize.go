package calculator

import (
	"fmt"
	"math"

	"loan-amortizer/apperrors"
	"loan-amortizer/domain"
)

const (
	// PaymentDigits is the precision the periodic payment is kept at during the
	// recurrence. Rounding to 8 digits instead of 2 leaves a slight underpayment,
	// so the final period neither lands one period early nor overshoots far below zero.
	PaymentDigits = 8

	// MaxOverrunPeriods bounds how many periods past the nominal count the
	// recurrence may run before it is reported as non-terminating.
	MaxOverrunPeriods = 12
)

// PeriodicPayment returns the fixed annuity payment for p, rounded to
// PaymentDigits. It does not validate p.
func PeriodicPayment(p domain.LoanParameters) float64 {
	n := p.Periods()
	r := p.PeriodicRate()
	return Round(p.Principal*r/(1-math.Pow(1+r, -n)), PaymentDigits)
}

// Amortize computes the periodic payment for p and walks the balance down to
// zero, producing one record per payment period.
//
// The loop stops the first time the balance rounded to cents is zero or less;
// the record of the period that gets it there is included. The table usually
// has exactly p.Periods() rows.
func Amortize(p domain.LoanParameters) (domain.LoanSummary, error) {
	if err := Validate(p); err != nil {
		return domain.LoanSummary{}, err
	}

	payment := PeriodicPayment(p)
	if math.IsNaN(payment) || math.IsInf(payment, 0) || payment <= 0 {
		return domain.LoanSummary{}, fmt.Errorf("%w: periodic payment evaluates to %v", apperrors.ErrInvalidArgument, payment)
	}

	return amortize(p, payment)
}

// amortize runs the recurrence for p with a fixed payment. It fails with
// ErrNonTerminating when the balance is still positive MaxOverrunPeriods past
// the nominal period count.
func amortize(p domain.LoanParameters, payment float64) (domain.LoanSummary, error) {
	nominal := int(math.Round(p.Periods()))
	maxPeriods := nominal + MaxOverrunPeriods
	table := make(domain.PaymentTable, 0, nominal+1)

	balance := p.Principal
	accumulatedInterest := 0.0
	for number := 1; RoundCents(balance) > 0; number++ {
		if number > maxPeriods {
			return domain.LoanSummary{}, fmt.Errorf("%w: balance %.2f left after %d periods", apperrors.ErrNonTerminating, balance, maxPeriods)
		}

		interest := p.AnnualRate / float64(p.PeriodsPerYear) * balance
		accumulatedInterest += interest
		endBalance := balance - (payment - interest)

		table = append(table, domain.PaymentRecord{
			PaymentNumber:       number,
			StartBalance:        RoundCents(balance),
			EndBalance:          RoundCents(math.Abs(endBalance)),
			PaymentPrincipal:    RoundCents(payment - interest),
			PaymentInterest:     RoundCents(interest),
			AccumulatedInterest: RoundCents(accumulatedInterest),
			AmountPaidToDate:    RoundCents(payment * float64(number)),
		})

		balance = endBalance
	}

	// Interest is derived from the reported figures so the three always agree.
	totalPaid := RoundCents(payment * float64(p.PeriodsPerYear) * p.TermYears)
	principal := RoundCents(p.Principal)

	return domain.LoanSummary{
		PeriodicPayment: RoundCents(payment),
		Principal:       principal,
		TotalPaid:       totalPaid,
		InterestPaid:    RoundCents(totalPaid - principal),
		PaymentTable:    table,
	}, nil
}
