package calculator

import (
	"fmt"
	"math"

	"loan-amortizer/apperrors"
	"loan-amortizer/domain"
)

// periodTolerance is how far periodsPerYear*termYears may sit from a whole
// number before it is rejected.
const periodTolerance = 1e-9

// Validate checks that p can be amortized: every input positive and finite and
// a whole number of payment periods.
func Validate(p domain.LoanParameters) error {
	if err := validateCommon(p); err != nil {
		return err
	}
	if !isPositiveFinite(p.AnnualRate) {
		return fmt.Errorf("%w: annual rate must be a positive finite number, got %v", apperrors.ErrInvalidArgument, p.AnnualRate)
	}
	return nil
}

// ValidateProjection is Validate with a zero annual rate allowed.
func ValidateProjection(p domain.LoanParameters) error {
	if err := validateCommon(p); err != nil {
		return err
	}
	if math.IsNaN(p.AnnualRate) || math.IsInf(p.AnnualRate, 0) || p.AnnualRate < 0 {
		return fmt.Errorf("%w: annual rate must be a non-negative finite number, got %v", apperrors.ErrInvalidArgument, p.AnnualRate)
	}
	return nil
}

func validateCommon(p domain.LoanParameters) error {
	if !isPositiveFinite(p.Principal) {
		return fmt.Errorf("%w: principal must be a positive finite number, got %v", apperrors.ErrInvalidArgument, p.Principal)
	}
	if p.PeriodsPerYear <= 0 {
		return fmt.Errorf("%w: periods per year must be positive, got %d", apperrors.ErrInvalidArgument, p.PeriodsPerYear)
	}
	if !isPositiveFinite(p.TermYears) {
		return fmt.Errorf("%w: term must be a positive finite number of years, got %v", apperrors.ErrInvalidArgument, p.TermYears)
	}
	n := p.Periods()
	if math.Abs(n-math.Round(n)) > periodTolerance {
		return fmt.Errorf("%w: %d periods per year over %v years is not a whole number of periods", apperrors.ErrInvalidArgument, p.PeriodsPerYear, p.TermYears)
	}
	return nil
}

func isPositiveFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
