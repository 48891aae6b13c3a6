package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"loan-amortizer/apperrors"
	"loan-amortizer/calculator"
	"loan-amortizer/domain"
)

// ValidationError lists every rejected field of a request. It matches
// apperrors.ErrInvalidArgument under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, field := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidArgument
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// validateLoan applies the business limits on top of the calculator's own checks.
func validateLoan(p domain.LoanParameters, allowZeroRate bool) error {
	verr := &ValidationError{}

	switch {
	case !finite(p.Principal) || p.Principal <= 0:
		verr.add("principal", "must be a positive number")
	case p.Principal > MaxPrincipal:
		verr.add("principal", fmt.Sprintf("exceeds the maximum of %.2f", MaxPrincipal))
	}

	switch {
	case !finite(p.AnnualRate) || p.AnnualRate < 0:
		verr.add("annualRate", "must be a non-negative number")
	case p.AnnualRate == 0 && !allowZeroRate:
		verr.add("annualRate", "must be greater than zero")
	case p.AnnualRate > MaxAnnualRate:
		verr.add("annualRate", fmt.Sprintf("exceeds the maximum of %.2f", MaxAnnualRate))
	}

	switch {
	case p.PeriodsPerYear <= 0:
		verr.add("periodsPerYear", "must be a positive integer")
	case p.PeriodsPerYear > MaxPeriodsPerYear:
		verr.add("periodsPerYear", fmt.Sprintf("exceeds the maximum of %d", MaxPeriodsPerYear))
	}

	switch {
	case !finite(p.TermYears) || p.TermYears <= 0:
		verr.add("termYears", "must be a positive number")
	case p.TermYears > MaxTermYears:
		verr.add("termYears", fmt.Sprintf("exceeds the maximum of %.0f years", MaxTermYears))
	}

	if err := verr.orNil(); err != nil {
		return err
	}

	check := calculator.Validate
	if allowZeroRate {
		check = calculator.ValidateProjection
	}
	if err := check(p); err != nil {
		// The only condition left for the calculator to catch is a fractional period count.
		verr.add("termYears", strings.TrimPrefix(err.Error(), apperrors.ErrInvalidArgument.Error()+": "))
		return verr
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// isValidationError reports whether err should be counted as bad input.
func isValidationError(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidArgument)
}
