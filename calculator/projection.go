package calculator

import (
	"math"

	"loan-amortizer/domain"
)

// FutureValue compounds the principal over the term at the periodic rate:
// principal * (1 + r)^n, rounded to cents. A zero rate is allowed.
func FutureValue(p domain.LoanParameters) (float64, error) {
	if err := ValidateProjection(p); err != nil {
		return 0, err
	}
	return RoundCents(p.Principal * math.Pow(1+p.PeriodicRate(), p.Periods())), nil
}
