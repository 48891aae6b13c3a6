package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"loan-amortizer/apperrors"
	"loan-amortizer/calculator"
	"loan-amortizer/domain"
)

// Comparison preferences.
const (
	PreferMinimizeInterest = "minimize_interest"
	PreferMinimizePayment  = "minimize_payment"
	PreferBalanced         = "balanced"
)

type TermComparisonService struct {
	schedules *ScheduleService
}

func NewTermComparisonService(schedules *ScheduleService) *TermComparisonService {
	return &TermComparisonService{schedules: schedules}
}

// Compare amortizes the loan over every candidate term, drops the terms whose
// periodic payment exceeds the budget and ranks the rest by preference.
func (s *TermComparisonService) Compare(
	ctx context.Context,
	input domain.TermComparisonInput,
) (domain.TermComparisonResult, error) {

	if err := validateComparison(input); err != nil {
		return domain.TermComparisonResult{}, err
	}

	terms := slices.Clone(input.TermsYears)
	slices.Sort(terms)

	loans := make([]domain.LoanParameters, len(terms))
	for i, term := range terms {
		loans[i] = domain.LoanParameters{
			Principal:      input.Principal,
			AnnualRate:     input.AnnualRate,
			PeriodsPerYear: input.PeriodsPerYear,
			TermYears:      term,
		}
	}

	summaries, err := s.schedules.AmortizeBatch(ctx, loans)
	if err != nil {
		return domain.TermComparisonResult{}, err
	}

	options := make([]domain.TermOption, 0, len(summaries))
	for i, summary := range summaries {
		// Filter by the payment budget
		if input.MaxPeriodicPayment > 0 && summary.PeriodicPayment > input.MaxPeriodicPayment {
			continue
		}
		options = append(options, domain.TermOption{
			TermYears:       terms[i],
			Periods:         len(summary.PaymentTable),
			PeriodicPayment: summary.PeriodicPayment,
			TotalPaid:       summary.TotalPaid,
			InterestPaid:    summary.InterestPaid,
		})
	}

	if len(options) == 0 {
		return domain.TermComparisonResult{}, fmt.Errorf("%w: %.2f", apperrors.ErrNoViableTerm, input.MaxPeriodicPayment)
	}

	scoreOptions(options, input.Preference)

	// Highest score first; ties go to the shorter term
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Score > options[j].Score
	})

	for i := range options {
		options[i].Reason = reasonFor(options[i], options[0], i == 0, input.Preference)
	}

	return domain.TermComparisonResult{
		RecommendedTermYears: options[0].TermYears,
		Options:              options,
	}, nil
}

func validateComparison(input domain.TermComparisonInput) error {
	verr := &ValidationError{}

	switch input.Preference {
	case PreferMinimizeInterest, PreferMinimizePayment, PreferBalanced:
	default:
		verr.add("preference", fmt.Sprintf("must be one of %s, %s, %s",
			PreferMinimizeInterest, PreferMinimizePayment, PreferBalanced))
	}

	if !finite(input.MaxPeriodicPayment) || input.MaxPeriodicPayment < 0 {
		verr.add("maxPeriodicPayment", "must be zero (no limit) or a positive number")
	}

	switch {
	case len(input.TermsYears) == 0:
		verr.add("termsYears", "at least one term is required")
	case len(input.TermsYears) > MaxComparedTerms:
		verr.add("termsYears", fmt.Sprintf("at most %d terms can be compared", MaxComparedTerms))
	}

	seen := make(map[float64]bool, len(input.TermsYears))
	for i, term := range input.TermsYears {
		field := fmt.Sprintf("termsYears[%d]", i)
		if seen[term] {
			verr.add(field, "duplicate term")
			continue
		}
		seen[term] = true

		err := validateLoan(domain.LoanParameters{
			Principal:      input.Principal,
			AnnualRate:     input.AnnualRate,
			PeriodsPerYear: input.PeriodsPerYear,
			TermYears:      term,
		}, false)
		if err == nil {
			continue
		}
		var inner *ValidationError
		if errors.As(err, &inner) {
			for name, msg := range inner.Fields {
				if name == "termYears" {
					name = field
				}
				verr.add(name, msg)
			}
			continue
		}
		verr.add(field, err.Error())
	}

	return verr.orNil()
}

// scoreOptions gives every option a 0-10 score. Each criterion is normalized
// over the compared options, lower interest, payment and term scoring higher.
func scoreOptions(options []domain.TermOption, preference string) {
	interest := normalizer(options, func(o domain.TermOption) float64 { return o.InterestPaid })
	payment := normalizer(options, func(o domain.TermOption) float64 { return o.PeriodicPayment })
	term := normalizer(options, func(o domain.TermOption) float64 { return o.TermYears })

	for i := range options {
		o := options[i]
		interestScore := interest(o)
		paymentScore := payment(o)
		termScore := term(o)

		var score float64
		switch preference {
		case PreferMinimizeInterest:
			score = 0.6*interestScore + 0.2*paymentScore + 0.2*termScore
		case PreferMinimizePayment:
			score = 0.2*interestScore + 0.6*paymentScore + 0.2*termScore
		case PreferBalanced:
			score = 0.4*interestScore + 0.4*paymentScore + 0.2*termScore
		}
		options[i].Score = calculator.RoundCents(score)
	}
}

func normalizer(options []domain.TermOption, value func(domain.TermOption) float64) func(domain.TermOption) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, o := range options {
		lo = math.Min(lo, value(o))
		hi = math.Max(hi, value(o))
	}
	return func(o domain.TermOption) float64 {
		if hi == lo {
			return 10
		}
		return 10 * (1 - (value(o)-lo)/(hi-lo))
	}
}

func reasonFor(o, best domain.TermOption, recommended bool, preference string) string {
	if recommended {
		switch preference {
		case PreferMinimizeInterest:
			return fmt.Sprintf("Lowest total cost within budget: %.2f in interest over %g years", o.InterestPaid, o.TermYears)
		case PreferMinimizePayment:
			return fmt.Sprintf("Lowest periodic payment within budget: %.2f per period", o.PeriodicPayment)
		default:
			return fmt.Sprintf("Best balance between a %.2f payment and %.2f in interest", o.PeriodicPayment, o.InterestPaid)
		}
	}

	switch {
	case o.InterestPaid > best.InterestPaid && o.PeriodicPayment < best.PeriodicPayment:
		return fmt.Sprintf("Pays %.2f less per period but %.2f more in interest",
			best.PeriodicPayment-o.PeriodicPayment, o.InterestPaid-best.InterestPaid)
	case o.InterestPaid < best.InterestPaid && o.PeriodicPayment > best.PeriodicPayment:
		return fmt.Sprintf("Saves %.2f in interest for %.2f more per period",
			best.InterestPaid-o.InterestPaid, o.PeriodicPayment-best.PeriodicPayment)
	default:
		return "Ranked below the recommended term for this preference"
	}
}
