package calculator

import (
	"errors"
	"math"
	"testing"

	"loan-amortizer/apperrors"
	"loan-amortizer/domain"
)

func TestAmortize_ReferenceLoan(t *testing.T) {
	summary, err := Amortize(domain.LoanParameters{
		Principal:      27200,
		AnnualRate:     0.036,
		PeriodsPerYear: 12,
		TermYears:      5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.PeriodicPayment != 496.04 {
		t.Errorf("PeriodicPayment = %v, want 496.04", summary.PeriodicPayment)
	}
	if summary.Principal != 27200 {
		t.Errorf("Principal = %v, want 27200", summary.Principal)
	}
	if summary.TotalPaid != 29762.07 {
		t.Errorf("TotalPaid = %v, want 29762.07", summary.TotalPaid)
	}
	if summary.InterestPaid != 2562.07 {
		t.Errorf("InterestPaid = %v, want 2562.07", summary.InterestPaid)
	}
	if len(summary.PaymentTable) != 60 {
		t.Fatalf("len(PaymentTable) = %d, want 60", len(summary.PaymentTable))
	}

	first := summary.PaymentTable[0]
	want := domain.PaymentRecord{
		PaymentNumber:       1,
		StartBalance:        27200,
		EndBalance:          26785.56,
		PaymentPrincipal:    414.44,
		PaymentInterest:     81.6,
		AccumulatedInterest: 81.6,
		AmountPaidToDate:    496.04,
	}
	if first != want {
		t.Errorf("first record = %+v, want %+v", first, want)
	}

	last := summary.PaymentTable[59]
	if last.PaymentNumber != 60 {
		t.Errorf("last PaymentNumber = %d, want 60", last.PaymentNumber)
	}
	if last.StartBalance != 494.55 {
		t.Errorf("last StartBalance = %v, want 494.55", last.StartBalance)
	}
	if last.EndBalance != 0 {
		t.Errorf("last EndBalance = %v, want 0", last.EndBalance)
	}
	if last.AccumulatedInterest != 2562.07 {
		t.Errorf("last AccumulatedInterest = %v, want 2562.07", last.AccumulatedInterest)
	}
}

func TestAmortize_Invariants(t *testing.T) {
	tests := []struct {
		name   string
		params domain.LoanParameters
	}{
		{name: "monthly five years", params: domain.LoanParameters{Principal: 27200, AnnualRate: 0.036, PeriodsPerYear: 12, TermYears: 5}},
		{name: "56 periods over 17 years", params: domain.LoanParameters{Principal: 27200, AnnualRate: 0.036, PeriodsPerYear: 56, TermYears: 17}},
		{name: "daily eight years", params: domain.LoanParameters{Principal: 27200, AnnualRate: 0.036, PeriodsPerYear: 365, TermYears: 8}},
		{name: "thirty year mortgage", params: domain.LoanParameters{Principal: 100000, AnnualRate: 0.065, PeriodsPerYear: 12, TermYears: 30}},
		{name: "quarterly fractional years", params: domain.LoanParameters{Principal: 5000, AnnualRate: 0.07, PeriodsPerYear: 4, TermYears: 2.5}},
		{name: "biweekly", params: domain.LoanParameters{Principal: 250000, AnnualRate: 0.0425, PeriodsPerYear: 26, TermYears: 15}},
		{name: "single annual payment", params: domain.LoanParameters{Principal: 1000, AnnualRate: 0.05, PeriodsPerYear: 1, TermYears: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := Amortize(tt.params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			table := summary.PaymentTable

			nominal := int(math.Round(tt.params.Periods()))
			if diff := len(table) - nominal; diff < -1 || diff > 1 {
				t.Errorf("table length %d not within 1 of %d", len(table), nominal)
			}

			if RoundCents(summary.TotalPaid-summary.Principal) != summary.InterestPaid {
				t.Errorf("InterestPaid %v != TotalPaid %v - Principal %v",
					summary.InterestPaid, summary.TotalPaid, summary.Principal)
			}

			for i, rec := range table {
				if rec.PaymentNumber != i+1 {
					t.Fatalf("record %d has PaymentNumber %d", i, rec.PaymentNumber)
				}
				if rec.EndBalance < 0 {
					t.Errorf("record %d has negative EndBalance %v", i, rec.EndBalance)
				}
				if i == 0 {
					continue
				}
				prev := table[i-1]
				if drift := math.Abs(prev.StartBalance - prev.PaymentPrincipal - rec.StartBalance); drift > 0.011 {
					t.Errorf("record %d: start %v - principal %v drifts %v from next start %v",
						i, prev.StartBalance, prev.PaymentPrincipal, drift, rec.StartBalance)
				}
				if rec.AccumulatedInterest < prev.AccumulatedInterest {
					t.Errorf("accumulated interest decreased at record %d", i)
				}
			}

			last := table[len(table)-1]
			if last.EndBalance != 0 {
				t.Errorf("final EndBalance = %v, want 0", last.EndBalance)
			}
		})
	}
}

func TestAmortize_SinglePeriod(t *testing.T) {
	summary, err := Amortize(domain.LoanParameters{Principal: 1000, AnnualRate: 0.05, PeriodsPerYear: 1, TermYears: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.PeriodicPayment != 1050 {
		t.Errorf("PeriodicPayment = %v, want 1050", summary.PeriodicPayment)
	}
	if len(summary.PaymentTable) != 1 {
		t.Fatalf("len(PaymentTable) = %d, want 1", len(summary.PaymentTable))
	}
	rec := summary.PaymentTable[0]
	if rec.PaymentInterest != 50 || rec.PaymentPrincipal != 1000 || rec.EndBalance != 0 {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestAmortize_SubCentPrincipal(t *testing.T) {
	summary, err := Amortize(domain.LoanParameters{
		Principal:      10000.003,
		AnnualRate:     0.05,
		PeriodsPerYear: 12,
		TermYears:      3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Principal != 10000 || summary.TotalPaid != 10789.53 || summary.InterestPaid != 789.53 {
		t.Errorf("unexpected totals: principal=%v total=%v interest=%v",
			summary.Principal, summary.TotalPaid, summary.InterestPaid)
	}

	for cents := 1; cents <= 2000; cents++ {
		p := domain.LoanParameters{
			Principal:      10000 + float64(cents)/1000,
			AnnualRate:     0.05,
			PeriodsPerYear: 12,
			TermYears:      3,
		}
		s, err := Amortize(p)
		if err != nil {
			t.Fatalf("principal %v: unexpected error: %v", p.Principal, err)
		}
		if got := RoundCents(s.TotalPaid - s.Principal); got != s.InterestPaid {
			t.Fatalf("principal %v: total %v - principal %v = %v, reported interest %v",
				p.Principal, s.TotalPaid, s.Principal, got, s.InterestPaid)
		}
	}
}

func TestAmortize_NonTerminating(t *testing.T) {
	p := domain.LoanParameters{
		Principal:      10000,
		AnnualRate:     0.12,
		PeriodsPerYear: 12,
		TermYears:      1,
	}

	// An interest-only payment never reduces the balance.
	_, err := amortize(p, 100)

	if !errors.Is(err, apperrors.ErrNonTerminating) {
		t.Fatalf("expected ErrNonTerminating, got %v", err)
	}
}

func TestAmortize_OverrunWithinCap(t *testing.T) {
	p := domain.LoanParameters{
		Principal:      1000,
		AnnualRate:     0.12,
		PeriodsPerYear: 12,
		TermYears:      1,
	}

	// Underpaying by a little stretches the schedule past its nominal length.
	summary, err := amortize(p, PeriodicPayment(p)-5)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(summary.PaymentTable); n <= 12 || n > 12+MaxOverrunPeriods {
		t.Errorf("expected between 13 and %d records, got %d", 12+MaxOverrunPeriods, n)
	}
}

func TestAmortize_InvalidArguments(t *testing.T) {
	valid := domain.LoanParameters{Principal: 10000, AnnualRate: 0.1, PeriodsPerYear: 12, TermYears: 1}

	tests := []struct {
		name   string
		mutate func(p *domain.LoanParameters)
	}{
		{name: "zero rate", mutate: func(p *domain.LoanParameters) { p.AnnualRate = 0 }},
		{name: "negative rate", mutate: func(p *domain.LoanParameters) { p.AnnualRate = -0.02 }},
		{name: "NaN rate", mutate: func(p *domain.LoanParameters) { p.AnnualRate = math.NaN() }},
		{name: "zero principal", mutate: func(p *domain.LoanParameters) { p.Principal = 0 }},
		{name: "negative principal", mutate: func(p *domain.LoanParameters) { p.Principal = -5 }},
		{name: "infinite principal", mutate: func(p *domain.LoanParameters) { p.Principal = math.Inf(1) }},
		{name: "zero periods", mutate: func(p *domain.LoanParameters) { p.PeriodsPerYear = 0 }},
		{name: "negative periods", mutate: func(p *domain.LoanParameters) { p.PeriodsPerYear = -12 }},
		{name: "zero term", mutate: func(p *domain.LoanParameters) { p.TermYears = 0 }},
		{name: "fractional period count", mutate: func(p *domain.LoanParameters) { p.TermYears = 1.3 }},
		{name: "rate too small for payment formula", mutate: func(p *domain.LoanParameters) { p.AnnualRate = 1e-300 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)

			_, err := Amortize(p)
			if !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestPeriodicPayment(t *testing.T) {
	got := PeriodicPayment(domain.LoanParameters{Principal: 27200, AnnualRate: 0.036, PeriodsPerYear: 12, TermYears: 5})
	if got != 496.03450402 {
		t.Errorf("PeriodicPayment = %v, want 496.03450402", got)
	}
}

func TestFutureValue(t *testing.T) {
	tests := []struct {
		name    string
		params  domain.LoanParameters
		want    float64
		wantErr bool
	}{
		{name: "monthly compounding one year", params: domain.LoanParameters{Principal: 10000, AnnualRate: 0.1, PeriodsPerYear: 12, TermYears: 1}, want: 11047.13},
		{name: "annual compounding", params: domain.LoanParameters{Principal: 1000, AnnualRate: 0.05, PeriodsPerYear: 1, TermYears: 2}, want: 1102.5},
		{name: "zero rate keeps principal", params: domain.LoanParameters{Principal: 2500, AnnualRate: 0, PeriodsPerYear: 12, TermYears: 3}, want: 2500},
		{name: "negative rate rejected", params: domain.LoanParameters{Principal: 2500, AnnualRate: -0.1, PeriodsPerYear: 12, TermYears: 3}, wantErr: true},
		{name: "zero principal rejected", params: domain.LoanParameters{Principal: 0, AnnualRate: 0.1, PeriodsPerYear: 12, TermYears: 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FutureValue(tt.params)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FutureValue = %v, want %v", got, tt.want)
			}
		})
	}
}
