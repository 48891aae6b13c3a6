package domain

import "time"

// LoanParameters are the four inputs of an amortization or projection run.
type LoanParameters struct {
	Principal      float64 `json:"principal"`
	AnnualRate     float64 `json:"annualRate"`
	PeriodsPerYear int     `json:"periodsPerYear"`
	TermYears      float64 `json:"termYears"`
}

// Periods returns the nominal number of payment periods (periodsPerYear * termYears).
func (p LoanParameters) Periods() float64 {
	return float64(p.PeriodsPerYear) * p.TermYears
}

// PeriodicRate returns the interest rate applied per payment period.
func (p LoanParameters) PeriodicRate() float64 {
	return p.AnnualRate / float64(p.PeriodsPerYear)
}

type PaymentRecord struct {
	PaymentNumber       int     `json:"paymentNumber"`
	StartBalance        float64 `json:"startBalance"`
	EndBalance          float64 `json:"endBalance"`
	PaymentPrincipal    float64 `json:"paymentPrincipal"`
	PaymentInterest     float64 `json:"paymentInterest"`
	AccumulatedInterest float64 `json:"accumulatedInterest"`
	AmountPaidToDate    float64 `json:"amountPaidToDate"`
}

// PaymentTable is ordered by PaymentNumber ascending.
type PaymentTable []PaymentRecord

type LoanSummary struct {
	PeriodicPayment float64      `json:"periodicPayment"`
	Principal       float64      `json:"principal"`
	TotalPaid       float64      `json:"totalPaid"`
	InterestPaid    float64      `json:"interestPaid"`
	PaymentTable    PaymentTable `json:"paymentTable"`
}

// Schedule is a LoanSummary together with the parameters that produced it
// and, once stored, its identity.
type Schedule struct {
	ID         string         `json:"id,omitempty"`
	CreatedAt  time.Time      `json:"createdAt,omitzero"`
	Parameters LoanParameters `json:"parameters"`
	Summary    LoanSummary    `json:"summary"`
}

// ScheduleHeader is the list view of a stored schedule, without its table.
type ScheduleHeader struct {
	ID              string         `json:"id"`
	CreatedAt       time.Time      `json:"createdAt"`
	Parameters      LoanParameters `json:"parameters"`
	PeriodicPayment float64        `json:"periodicPayment"`
	TotalPaid       float64        `json:"totalPaid"`
	InterestPaid    float64        `json:"interestPaid"`
	Periods         int            `json:"periods"`
}

type Projection struct {
	Parameters  LoanParameters `json:"parameters"`
	FutureValue float64        `json:"futureValue"`
}
