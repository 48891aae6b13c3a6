package domain

type TermComparisonInput struct {
	Principal          float64   `json:"principal"`
	AnnualRate         float64   `json:"annualRate"`
	PeriodsPerYear     int       `json:"periodsPerYear"`
	TermsYears         []float64 `json:"termsYears"`
	MaxPeriodicPayment float64   `json:"maxPeriodicPayment,omitempty"`
	Preference         string    `json:"preference"` // "minimize_interest", "minimize_payment", "balanced"
}

type TermOption struct {
	TermYears       float64 `json:"termYears"`
	Periods         int     `json:"periods"`
	PeriodicPayment float64 `json:"periodicPayment"`
	TotalPaid       float64 `json:"totalPaid"`
	InterestPaid    float64 `json:"interestPaid"`
	Score           float64 `json:"score"`
	Reason          string  `json:"reason"`
}

type TermComparisonResult struct {
	RecommendedTermYears float64      `json:"recommendedTermYears"`
	Options              []TermOption `json:"options"`
}
