package service

import "time"

const (
	MaxPrincipal      = 1_000_000_000.0 // 1 billion
	MaxAnnualRate     = 10.0            // 1000% per year, as a fraction
	MaxPeriodsPerYear = 365             // daily
	MaxTermYears      = 50.0

	MaxBatchLoans     = 50 // loans per batch request
	MaxComparedTerms  = 20 // candidate terms per comparison
	DefaultListLimit  = 20
	MaxListLimit      = 100
	DefaultCacheTTL   = time.Hour
	DefaultBatchLimit = 4 // concurrent runs per batch
)
