package service

import (
	"loan-amortizer/calculator"
	"loan-amortizer/domain"
)

type ProjectionService struct{}

func NewProjectionService() *ProjectionService {
	return &ProjectionService{}
}

// Project returns the value of the principal compounded over the term.
// Unlike an amortization, a zero annual rate is accepted.
func (s *ProjectionService) Project(params domain.LoanParameters) (domain.Projection, error) {
	if err := validateLoan(params, true); err != nil {
		return domain.Projection{}, err
	}

	fv, err := calculator.FutureValue(params)
	if err != nil {
		return domain.Projection{}, err
	}

	return domain.Projection{
		Parameters:  params,
		FutureValue: fv,
	}, nil
}
