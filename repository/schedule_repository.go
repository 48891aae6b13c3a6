package repository

import (
	"context"
	"time"

	"loan-amortizer/domain"
)

// ScheduleRepository stores computed schedules.
type ScheduleRepository interface {
	// Save persists the schedule. ID and CreatedAt are assigned when empty.
	Save(ctx context.Context, schedule *domain.Schedule) error

	// Get returns apperrors.ErrScheduleNotFound when no schedule has the ID.
	Get(ctx context.Context, id string) (domain.Schedule, error)

	// List returns up to limit schedule headers, newest first.
	List(ctx context.Context, limit int) ([]domain.ScheduleHeader, error)

	Delete(ctx context.Context, id string) error

	// DeleteOlderThan removes schedules created before cutoff and reports how many.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

func headerOf(s domain.Schedule) domain.ScheduleHeader {
	return domain.ScheduleHeader{
		ID:              s.ID,
		CreatedAt:       s.CreatedAt,
		Parameters:      s.Parameters,
		PeriodicPayment: s.Summary.PeriodicPayment,
		TotalPaid:       s.Summary.TotalPaid,
		InterestPaid:    s.Summary.InterestPaid,
		Periods:         len(s.Summary.PaymentTable),
	}
}
