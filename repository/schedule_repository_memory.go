package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"loan-amortizer/apperrors"
	"loan-amortizer/domain"
)

var _ ScheduleRepository = (*ScheduleRepositoryMemory)(nil)

// ScheduleRepositoryMemory is an in-memory implementation of ScheduleRepository.
type ScheduleRepositoryMemory struct {
	mu   sync.RWMutex
	data map[string]domain.Schedule
}

// NewScheduleRepositoryMemory creates a new in-memory schedule repository.
func NewScheduleRepositoryMemory() *ScheduleRepositoryMemory {
	return &ScheduleRepositoryMemory{
		data: make(map[string]domain.Schedule),
	}
}

// Save stores a copy of the schedule in memory.
func (r *ScheduleRepositoryMemory) Save(_ context.Context, schedule *domain.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.New().String()
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now().UTC()
	}

	stored := *schedule
	stored.Summary.PaymentTable = slices.Clone(schedule.Summary.PaymentTable)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[stored.ID] = stored
	return nil
}

func (r *ScheduleRepositoryMemory) Get(_ context.Context, id string) (domain.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.data[id]
	if !ok {
		return domain.Schedule{}, apperrors.ErrScheduleNotFound
	}
	s.Summary.PaymentTable = slices.Clone(s.Summary.PaymentTable)
	return s, nil
}

func (r *ScheduleRepositoryMemory) List(_ context.Context, limit int) ([]domain.ScheduleHeader, error) {
	r.mu.RLock()
	headers := make([]domain.ScheduleHeader, 0, len(r.data))
	for _, s := range r.data {
		headers = append(headers, headerOf(s))
	}
	r.mu.RUnlock()

	slices.SortFunc(headers, func(a, b domain.ScheduleHeader) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(headers) > limit {
		headers = headers[:limit]
	}
	return headers, nil
}

func (r *ScheduleRepositoryMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return apperrors.ErrScheduleNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *ScheduleRepositoryMemory) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, s := range r.data {
		if s.CreatedAt.Before(cutoff) {
			delete(r.data, id)
			removed++
		}
	}
	return removed, nil
}
