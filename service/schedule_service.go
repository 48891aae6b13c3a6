package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"loan-amortizer/apperrors"
	"loan-amortizer/calculator"
	"loan-amortizer/domain"
	"loan-amortizer/metrics"
	"loan-amortizer/repository"
)

type ScheduleService struct {
	repo        repository.ScheduleRepository
	cache       repository.CacheRepository
	metrics     *metrics.Metrics
	cacheTTL    time.Duration
	concurrency int
	now         func() time.Time
	amortize    func(domain.LoanParameters) (domain.LoanSummary, error)
}

// Option configures a ScheduleService.
type Option func(*ScheduleService)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ScheduleService) { s.metrics = m }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *ScheduleService) { s.cacheTTL = ttl }
}

// WithBatchConcurrency bounds how many loans of a batch are amortized at once.
func WithBatchConcurrency(n int) Option {
	return func(s *ScheduleService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewScheduleService creates a new ScheduleService with the given repository and cache.
func NewScheduleService(
	repo repository.ScheduleRepository,
	cache repository.CacheRepository,
	opts ...Option,
) *ScheduleService {
	s := &ScheduleService{
		repo:        repo,
		cache:       cache,
		cacheTTL:    DefaultCacheTTL,
		concurrency: DefaultBatchLimit,
		now:         time.Now,
		amortize:    calculator.Amortize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s
}

// Summarize validates the parameters and returns the amortization summary,
// from the cache when an identical loan was computed recently.
func (s *ScheduleService) Summarize(
	ctx context.Context,
	params domain.LoanParameters,
) (domain.LoanSummary, error) {

	if err := validateLoan(params, false); err != nil {
		s.metrics.Runs.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return domain.LoanSummary{}, err
	}

	key := cacheKey(params)
	if cached, ok := s.cache.Get(ctx, key); ok {
		var summary domain.LoanSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			s.metrics.CacheHits.Inc()
			s.metrics.Runs.WithLabelValues(metrics.OutcomeCached).Inc()
			return summary, nil
		}
		slog.Warn("Discarding unreadable cache entry", "key", key)
	}
	s.metrics.CacheMisses.Inc()

	start := time.Now()
	summary, err := s.amortize(params)
	if err != nil {
		outcome := metrics.OutcomeFailed
		switch {
		case errors.Is(err, apperrors.ErrNonTerminating):
			outcome = metrics.OutcomeDiverged
		case isValidationError(err):
			outcome = metrics.OutcomeInvalid
		}
		s.metrics.Runs.WithLabelValues(outcome).Inc()
		return domain.LoanSummary{}, err
	}
	s.metrics.ObserveRun(len(summary.PaymentTable), time.Since(start))

	// Caching is not critical
	if encoded, err := json.Marshal(summary); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded), s.cacheTTL); err != nil {
			slog.Warn("Failed to cache schedule", "key", key, "error", err)
		}
	}

	return summary, nil
}

// Amortize computes the schedule for params and, when persist is set, stores it.
// A storage failure is logged and the schedule is returned without an ID.
func (s *ScheduleService) Amortize(
	ctx context.Context,
	params domain.LoanParameters,
	persist bool,
) (domain.Schedule, error) {

	summary, err := s.Summarize(ctx, params)
	if err != nil {
		return domain.Schedule{}, err
	}

	schedule := domain.Schedule{
		Parameters: params,
		Summary:    summary,
	}
	if !persist {
		return schedule, nil
	}

	if err := s.repo.Save(ctx, &schedule); err != nil {
		slog.Warn("Failed to save schedule", "error", err)
		schedule.ID = ""
		schedule.CreatedAt = time.Time{}
	}

	return schedule, nil
}

func (s *ScheduleService) Get(ctx context.Context, id string) (domain.Schedule, error) {
	if err := validateID(id); err != nil {
		return domain.Schedule{}, err
	}

	schedule, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrScheduleNotFound) {
			return domain.Schedule{}, err
		}
		return domain.Schedule{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveSchedule, err)
	}
	return schedule, nil
}

// List returns stored schedule headers, newest first. A limit outside
// 1..MaxListLimit falls back to DefaultListLimit or MaxListLimit.
func (s *ScheduleService) List(ctx context.Context, limit int) ([]domain.ScheduleHeader, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	headers, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveSchedule, err)
	}
	return headers, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrScheduleNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToDeleteSchedule, err)
	}
	return nil
}

// AmortizeBatch summarizes independent loans concurrently. Results keep the
// order of loans; the first failure cancels the remaining runs.
func (s *ScheduleService) AmortizeBatch(
	ctx context.Context,
	loans []domain.LoanParameters,
) ([]domain.LoanSummary, error) {

	if len(loans) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"loans": "at least one loan is required"}}
	}
	if len(loans) > MaxBatchLoans {
		return nil, fmt.Errorf("%w: %d loans, maximum is %d", apperrors.ErrTooManyLoans, len(loans), MaxBatchLoans)
	}

	results := make([]domain.LoanSummary, len(loans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, params := range loans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summary, err := s.Summarize(gctx, params)
			if err != nil {
				return fmt.Errorf("loan %d: %w", i, err)
			}
			results[i] = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Purge deletes stored schedules older than maxAge.
func (s *ScheduleService) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge)

	removed, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperrors.ErrFailedToDeleteSchedule, err)
	}
	s.metrics.Purged.Add(float64(removed))
	return removed, nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidID, id)
	}
	return nil
}

func cacheKey(p domain.LoanParameters) string {
	return "schedule:" +
		strconv.FormatFloat(p.Principal, 'g', -1, 64) + ":" +
		strconv.FormatFloat(p.AnnualRate, 'g', -1, 64) + ":" +
		strconv.Itoa(p.PeriodsPerYear) + ":" +
		strconv.FormatFloat(p.TermYears, 'g', -1, 64)
}
