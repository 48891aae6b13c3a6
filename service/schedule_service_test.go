package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"loan-amortizer/apperrors"
	"loan-amortizer/domain"
	"loan-amortizer/metrics"
	"loan-amortizer/repository"
)

type MockScheduleRepository struct {
	mu         sync.Mutex
	SaveCalled bool
	ForceError bool
	Saved      map[string]domain.Schedule
	PurgedOn   time.Time
}

func (m *MockScheduleRepository) Save(_ context.Context, schedule *domain.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalled = true
	if m.ForceError {
		return errors.New("save error")
	}
	if m.Saved == nil {
		m.Saved = make(map[string]domain.Schedule)
	}
	schedule.ID = uuid.New().String()
	schedule.CreatedAt = time.Now().UTC()
	m.Saved[schedule.ID] = *schedule
	return nil
}

func (m *MockScheduleRepository) Get(_ context.Context, id string) (domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ForceError {
		return domain.Schedule{}, errors.New("get error")
	}
	s, ok := m.Saved[id]
	if !ok {
		return domain.Schedule{}, apperrors.ErrScheduleNotFound
	}
	return s, nil
}

func (m *MockScheduleRepository) List(_ context.Context, limit int) ([]domain.ScheduleHeader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	headers := make([]domain.ScheduleHeader, 0, limit)
	for _, s := range m.Saved {
		if len(headers) == limit {
			break
		}
		headers = append(headers, domain.ScheduleHeader{ID: s.ID})
	}
	return headers, nil
}

func (m *MockScheduleRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Saved[id]; !ok {
		return apperrors.ErrScheduleNotFound
	}
	delete(m.Saved, id)
	return nil
}

func (m *MockScheduleRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PurgedOn = cutoff
	return 3, nil
}

var demoLoan = domain.LoanParameters{
	Principal:      27200,
	AnnualRate:     0.036,
	PeriodsPerYear: 12,
	TermYears:      5,
}

func newTestService(repo repository.ScheduleRepository) (*ScheduleService, *metrics.Metrics) {
	m := metrics.New()
	return NewScheduleService(repo, repository.NewMemoryCache(), WithMetrics(m)), m
}

func TestSummarize_NonTerminatingCountsAsDiverged(t *testing.T) {

	service, m := newTestService(&MockScheduleRepository{})
	service.amortize = func(domain.LoanParameters) (domain.LoanSummary, error) {
		return domain.LoanSummary{}, fmt.Errorf("%w: balance 10.00 left after 72 periods", apperrors.ErrNonTerminating)
	}

	_, err := service.Summarize(context.Background(), demoLoan)

	if !errors.Is(err, apperrors.ErrNonTerminating) {
		t.Fatalf("expected ErrNonTerminating, got %v", err)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeDiverged)); got != 1 {
		t.Errorf("expected 1 diverged run, got %v", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeFailed)); got != 0 {
		t.Errorf("expected no failed runs, got %v", got)
	}
}

func TestAmortize_PersistsSchedule(t *testing.T) {

	mockRepo := &MockScheduleRepository{}
	service, _ := newTestService(mockRepo)

	schedule, err := service.Amortize(context.Background(), demoLoan, true)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mockRepo.SaveCalled {
		t.Errorf("expected repository Save to be called")
	}
	if schedule.ID == "" {
		t.Errorf("expected an ID to be assigned")
	}
	if schedule.Summary.PeriodicPayment != 496.04 {
		t.Errorf("expected payment 496.04, got %.2f", schedule.Summary.PeriodicPayment)
	}
	if len(schedule.Summary.PaymentTable) != 60 {
		t.Errorf("expected 60 records, got %d", len(schedule.Summary.PaymentTable))
	}
}

func TestAmortize_WithoutPersist(t *testing.T) {

	mockRepo := &MockScheduleRepository{}
	service, _ := newTestService(mockRepo)

	schedule, err := service.Amortize(context.Background(), demoLoan, false)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mockRepo.SaveCalled {
		t.Errorf("repository Save should NOT be called")
	}
	if schedule.ID != "" {
		t.Errorf("expected no ID, got %q", schedule.ID)
	}
}

func TestAmortize_SaveFailureIsNotCritical(t *testing.T) {

	mockRepo := &MockScheduleRepository{ForceError: true}
	service, _ := newTestService(mockRepo)

	schedule, err := service.Amortize(context.Background(), demoLoan, true)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schedule.ID != "" || !schedule.CreatedAt.IsZero() {
		t.Errorf("expected an unsaved schedule, got id %q", schedule.ID)
	}
	if schedule.Summary.TotalPaid != 29762.07 {
		t.Errorf("expected total 29762.07, got %.2f", schedule.Summary.TotalPaid)
	}
}

func TestAmortize_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		params domain.LoanParameters
		field  string
	}{
		{"zero principal", domain.LoanParameters{Principal: 0, AnnualRate: 0.05, PeriodsPerYear: 12, TermYears: 1}, "principal"},
		{"principal over limit", domain.LoanParameters{Principal: 2e9, AnnualRate: 0.05, PeriodsPerYear: 12, TermYears: 1}, "principal"},
		{"zero rate", domain.LoanParameters{Principal: 1000, AnnualRate: 0, PeriodsPerYear: 12, TermYears: 1}, "annualRate"},
		{"NaN rate", domain.LoanParameters{Principal: 1000, AnnualRate: math.NaN(), PeriodsPerYear: 12, TermYears: 1}, "annualRate"},
		{"zero periods", domain.LoanParameters{Principal: 1000, AnnualRate: 0.05, PeriodsPerYear: 0, TermYears: 1}, "periodsPerYear"},
		{"daily compounding over limit", domain.LoanParameters{Principal: 1000, AnnualRate: 0.05, PeriodsPerYear: 366, TermYears: 1}, "periodsPerYear"},
		{"term over limit", domain.LoanParameters{Principal: 1000, AnnualRate: 0.05, PeriodsPerYear: 12, TermYears: 51}, "termYears"},
		{"fractional periods", domain.LoanParameters{Principal: 1000, AnnualRate: 0.05, PeriodsPerYear: 12, TermYears: 1.3}, "termYears"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockScheduleRepository{}
			service, m := newTestService(mockRepo)

			_, err := service.Amortize(context.Background(), tt.params, true)

			if !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected field %q in %v", tt.field, verr.Fields)
			}
			if mockRepo.SaveCalled {
				t.Errorf("repository Save should NOT be called")
			}
			if got := testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeInvalid)); got != 1 {
				t.Errorf("expected 1 invalid run, got %v", got)
			}
		})
	}
}

func TestSummarize_UsesCache(t *testing.T) {

	service, m := newTestService(&MockScheduleRepository{})
	ctx := context.Background()

	first, err := service.Summarize(ctx, demoLoan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := service.Summarize(ctx, demoLoan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.TotalPaid != second.TotalPaid || len(first.PaymentTable) != len(second.PaymentTable) {
		t.Errorf("cached summary differs from computed one")
	}
	if got := testutil.ToFloat64(m.CacheHits); got != 1 {
		t.Errorf("expected 1 cache hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheMisses); got != 1 {
		t.Errorf("expected 1 cache miss, got %v", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeOK)); got != 1 {
		t.Errorf("expected 1 computed run, got %v", got)
	}
}

func TestSummarize_IgnoresCorruptCacheEntry(t *testing.T) {

	cache := repository.NewMemoryCache()
	service := NewScheduleService(&MockScheduleRepository{}, cache, WithMetrics(metrics.New()))
	ctx := context.Background()

	if err := cache.Set(ctx, cacheKey(demoLoan), "{not json", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := service.Summarize(ctx, demoLoan)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.InterestPaid != 2562.07 {
		t.Errorf("expected interest 2562.07, got %.2f", summary.InterestPaid)
	}
}

func TestGetAndDelete(t *testing.T) {

	mockRepo := &MockScheduleRepository{}
	service, _ := newTestService(mockRepo)
	ctx := context.Background()

	created, err := service.Amortize(ctx, demoLoan, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := service.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected %s, got %s", created.ID, got.ID)
	}

	if err := service.Delete(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Get(ctx, created.ID); !errors.Is(err, apperrors.ErrScheduleNotFound) {
		t.Errorf("expected ErrScheduleNotFound, got %v", err)
	}
	if err := service.Delete(ctx, created.ID); !errors.Is(err, apperrors.ErrScheduleNotFound) {
		t.Errorf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestGet_InvalidID(t *testing.T) {

	service, _ := newTestService(&MockScheduleRepository{})

	if _, err := service.Get(context.Background(), "not-a-uuid"); !errors.Is(err, apperrors.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if err := service.Delete(context.Background(), "42"); !errors.Is(err, apperrors.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestGet_RepositoryFailure(t *testing.T) {

	service, _ := newTestService(&MockScheduleRepository{ForceError: true})

	_, err := service.Get(context.Background(), uuid.New().String())

	if !errors.Is(err, apperrors.ErrFailedToRetrieveSchedule) {
		t.Errorf("expected ErrFailedToRetrieveSchedule, got %v", err)
	}
}

func TestList_ClampsLimit(t *testing.T) {

	mockRepo := &MockScheduleRepository{}
	service, _ := newTestService(mockRepo)
	ctx := context.Background()

	for range 3 {
		if _, err := service.Amortize(ctx, demoLoan, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, 3},
		{-5, 3},
		{2, 2},
		{1000, 3},
	}
	for _, tt := range tests {
		headers, err := service.List(ctx, tt.limit)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(headers) != tt.want {
			t.Errorf("limit %d: expected %d headers, got %d", tt.limit, tt.want, len(headers))
		}
	}
}

func TestAmortizeBatch_KeepsOrder(t *testing.T) {

	service, _ := newTestService(&MockScheduleRepository{})

	loans := []domain.LoanParameters{
		demoLoan,
		{Principal: 10000, AnnualRate: 0.1, PeriodsPerYear: 12, TermYears: 1},
		{Principal: 1000, AnnualRate: 0.05, PeriodsPerYear: 1, TermYears: 1},
		{Principal: 100000, AnnualRate: 0.065, PeriodsPerYear: 12, TermYears: 30},
	}
	want := []float64{496.04, 879.16, 1050, 632.07}

	summaries, err := service.AmortizeBatch(context.Background(), loans)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != len(loans) {
		t.Fatalf("expected %d summaries, got %d", len(loans), len(summaries))
	}
	for i, s := range summaries {
		if s.PeriodicPayment != want[i] {
			t.Errorf("loan %d: expected payment %.2f, got %.2f", i, want[i], s.PeriodicPayment)
		}
	}
}

func TestAmortizeBatch_Errors(t *testing.T) {

	service, _ := newTestService(&MockScheduleRepository{})
	ctx := context.Background()

	if _, err := service.AmortizeBatch(ctx, nil); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for an empty batch, got %v", err)
	}

	tooMany := make([]domain.LoanParameters, MaxBatchLoans+1)
	for i := range tooMany {
		tooMany[i] = demoLoan
	}
	if _, err := service.AmortizeBatch(ctx, tooMany); !errors.Is(err, apperrors.ErrTooManyLoans) {
		t.Errorf("expected ErrTooManyLoans, got %v", err)
	}

	withInvalid := []domain.LoanParameters{demoLoan, {Principal: -1, AnnualRate: 0.05, PeriodsPerYear: 12, TermYears: 1}}
	_, err := service.AmortizeBatch(ctx, withInvalid)
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if got := err.Error(); got[:6] != "loan 1" {
		t.Errorf("expected error to name loan 1, got %q", got)
	}
}

func TestPurge(t *testing.T) {

	mockRepo := &MockScheduleRepository{}
	service, m := newTestService(mockRepo)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	removed, err := service.Purge(context.Background(), 48*time.Hour)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}
	if want := now.Add(-48 * time.Hour); !mockRepo.PurgedOn.Equal(want) {
		t.Errorf("expected cutoff %v, got %v", want, mockRepo.PurgedOn)
	}
	if got := testutil.ToFloat64(m.Purged); got != 3 {
		t.Errorf("expected purged counter 3, got %v", got)
	}
}
