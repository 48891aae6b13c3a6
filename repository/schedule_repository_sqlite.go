package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"loan-amortizer/apperrors"
	"loan-amortizer/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

var _ ScheduleRepository = (*SQLiteScheduleRepository)(nil)

// SQLiteScheduleRepository stores schedules in SQLite: one row per schedule in
// schedules and one row per period in payment_records.
type SQLiteScheduleRepository struct {
	db *sql.DB
}

// NewSQLiteScheduleRepository opens the database at dbPath, creating parent
// directories as needed, and applies pending migrations.
func NewSQLiteScheduleRepository(ctx context.Context, dbPath string) (*SQLiteScheduleRepository, error) {
	if dbPath != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer, and an in-memory database only lives on its connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteScheduleRepository{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *SQLiteScheduleRepository) Close() error {
	return r.db.Close()
}

// Ping reports whether the database is reachable.
func (r *SQLiteScheduleRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Save inserts the schedule and its payment table in one transaction.
func (r *SQLiteScheduleRepository) Save(ctx context.Context, schedule *domain.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.New().String()
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p := schedule.Parameters
	s := schedule.Summary
	_, err = tx.ExecContext(ctx, `
		INSERT INTO schedules (
			id, created_at, principal, annual_rate, periods_per_year, term_years,
			periodic_payment, summary_principal, total_paid, interest_paid
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		schedule.ID, schedule.CreatedAt.UnixNano(), p.Principal, p.AnnualRate, p.PeriodsPerYear, p.TermYears,
		s.PeriodicPayment, s.Principal, s.TotalPaid, s.InterestPaid,
	)
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO payment_records (
			schedule_id, payment_number, start_balance, end_balance, payment_principal,
			payment_interest, accumulated_interest, amount_paid_to_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare payment record insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range s.PaymentTable {
		_, err := stmt.ExecContext(ctx,
			schedule.ID, rec.PaymentNumber, rec.StartBalance, rec.EndBalance, rec.PaymentPrincipal,
			rec.PaymentInterest, rec.AccumulatedInterest, rec.AmountPaidToDate,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment record %d: %w", rec.PaymentNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule: %w", err)
	}
	return nil
}

func (r *SQLiteScheduleRepository) Get(ctx context.Context, id string) (domain.Schedule, error) {
	var (
		s         domain.Schedule
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, principal, annual_rate, periods_per_year, term_years,
		       periodic_payment, summary_principal, total_paid, interest_paid
		FROM schedules
		WHERE id = ?`, id,
	).Scan(
		&s.ID, &createdAt,
		&s.Parameters.Principal, &s.Parameters.AnnualRate, &s.Parameters.PeriodsPerYear, &s.Parameters.TermYears,
		&s.Summary.PeriodicPayment, &s.Summary.Principal, &s.Summary.TotalPaid, &s.Summary.InterestPaid,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Schedule{}, apperrors.ErrScheduleNotFound
	}
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("failed to query schedule: %w", err)
	}
	s.CreatedAt = time.Unix(0, createdAt).UTC()

	rows, err := r.db.QueryContext(ctx, `
		SELECT payment_number, start_balance, end_balance, payment_principal,
		       payment_interest, accumulated_interest, amount_paid_to_date
		FROM payment_records
		WHERE schedule_id = ?
		ORDER BY payment_number`, id)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("failed to query payment records: %w", err)
	}
	defer rows.Close()

	table := domain.PaymentTable{}
	for rows.Next() {
		var rec domain.PaymentRecord
		if err := rows.Scan(
			&rec.PaymentNumber, &rec.StartBalance, &rec.EndBalance, &rec.PaymentPrincipal,
			&rec.PaymentInterest, &rec.AccumulatedInterest, &rec.AmountPaidToDate,
		); err != nil {
			return domain.Schedule{}, fmt.Errorf("failed to scan payment record: %w", err)
		}
		table = append(table, rec)
	}
	if err := rows.Err(); err != nil {
		return domain.Schedule{}, fmt.Errorf("error iterating payment records: %w", err)
	}
	s.Summary.PaymentTable = table

	return s, nil
}

func (r *SQLiteScheduleRepository) List(ctx context.Context, limit int) ([]domain.ScheduleHeader, error) {
	query := `
		SELECT s.id, s.created_at, s.principal, s.annual_rate, s.periods_per_year, s.term_years,
		       s.periodic_payment, s.total_paid, s.interest_paid,
		       (SELECT COUNT(*) FROM payment_records p WHERE p.schedule_id = s.id)
		FROM schedules s
		ORDER BY s.created_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	headers := []domain.ScheduleHeader{}
	for rows.Next() {
		var (
			h         domain.ScheduleHeader
			createdAt int64
		)
		if err := rows.Scan(
			&h.ID, &createdAt,
			&h.Parameters.Principal, &h.Parameters.AnnualRate, &h.Parameters.PeriodsPerYear, &h.Parameters.TermYears,
			&h.PeriodicPayment, &h.TotalPaid, &h.InterestPaid, &h.Periods,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		h.CreatedAt = time.Unix(0, createdAt).UTC()
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return headers, nil
}

func (r *SQLiteScheduleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM payment_records WHERE schedule_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete payment records: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperrors.ErrScheduleNotFound
	}

	return tx.Commit()
}

func (r *SQLiteScheduleRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	before := cutoff.UnixNano()
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM payment_records
		WHERE schedule_id IN (SELECT id FROM schedules WHERE created_at < ?)`, before); err != nil {
		return 0, fmt.Errorf("failed to purge payment records: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM schedules WHERE created_at < ?", before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge schedules: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit purge: %w", err)
	}
	return n, nil
}
