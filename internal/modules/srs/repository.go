package srs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/database"
	"github.com/aristath/rfitrainer/internal/domain"
)

// Repository persists repetition records keyed by Key(position, hand).
// Upsert is last-write-wins per key.
type Repository interface {
	Get(ctx context.Context, id string) (*Record, error)
	Upsert(ctx context.Context, rec Record) error
	DueBefore(ctx context.Context, atMs int64) ([]Record, error)
	All(ctx context.Context) ([]Record, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
	ReplaceAll(ctx context.Context, records []Record) error
}

// SQLiteRepository stores records in progress.db (srs_items table).
type SQLiteRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteRepository creates a repository over the progress database connection.
func NewSQLiteRepository(db *sql.DB, log zerolog.Logger) *SQLiteRepository {
	return &SQLiteRepository{
		db:  db,
		log: log.With().Str("repository", "srs").Logger(),
	}
}

const recordColumns = "id, position, hand, streak, interval_ms, next_review_at, easiness_factor"

const upsertRecord = `
	INSERT INTO srs_items (` + recordColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		streak = excluded.streak,
		interval_ms = excluded.interval_ms,
		next_review_at = excluded.next_review_at,
		easiness_factor = excluded.easiness_factor
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, rec Record) error {
	_, err := db.ExecContext(ctx, upsertRecord,
		rec.ID, string(rec.Position), rec.Hand, rec.Streak, rec.IntervalMs, rec.NextReviewAt, rec.EasinessFactor)
	return err
}

// Get returns the record with id, or nil if it does not exist.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM srs_items WHERE id = ?", id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get srs item %s: %w", id, err)
	}
	return &rec, nil
}

// Upsert inserts or replaces the record.
func (r *SQLiteRepository) Upsert(ctx context.Context, rec Record) error {
	if err := upsert(ctx, r.db, rec); err != nil {
		return fmt.Errorf("failed to upsert srs item %s: %w", rec.ID, err)
	}
	return nil
}

// DueBefore returns every record with next_review_at <= atMs.
func (r *SQLiteRepository) DueBefore(ctx context.Context, atMs int64) ([]Record, error) {
	return r.query(ctx, "SELECT "+recordColumns+" FROM srs_items WHERE next_review_at <= ? ORDER BY next_review_at", atMs)
}

// All returns every record.
func (r *SQLiteRepository) All(ctx context.Context) ([]Record, error) {
	return r.query(ctx, "SELECT "+recordColumns+" FROM srs_items ORDER BY id")
}

// Count returns the number of tracked records.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM srs_items").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count srs items: %w", err)
	}
	return n, nil
}

// DeleteAll removes every record. This is the bulk reset path.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM srs_items"); err != nil {
		return fmt.Errorf("failed to clear srs items: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole queue for records in one transaction (backup restore).
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []Record) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM srs_items"); err != nil {
			return fmt.Errorf("failed to clear srs items: %w", err)
		}
		for _, rec := range records {
			if err := upsert(ctx, tx, rec); err != nil {
				return fmt.Errorf("failed to restore srs item %s: %w", rec.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...interface{}) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query srs items: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan srs item row")
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating srs items: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (Record, error) {
	var rec Record
	var position string
	err := s.Scan(&rec.ID, &position, &rec.Hand, &rec.Streak, &rec.IntervalMs, &rec.NextReviewAt, &rec.EasinessFactor)
	rec.Position = domain.Position(position)
	return rec, err
}
