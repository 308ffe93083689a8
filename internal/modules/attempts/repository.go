package attempts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/database"
	"github.com/aristath/rfitrainer/internal/domain"
)

// Repository stores attempts in ledger.db. Rows are only ever inserted,
// except by a bulk reset or a backup restore.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a Repository over the ledger database.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "attempts").Logger(),
	}
}

const attemptColumns = "id, timestamp, position, hand, user_action, is_correct, boundary_score"

// Append inserts a.
func (r *Repository) Append(ctx context.Context, a Attempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attempts (`+attemptColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Timestamp, string(a.Position), a.Hand, string(a.UserAction), boolToInt(a.IsCorrect), a.BoundaryScore)
	if err != nil {
		return fmt.Errorf("failed to append attempt %s: %w", a.ID, err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first. A non-positive limit
// means DefaultHistoryLimit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+attemptColumns+" FROM attempts ORDER BY timestamp DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent attempts: %w", err)
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// All returns every attempt in chronological order.
func (r *Repository) All(ctx context.Context) ([]Attempt, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+attemptColumns+" FROM attempts ORDER BY timestamp ASC, rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// Count returns the number of stored attempts.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attempts").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return n, nil
}

// DeleteAll removes every attempt and returns how many were removed.
func (r *Repository) DeleteAll(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM attempts")
	if err != nil {
		return 0, fmt.Errorf("failed to delete attempts: %w", err)
	}
	n, _ := res.RowsAffected()
	r.log.Info().Int64("deleted", n).Msg("Attempt log cleared")
	return int(n), nil
}

// ReplaceAll swaps the whole log for list in one transaction.
func (r *Repository) ReplaceAll(ctx context.Context, list []Attempt) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM attempts"); err != nil {
			return fmt.Errorf("failed to clear attempts: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO attempts ("+attemptColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare attempt insert: %w", err)
		}
		defer stmt.Close()

		for _, a := range list {
			if _, err := stmt.ExecContext(ctx, a.ID, a.Timestamp, string(a.Position), a.Hand,
				string(a.UserAction), boolToInt(a.IsCorrect), a.BoundaryScore); err != nil {
				return fmt.Errorf("failed to insert attempt %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) scanRows(rows *sql.Rows) ([]Attempt, error) {
	var out []Attempt
	for rows.Next() {
		var (
			a          Attempt
			position   string
			userAction string
			isCorrect  int
		)
		if err := rows.Scan(&a.ID, &a.Timestamp, &position, &a.Hand, &userAction, &isCorrect, &a.BoundaryScore); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		a.Position = domain.Position(position)
		a.UserAction = domain.Action(userAction)
		a.IsCorrect = isCorrect != 0
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempts: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
