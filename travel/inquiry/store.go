// Package inquiry persists finalized travel plans so the team can follow up
// on every confirmed dialogue, delivered or not.
package inquiry

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/breathebhutan/tashi/core/logger"
	"github.com/breathebhutan/tashi/travel/finalize"
	"log/slog"
)

// Inquiry is one row of travel_inquiries.
type Inquiry struct {
	ID              int64          `db:"id"`
	RefID           string         `db:"ref_id"`
	UserID          int64          `db:"user_id"`
	Username        string         `db:"username"`
	FullName        string         `db:"full_name"`
	Duration        string         `db:"duration"`
	Interests       pq.StringArray `db:"interests"`
	Budget          string         `db:"budget"`
	Recommendations pq.StringArray `db:"recommendations"`
	Status          string         `db:"status"`
	CreatedAt       time.Time      `db:"created_at"`
}

// Store reads and writes travel inquiries. It satisfies finalize.InquiryStore.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a Store over the connected database.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Save inserts the plan as a pending inquiry.
func (s *Store) Save(ctx context.Context, plan finalize.FinalizedPlan) error {
	const q = `
		INSERT INTO travel_inquiries
			(ref_id, user_id, username, full_name, duration, interests,
			 recommendations, budget, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	start := time.Now()
	_, err := s.db.ExecContext(ctx, q,
		plan.RefID, plan.UserID, plan.Username, plan.FullName,
		plan.Duration, pq.StringArray(plan.Interests),
		pq.StringArray(plan.Recommendations), plan.Budget,
		finalize.StatusPending, plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inquiry %s: %w", plan.RefID, err)
	}
	logger.Debug(ctx, "travel.inquiry", "saved",
		slog.String("ref_id", plan.RefID),
		slog.Int64("user_id", plan.UserID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// MarkStatus updates the delivery status of an inquiry.
func (s *Store) MarkStatus(ctx context.Context, refID, status string) error {
	const q = `UPDATE travel_inquiries SET status = $1 WHERE ref_id = $2`
	res, err := s.db.ExecContext(ctx, q, status, refID)
	if err != nil {
		return fmt.Errorf("mark inquiry %s %s: %w", refID, status, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mark inquiry %s: no such ref", refID)
	}
	return nil
}

// Recent returns the newest inquiries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Inquiry, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
		SELECT id, ref_id, user_id, username, full_name, duration, interests,
		       recommendations, budget, status, created_at
		FROM travel_inquiries
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	var out []Inquiry
	if err := s.db.SelectContext(ctx, &out, q, limit); err != nil {
		return nil, fmt.Errorf("select recent inquiries: %w", err)
	}
	return out, nil
}
