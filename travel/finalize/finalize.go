// Package finalize turns a confirmed planning session into an immutable
// finalized plan, records it as an inquiry, and hands it to the business
// notifier. Delivery is attempted at most once; the inquiry row is the
// durable record for manual follow-up when delivery fails.
package finalize

import (
	"context"
	"fmt"
	"time"

	"github.com/breathebhutan/tashi/core/logger"
	"github.com/breathebhutan/tashi/travel/planner"
	"github.com/google/uuid"
	"log/slog"
)

// Delivery status of an inquiry row.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// User identifies the traveller behind a plan.
type User struct {
	ID       int64
	Username string
	FullName string
}

// FinalizedPlan is the immutable snapshot handed to the notifier and stored
// as an inquiry.
type FinalizedPlan struct {
	RefID           string    `json:"ref_id"`
	UserID          int64     `json:"user_id"`
	Username        string    `json:"username,omitempty"`
	FullName        string    `json:"full_name,omitempty"`
	Duration        string    `json:"duration"`
	Interests       []string  `json:"interests"`
	Budget          string    `json:"budget"`
	Recommendations []string  `json:"recommendations,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Notifier delivers the plan to the business. Satisfied by notify.Chain and
// the individual transports.
type Notifier interface {
	Notify(ctx context.Context, plan FinalizedPlan) error
}

// InquiryStore persists finalized plans for manual follow-up.
type InquiryStore interface {
	Save(ctx context.Context, plan FinalizedPlan) error
	MarkStatus(ctx context.Context, refID, status string) error
}

// codedError carries a stable machine code for logs.
type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }

// Code returns the machine-readable error code.
func (e *codedError) Code() string { return e.code }

// ErrNotificationFailed reports that the plan was finalized locally but
// could not be delivered to the business.
var ErrNotificationFailed = &codedError{code: "notification_failed", msg: "business notification failed"}

// Finalizer snapshots confirmed sessions and triggers delivery.
type Finalizer struct {
	inquiries InquiryStore
	notifier  Notifier
}

// New creates a Finalizer. Both collaborators may be nil in tests; a nil
// inquiry store skips persistence, a nil notifier always fails delivery.
func New(inquiries InquiryStore, notifier Notifier) *Finalizer {
	return &Finalizer{inquiries: inquiries, notifier: notifier}
}

// Finalize snapshots the confirmed session, saves the inquiry, and attempts
// delivery once. The returned plan is valid in every outcome; the error is
// ErrNotificationFailed when delivery did not succeed. The caller has already
// destroyed the session by confirming it.
func (f *Finalizer) Finalize(ctx context.Context, sess planner.Session, user User, recommendations []string) (FinalizedPlan, error) {
	plan := FinalizedPlan{
		RefID:           uuid.NewString(),
		UserID:          user.ID,
		Username:        user.Username,
		FullName:        user.FullName,
		Duration:        sess.Plan.Duration,
		Interests:       append([]string(nil), sess.Plan.Interests...),
		Budget:          sess.Plan.Budget,
		Recommendations: append([]string(nil), recommendations...),
		CreatedAt:       time.Now().UTC(),
	}

	if f.inquiries != nil {
		if err := f.inquiries.Save(ctx, plan); err != nil {
			logger.Error(ctx, "travel.inquiry", "save.failed",
				slog.String("ref_id", plan.RefID),
				slog.String("err", err.Error()),
			)
		}
	}

	if err := f.notify(ctx, plan); err != nil {
		f.markStatus(ctx, plan.RefID, StatusFailed)
		logger.Warn(ctx, "travel.notify", "plan.undelivered",
			slog.String("ref_id", plan.RefID),
			slog.Int64("user_id", plan.UserID),
			slog.String("err", err.Error()),
		)
		return plan, fmt.Errorf("deliver plan %s: %w: %w", plan.RefID, ErrNotificationFailed, err)
	}

	f.markStatus(ctx, plan.RefID, StatusSent)
	logger.Info(ctx, "travel.notify", "plan.delivered",
		slog.String("ref_id", plan.RefID),
		slog.Int64("user_id", plan.UserID),
	)
	return plan, nil
}

func (f *Finalizer) notify(ctx context.Context, plan FinalizedPlan) error {
	if f.notifier == nil {
		return fmt.Errorf("no notifier configured")
	}
	return f.notifier.Notify(ctx, plan)
}

func (f *Finalizer) markStatus(ctx context.Context, refID, status string) {
	if f.inquiries == nil {
		return
	}
	if err := f.inquiries.MarkStatus(ctx, refID, status); err != nil {
		logger.Error(ctx, "travel.inquiry", "status.failed",
			slog.String("ref_id", refID),
			slog.String("status", status),
			slog.String("err", err.Error()),
		)
	}
}
