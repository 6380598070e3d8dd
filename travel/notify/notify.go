// Package notify delivers finalized travel plans to the Breathe Bhutan team.
// Two transports exist, email and webhook; the chain tries them in order and
// succeeds as soon as one accepts the plan.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/breathebhutan/tashi/travel/finalize"

	"github.com/breathebhutan/tashi/core/logger"
	"log/slog"
)

// Notifier delivers one finalized plan to the business.
type Notifier interface {
	// Name identifies the transport in logs.
	Name() string
	Notify(ctx context.Context, plan finalize.FinalizedPlan) error
}

// Chain tries each transport in order and stops at the first success.
// Earlier failures are logged, not returned; the chain fails only when every
// transport fails (or none is configured).
type Chain struct {
	transports []Notifier
}

// NewChain builds a chain over the given transports, skipping nils.
func NewChain(transports ...Notifier) *Chain {
	c := &Chain{}
	for _, t := range transports {
		if t != nil {
			c.transports = append(c.transports, t)
		}
	}
	return c
}

// Name implements Notifier.
func (c *Chain) Name() string { return "chain" }

// Len reports how many transports are configured.
func (c *Chain) Len() int { return len(c.transports) }

// Notify implements Notifier with any-success semantics.
func (c *Chain) Notify(ctx context.Context, plan finalize.FinalizedPlan) error {
	if len(c.transports) == 0 {
		return errors.New("no notification transport configured")
	}

	var errs []error
	for _, t := range c.transports {
		start := time.Now()
		err := t.Notify(ctx, plan)
		if err == nil {
			logger.Info(ctx, "travel.notify", "delivered",
				slog.String("notifier", t.Name()),
				slog.String("ref_id", plan.RefID),
				slog.Duration("duration", logger.RoundMS(time.Since(start))),
			)
			return nil
		}
		logger.Warn(ctx, "travel.notify", "transport.failed",
			slog.String("notifier", t.Name()),
			slog.String("ref_id", plan.RefID),
			slog.String("err", err.Error()),
		)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
