package planner

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/breathebhutan/tashi/core/logger"
	"github.com/elliotchance/pie/v2"
	"github.com/patrickmn/go-cache"
	"log/slog"
)

// DefaultSessionTTL evicts sessions idle longer than this unless configured.
const DefaultSessionTTL = 30 * time.Minute

// Planner owns all active planning sessions. Every step runs under a per-user
// try-lock, so two updates for the same user never mutate one session
// concurrently; the loser gets ErrSessionBusy. Sessions idle longer than the
// TTL are evicted by the session cache.
type Planner struct {
	sessions *cache.Cache
	locks    sync.Map // user ID -> *sync.Mutex, grow-only
	ttl      time.Duration
}

// New creates a Planner with the given idle TTL. A non-positive TTL selects
// the default.
func New(ttl time.Duration) *Planner {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Planner{
		sessions: cache.New(ttl, ttl/2),
		ttl:      ttl,
	}
}

func sessionKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Session returns a snapshot of the user's active session.
func (p *Planner) Session(userID int64) (Session, bool) {
	v, ok := p.sessions.Get(sessionKey(userID))
	if !ok {
		return Session{}, false
	}
	return v.(Session).snapshot(), true
}

// Stage reports the user's current dialogue stage. It satisfies the dialog
// router's StageSource contract; idle users report no stage.
func (p *Planner) Stage(userID int64) (string, bool) {
	s, ok := p.Session(userID)
	if !ok {
		return "", false
	}
	return string(s.Stage), true
}

// Start opens a planning session at the duration stage. If the user already
// has a session the existing one is returned unchanged with resumed=true so
// the caller can re-prompt the current stage instead of resetting answers.
func (p *Planner) Start(ctx context.Context, userID int64) (Session, bool, error) {
	var (
		out     Session
		resumed bool
	)
	err := p.step(userID, func() error {
		if cur, ok := p.get(userID); ok {
			out = cur.snapshot()
			resumed = true
			return nil
		}
		now := time.Now()
		s := Session{
			UserID:    userID,
			Stage:     StageChoosingDuration,
			StartedAt: now,
			UpdatedAt: now,
		}
		p.put(s)
		out = s.snapshot()
		logger.Info(ctx, "travel.plan", "session.start",
			slog.Int64("user_id", userID),
		)
		return nil
	})
	return out, resumed, err
}

// Cancel destroys the user's session from any stage. It runs under the same
// per-user lock as every other step so a delete cannot interleave with a
// concurrent advance's read-modify-write. It reports whether a session
// existed.
func (p *Planner) Cancel(ctx context.Context, userID int64) (bool, error) {
	var existed bool
	err := p.step(userID, func() error {
		_, existed = p.get(userID)
		p.sessions.Delete(sessionKey(userID))
		if existed {
			logger.Info(ctx, "travel.plan", "session.cancel",
				slog.Int64("user_id", userID),
			)
		}
		return nil
	})
	return existed, err
}

// Restart clears the draft plan and returns the session to the duration
// stage. Unlike Cancel the session survives.
func (p *Planner) Restart(ctx context.Context, userID int64) (Session, error) {
	var out Session
	err := p.step(userID, func() error {
		s, ok := p.get(userID)
		if !ok {
			return ErrNoSession
		}
		s.Plan = DraftPlan{}
		s.Stage = StageChoosingDuration
		s.UpdatedAt = time.Now()
		p.put(s)
		out = s.snapshot()
		logger.Info(ctx, "travel.plan", "session.restart",
			slog.Int64("user_id", userID),
		)
		return nil
	})
	return out, err
}

// ChooseDuration stores the duration bucket and advances to the interests
// stage. Values outside the bucket enumeration are ErrInvalidChoice.
func (p *Planner) ChooseDuration(ctx context.Context, userID int64, bucket string) (Session, error) {
	return p.advance(ctx, userID, StageChoosingDuration, func(s *Session) error {
		if !ValidDuration(bucket) {
			return ErrInvalidChoice
		}
		s.Plan.Duration = bucket
		s.Stage = StageChoosingInterests
		return nil
	})
}

// AddInterests records interest tags without leaving the interests stage.
// Adding a tag the plan already holds is idempotent; a call with no valid
// canonical tag is ErrInvalidChoice.
func (p *Planner) AddInterests(ctx context.Context, userID int64, tags ...string) (Session, error) {
	return p.advance(ctx, userID, StageChoosingInterests, func(s *Session) error {
		added := 0
		for _, tag := range tags {
			if !ValidInterest(tag) {
				continue
			}
			if !pie.Contains(s.Plan.Interests, tag) {
				s.Plan.Interests = append(s.Plan.Interests, tag)
			}
			added++
		}
		if added == 0 {
			return ErrInvalidChoice
		}
		return nil
	})
}

// FinishInterests closes the interest stage and advances to budget. Finishing
// with an empty set is ErrInvalidChoice.
func (p *Planner) FinishInterests(ctx context.Context, userID int64) (Session, error) {
	return p.advance(ctx, userID, StageChoosingInterests, func(s *Session) error {
		if len(s.Plan.Interests) == 0 {
			return ErrInvalidChoice
		}
		s.Stage = StageChoosingBudget
		return nil
	})
}

// ChooseBudget stores the budget bucket and advances to confirmation.
func (p *Planner) ChooseBudget(ctx context.Context, userID int64, bucket string) (Session, error) {
	return p.advance(ctx, userID, StageChoosingBudget, func(s *Session) error {
		if !ValidBudget(bucket) {
			return ErrInvalidChoice
		}
		s.Plan.Budget = bucket
		s.Stage = StageConfirming
		return nil
	})
}

// Confirm completes the dialogue. The session is destroyed and its final
// snapshot returned; the caller hands the snapshot to the finalizer. A
// confirm outside the confirming stage is ErrInvalidChoice.
func (p *Planner) Confirm(ctx context.Context, userID int64) (Session, error) {
	var out Session
	err := p.step(userID, func() error {
		s, ok := p.get(userID)
		if !ok {
			return ErrNoSession
		}
		if s.Stage != StageConfirming {
			return ErrInvalidChoice
		}
		s.UpdatedAt = time.Now()
		out = s.snapshot()
		p.sessions.Delete(sessionKey(userID))
		logger.Info(ctx, "travel.plan", "session.confirm",
			slog.Int64("user_id", userID),
			slog.String("duration", s.Plan.Duration),
			slog.Int("interests", len(s.Plan.Interests)),
			slog.String("budget", s.Plan.Budget),
		)
		return nil
	})
	return out, err
}

// advance runs one guarded stage mutation. The mutation sees a copy; the
// stored session is replaced only when the mutation accepts the input, so a
// rejected choice leaves both stage and draft plan untouched.
func (p *Planner) advance(ctx context.Context, userID int64, want Stage, mutate func(*Session) error) (Session, error) {
	var out Session
	err := p.step(userID, func() error {
		s, ok := p.get(userID)
		if !ok {
			return ErrNoSession
		}
		if s.Stage != want {
			logger.Debug(ctx, "travel.plan", "step.stage_mismatch",
				slog.Int64("user_id", userID),
				slog.String("stage", string(s.Stage)),
				slog.String("expected", string(want)),
			)
			return ErrInvalidChoice
		}
		working := s.snapshot()
		if err := mutate(&working); err != nil {
			return err
		}
		working.UpdatedAt = time.Now()
		p.put(working)
		out = working.snapshot()
		logger.Debug(ctx, "travel.plan", "step.advance",
			slog.Int64("user_id", userID),
			slog.String("stage", string(working.Stage)),
		)
		return nil
	})
	return out, err
}

// step serializes session access per user. The lock is never held across
// outbound I/O; steps are in-memory mutations.
func (p *Planner) step(userID int64, fn func() error) error {
	v, _ := p.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	if !mu.TryLock() {
		return ErrSessionBusy
	}
	defer mu.Unlock()
	return fn()
}

func (p *Planner) get(userID int64) (Session, bool) {
	v, ok := p.sessions.Get(sessionKey(userID))
	if !ok {
		return Session{}, false
	}
	return v.(Session), true
}

func (p *Planner) put(s Session) {
	p.sessions.Set(sessionKey(s.UserID), s, p.ttl)
}
