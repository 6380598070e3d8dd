package finalize

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/breathebhutan/tashi/travel/planner"
)

type stubStore struct {
	saved    []FinalizedPlan
	statuses map[string]string
	saveErr  error
}

func (s *stubStore) Save(_ context.Context, plan FinalizedPlan) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, plan)
	return nil
}

func (s *stubStore) MarkStatus(_ context.Context, refID, status string) error {
	if s.statuses == nil {
		s.statuses = make(map[string]string)
	}
	s.statuses[refID] = status
	return nil
}

type stubNotifier struct {
	err   error
	plans []FinalizedPlan
}

func (n *stubNotifier) Notify(_ context.Context, plan FinalizedPlan) error {
	if n.err != nil {
		return n.err
	}
	n.plans = append(n.plans, plan)
	return nil
}

func confirmedSession() planner.Session {
	return planner.Session{
		UserID: 42,
		Stage:  planner.StageConfirming,
		Plan: planner.DraftPlan{
			Duration:  planner.Duration8to10,
			Interests: []string{"culture", "nature"},
			Budget:    planner.BudgetComfort,
		},
		StartedAt: time.Now().Add(-time.Minute),
		UpdatedAt: time.Now(),
	}
}

func TestFinalizeDeliversAndMarksSent(t *testing.T) {
	store := &stubStore{}
	notifier := &stubNotifier{}
	f := New(store, notifier)

	plan, err := f.Finalize(context.Background(), confirmedSession(),
		User{ID: 42, Username: "dorji", FullName: "Dorji W"},
		[]string{"Valleys and Dzongs"})
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if plan.RefID == "" {
		t.Errorf("empty ref id")
	}
	if plan.Duration != planner.Duration8to10 || plan.Budget != planner.BudgetComfort {
		t.Errorf("plan fields = %+v", plan)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d inquiries", len(store.saved))
	}
	if got := store.statuses[plan.RefID]; got != StatusSent {
		t.Errorf("status = %q, want %q", got, StatusSent)
	}
	if len(notifier.plans) != 1 || notifier.plans[0].RefID != plan.RefID {
		t.Errorf("notifier received %+v", notifier.plans)
	}
}

func TestFinalizeNotifierFailure(t *testing.T) {
	store := &stubStore{}
	notifier := &stubNotifier{err: fmt.Errorf("smtp down")}
	f := New(store, notifier)

	plan, err := f.Finalize(context.Background(), confirmedSession(), User{ID: 42}, nil)
	if !errors.Is(err, ErrNotificationFailed) {
		t.Fatalf("err = %v, want ErrNotificationFailed", err)
	}
	// The inquiry row survives as the manual follow-up record.
	if len(store.saved) != 1 {
		t.Fatalf("saved %d inquiries", len(store.saved))
	}
	if got := store.statuses[plan.RefID]; got != StatusFailed {
		t.Errorf("status = %q, want %q", got, StatusFailed)
	}
}

func TestFinalizePersistenceFailureIsNotFatal(t *testing.T) {
	store := &stubStore{saveErr: fmt.Errorf("db down")}
	notifier := &stubNotifier{}
	f := New(store, notifier)

	if _, err := f.Finalize(context.Background(), confirmedSession(), User{ID: 42}, nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(notifier.plans) != 1 {
		t.Errorf("delivery skipped after save failure")
	}
}

func TestFinalizeSnapshotIsIndependent(t *testing.T) {
	sess := confirmedSession()
	f := New(nil, &stubNotifier{})
	plan, err := f.Finalize(context.Background(), sess, User{ID: 42}, nil)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	sess.Plan.Interests[0] = "mutated"
	if plan.Interests[0] != "culture" {
		t.Errorf("snapshot shares the session's interest slice")
	}
}
