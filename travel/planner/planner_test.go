package planner

import (
	"context"
	"errors"
	"testing"
	"time"
)

func startedPlanner(t *testing.T, userID int64) *Planner {
	t.Helper()
	p := New(time.Minute)
	if _, resumed, err := p.Start(context.Background(), userID); err != nil || resumed {
		t.Fatalf("Start: resumed=%v err=%v", resumed, err)
	}
	return p
}

// walk advances a session through the full happy path up to (but not
// including) Confirm.
func walk(t *testing.T, p *Planner, userID int64) {
	t.Helper()
	ctx := context.Background()
	if _, err := p.ChooseDuration(ctx, userID, Duration8to10); err != nil {
		t.Fatalf("ChooseDuration: %v", err)
	}
	if _, err := p.AddInterests(ctx, userID, "culture", "nature"); err != nil {
		t.Fatalf("AddInterests: %v", err)
	}
	if _, err := p.FinishInterests(ctx, userID); err != nil {
		t.Fatalf("FinishInterests: %v", err)
	}
	if _, err := p.ChooseBudget(ctx, userID, BudgetComfort); err != nil {
		t.Fatalf("ChooseBudget: %v", err)
	}
}

func TestHappyPathVisitsEveryStage(t *testing.T) {
	ctx := context.Background()
	p := startedPlanner(t, 1)

	s, _ := p.Session(1)
	if s.Stage != StageChoosingDuration {
		t.Fatalf("after Start stage = %s", s.Stage)
	}

	s, err := p.ChooseDuration(ctx, 1, Duration8to10)
	if err != nil || s.Stage != StageChoosingInterests {
		t.Fatalf("after duration stage = %s err = %v", s.Stage, err)
	}
	s, err = p.AddInterests(ctx, 1, "culture")
	if err != nil || s.Stage != StageChoosingInterests {
		t.Fatalf("interests must not advance on add: stage = %s err = %v", s.Stage, err)
	}
	s, err = p.FinishInterests(ctx, 1)
	if err != nil || s.Stage != StageChoosingBudget {
		t.Fatalf("after done stage = %s err = %v", s.Stage, err)
	}
	s, err = p.ChooseBudget(ctx, 1, BudgetLuxury)
	if err != nil || s.Stage != StageConfirming {
		t.Fatalf("after budget stage = %s err = %v", s.Stage, err)
	}

	final, err := p.Confirm(ctx, 1)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if final.Plan.Duration != Duration8to10 || final.Plan.Budget != BudgetLuxury {
		t.Errorf("final plan = %+v", final.Plan)
	}
	if _, ok := p.Session(1); ok {
		t.Errorf("session survived Confirm")
	}
}

func TestStagesCannotBeSkipped(t *testing.T) {
	ctx := context.Background()
	p := startedPlanner(t, 7)

	if _, err := p.ChooseBudget(ctx, 7, BudgetStandard); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("budget before duration: err = %v", err)
	}
	if _, err := p.Confirm(ctx, 7); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("confirm before duration: err = %v", err)
	}
	if _, err := p.FinishInterests(ctx, 7); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("interest done before duration: err = %v", err)
	}
	s, _ := p.Session(7)
	if s.Stage != StageChoosingDuration {
		t.Errorf("stage moved to %s", s.Stage)
	}
}

func TestInvalidChoiceLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	p := startedPlanner(t, 2)

	if _, err := p.ChooseDuration(ctx, 2, "4-6"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("bad duration err = %v", err)
	}
	s, _ := p.Session(2)
	if s.Stage != StageChoosingDuration || s.Plan.Duration != "" {
		t.Errorf("rejected choice mutated session: %+v", s)
	}

	if _, err := p.ChooseDuration(ctx, 2, Duration5to7); err != nil {
		t.Fatalf("ChooseDuration: %v", err)
	}
	if _, err := p.AddInterests(ctx, 2, "shopping"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("unknown interest err = %v", err)
	}
	s, _ = p.Session(2)
	if len(s.Plan.Interests) != 0 {
		t.Errorf("rejected interest stored: %v", s.Plan.Interests)
	}
}

func TestDoneWithoutInterestsIsInvalid(t *testing.T) {
	ctx := context.Background()
	p := startedPlanner(t, 3)
	if _, err := p.ChooseDuration(ctx, 3, Duration11to14); err != nil {
		t.Fatalf("ChooseDuration: %v", err)
	}
	if _, err := p.FinishInterests(ctx, 3); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("empty done err = %v", err)
	}
}

func TestInterestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := startedPlanner(t, 4)
	if _, err := p.ChooseDuration(ctx, 4, Duration5to7); err != nil {
		t.Fatalf("ChooseDuration: %v", err)
	}
	if _, err := p.AddInterests(ctx, 4, "culture"); err != nil {
		t.Fatalf("AddInterests: %v", err)
	}
	s, err := p.AddInterests(ctx, 4, "culture")
	if err != nil {
		t.Fatalf("repeat AddInterests: %v", err)
	}
	if len(s.Plan.Interests) != 1 {
		t.Errorf("interests = %v, want one entry", s.Plan.Interests)
	}
}

func TestCancelFromAnyStage(t *testing.T) {
	ctx := context.Background()
	for _, advanceTo := range []int{0, 1, 2, 3, 4} {
		p := startedPlanner(t, 5)
		steps := []func(){
			func() { _, _ = p.ChooseDuration(ctx, 5, Duration8to10) },
			func() { _, _ = p.AddInterests(ctx, 5, "nature") },
			func() { _, _ = p.FinishInterests(ctx, 5) },
			func() { _, _ = p.ChooseBudget(ctx, 5, BudgetFlexible) },
		}
		for i := 0; i < advanceTo; i++ {
			steps[i]()
		}
		existed, err := p.Cancel(ctx, 5)
		if err != nil {
			t.Fatalf("Cancel at step %d: %v", advanceTo, err)
		}
		if !existed {
			t.Fatalf("Cancel at step %d reported no session", advanceTo)
		}
		if _, ok := p.Session(5); ok {
			t.Errorf("session survived cancel at step %d", advanceTo)
		}
	}
}

func TestRestartClearsDraftPlan(t *testing.T) {
	ctx := context.Background()
	p := startedPlanner(t, 6)
	walk(t, p, 6)

	s, err := p.Restart(ctx, 6)
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if s.Stage != StageChoosingDuration {
		t.Errorf("stage after restart = %s", s.Stage)
	}
	if s.Plan.Duration != "" || len(s.Plan.Interests) != 0 || s.Plan.Budget != "" {
		t.Errorf("plan after restart = %+v", s.Plan)
	}
}

func TestStartWhileActiveResumes(t *testing.T) {
	ctx := context.Background()
	p := startedPlanner(t, 8)
	if _, err := p.ChooseDuration(ctx, 8, Duration15plus); err != nil {
		t.Fatalf("ChooseDuration: %v", err)
	}

	s, resumed, err := p.Start(ctx, 8)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if !resumed {
		t.Fatalf("second Start did not resume")
	}
	if s.Stage != StageChoosingInterests || s.Plan.Duration != Duration15plus {
		t.Errorf("resume lost progress: %+v", s)
	}
}

func TestConcurrentStepIsBusy(t *testing.T) {
	ctx := context.Background()
	p := startedPlanner(t, 9)

	hold := make(chan struct{})
	held := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.step(9, func() error {
			close(held)
			<-hold
			return nil
		})
	}()
	<-held

	if _, err := p.ChooseDuration(ctx, 9, Duration5to7); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("concurrent step err = %v, want ErrSessionBusy", err)
	}
	close(hold)
	<-done
	if _, err := p.ChooseDuration(ctx, 9, Duration5to7); err != nil {
		t.Errorf("step after release: %v", err)
	}
}

func TestCancelWhileStepRunsIsBusy(t *testing.T) {
	ctx := context.Background()
	p := startedPlanner(t, 11)

	hold := make(chan struct{})
	held := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.step(11, func() error {
			close(held)
			<-hold
			return nil
		})
	}()
	<-held

	if _, err := p.Cancel(ctx, 11); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("cancel during step err = %v, want ErrSessionBusy", err)
	}
	if _, ok := p.Session(11); !ok {
		t.Fatalf("busy cancel destroyed the session")
	}
	close(hold)
	<-done

	existed, err := p.Cancel(ctx, 11)
	if err != nil {
		t.Fatalf("Cancel after release: %v", err)
	}
	if !existed {
		t.Errorf("Cancel after release reported no session")
	}
	if _, ok := p.Session(11); ok {
		t.Errorf("session survived cancel")
	}
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	p := New(20 * time.Millisecond)
	if _, _, err := p.Start(ctx, 10); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok := p.Session(10); ok {
		t.Fatalf("session survived TTL")
	}
	if _, err := p.ChooseDuration(ctx, 10, Duration5to7); !errors.Is(err, ErrNoSession) {
		t.Errorf("step after expiry err = %v, want ErrNoSession", err)
	}
}

func TestStageReportsForDialogRouting(t *testing.T) {
	p := startedPlanner(t, 11)
	stage, ok := p.Stage(11)
	if !ok || stage != string(StageChoosingDuration) {
		t.Errorf("Stage = %q ok=%v", stage, ok)
	}
	if _, ok := p.Stage(12); ok {
		t.Errorf("idle user reports a stage")
	}
}
