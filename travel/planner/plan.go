// Package planner runs the trip planning dialogue: one session per user
// moving through a fixed stage sequence while accumulating a draft plan.
package planner

import "time"

// Stage identifies a step of the planning dialogue. The zero session starts
// at StageChoosingDuration; idle users have no session at all.
type Stage string

const (
	StageChoosingDuration  Stage = "choosing_duration"
	StageChoosingInterests Stage = "choosing_interests"
	StageChoosingBudget    Stage = "choosing_budget"
	StageConfirming        Stage = "confirming"
)

// Duration buckets, in presentation order.
const (
	Duration5to7   = "5-7"
	Duration8to10  = "8-10"
	Duration11to14 = "11-14"
	Duration15plus = "15+"
)

// DurationBuckets lists the accepted duration choices.
var DurationBuckets = []string{Duration5to7, Duration8to10, Duration11to14, Duration15plus}

// Budget buckets, in presentation order. Flexible means unconstrained.
const (
	BudgetStandard = "standard"
	BudgetComfort  = "comfort"
	BudgetLuxury   = "luxury"
	BudgetFlexible = "flexible"
)

// BudgetBuckets lists the accepted budget choices.
var BudgetBuckets = []string{BudgetStandard, BudgetComfort, BudgetLuxury, BudgetFlexible}

// CanonicalInterests is the recognized interest vocabulary.
var CanonicalInterests = []string{
	"culture", "history", "nature", "hiking", "trekking", "mountains",
	"spirituality", "buddhism", "temples", "dzongs", "festivals",
	"photography", "food", "adventure", "relaxation",
}

// DraftPlan accumulates the traveller's answers across stages. Fields are
// populated in stage order and must not be read before their stage has run.
type DraftPlan struct {
	Duration  string
	Interests []string
	Budget    string
}

// Session is the per-user dialogue state. Snapshots returned by Planner
// methods carry copied slices and are safe to keep.
type Session struct {
	UserID    int64
	Stage     Stage
	Plan      DraftPlan
	StartedAt time.Time
	UpdatedAt time.Time
}

func (s Session) snapshot() Session {
	out := s
	out.Plan.Interests = append([]string(nil), s.Plan.Interests...)
	return out
}

// DurationRange maps a duration bucket to its day range. The open-ended
// bucket reports a large max.
func DurationRange(bucket string) (min, max int, ok bool) {
	switch bucket {
	case Duration5to7:
		return 5, 7, true
	case Duration8to10:
		return 8, 10, true
	case Duration11to14:
		return 11, 14, true
	case Duration15plus:
		return 15, 365, true
	}
	return 0, 0, false
}

// DurationBucketFor maps a day count to its bucket.
func DurationBucketFor(days int) string {
	switch {
	case days <= 7:
		return Duration5to7
	case days <= 10:
		return Duration8to10
	case days <= 14:
		return Duration11to14
	default:
		return Duration15plus
	}
}

// ValidDuration reports whether the value is an exact duration bucket label.
func ValidDuration(v string) bool {
	_, _, ok := DurationRange(v)
	return ok
}

// ValidBudget reports whether the value is an exact budget bucket label.
func ValidBudget(v string) bool {
	switch v {
	case BudgetStandard, BudgetComfort, BudgetLuxury, BudgetFlexible:
		return true
	}
	return false
}

// ValidInterest reports whether the tag belongs to the canonical vocabulary.
func ValidInterest(tag string) bool {
	for _, t := range CanonicalInterests {
		if t == tag {
			return true
		}
	}
	return false
}
