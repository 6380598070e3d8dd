package planner

import (
	"regexp"
	"strconv"
	"strings"
)

// The planning dialogue accepts typed answers alongside inline buttons, so
// each stage has a small rule-based parser over the lower-cased message text.

var firstNumberRe = regexp.MustCompile(`\d+`)

// ParseDuration maps free text to a duration bucket: an exact bucket label,
// or the first integer in the text mapped through the bucket boundaries.
func ParseDuration(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return "", false
	}
	for _, b := range DurationBuckets {
		if t == b {
			return b, true
		}
	}
	m := firstNumberRe.FindString(t)
	if m == "" {
		return "", false
	}
	days, err := strconv.Atoi(m)
	if err != nil || days <= 0 {
		return "", false
	}
	return DurationBucketFor(days), true
}

// interestDoneWords signal the traveller has no more interests to add.
var interestDoneWords = []string{
	"done", "that's all", "thats all", "that is all", "finish", "finished",
	"nothing else", "no more", "enough", "next",
}

// ParseInterests returns every canonical interest tag present in the text as
// a substring. "History" also matches inside "prehistory"; the vocabulary is
// small enough that this has not been a problem in practice.
func ParseInterests(text string) []string {
	t := strings.ToLower(text)
	var tags []string
	for _, tag := range CanonicalInterests {
		if strings.Contains(t, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// InterestsDone reports whether the text signals completion of the interest
// stage.
func InterestsDone(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, w := range interestDoneWords {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}

var budgetSynonyms = map[string][]string{
	BudgetStandard: {"standard", "budget", "cheap", "economy", "basic", "affordable", "low"},
	BudgetComfort:  {"comfort", "mid", "middle", "moderate", "medium"},
	BudgetLuxury:   {"luxury", "luxurious", "premium", "high-end", "high end", "deluxe", "exclusive"},
	BudgetFlexible: {"flexible", "any", "open", "no budget", "doesn't matter", "dont know", "don't know", "not sure"},
}

// ParseBudget maps free text to a budget bucket by exact label or synonym.
func ParseBudget(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return "", false
	}
	for _, b := range BudgetBuckets {
		if t == b {
			return b, true
		}
	}
	for _, b := range BudgetBuckets {
		for _, syn := range budgetSynonyms[b] {
			if strings.Contains(t, syn) {
				return b, true
			}
		}
	}
	return "", false
}

// Intent classifies a free-text reply at the confirmation stage.
type Intent int

const (
	// IntentUnknown means the reply matched no recognized wording.
	IntentUnknown Intent = iota
	// IntentConfirm accepts the plan.
	IntentConfirm
	// IntentRestart discards the answers and starts the questions over.
	IntentRestart
	// IntentDecline rejects the plan without restarting.
	IntentDecline
)

var (
	confirmWords = []string{
		"yes", "yeah", "yep", "sure", "ok", "okay", "confirm", "good",
		"great", "perfect", "sounds good", "let's do it", "lets do it",
	}
	restartWords = []string{
		"start over", "restart", "reset", "start again", "new plan",
		"begin again", "try again",
	}
	declineWords = []string{"no", "nope", "not", "wait", "hold on", "hmm"}
)

// ParseConfirm classifies the reply to the plan summary. Restart wording wins
// over confirm wording ("yes, start over" restarts) and negation wins over an
// embedded affirmative ("not good" declines).
func ParseConfirm(text string) Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return IntentUnknown
	}
	for _, w := range restartWords {
		if strings.Contains(t, w) {
			return IntentRestart
		}
	}
	for _, w := range declineWords {
		if t == w || strings.HasPrefix(t, w+" ") || strings.HasPrefix(t, w+",") {
			return IntentDecline
		}
	}
	for _, w := range confirmWords {
		if t == w || strings.Contains(t, w) {
			return IntentConfirm
		}
	}
	return IntentUnknown
}
