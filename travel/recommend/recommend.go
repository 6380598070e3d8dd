// Package recommend selects itinerary and tour records matching a completed
// draft plan: the record's duration range must overlap the chosen bucket and
// its interest tags must intersect the chosen set. Matches are ordered by
// descending interest overlap; ties keep source order.
package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/breathebhutan/tashi/core/logger"
	"github.com/breathebhutan/tashi/travel/datastore"
	"github.com/breathebhutan/tashi/travel/planner"
	"github.com/elliotchance/pie/v2"
	"log/slog"
)

// sourceCategories are scanned in this order; record order within each
// category is preserved for tie-breaking.
var sourceCategories = []string{"itineraries", "tours"}

// Match is one recommended record with the plan interests it satisfies.
type Match struct {
	Category string
	Record   datastore.Record
	// Overlap holds the plan interests found on the record, in plan order.
	Overlap []string
	// Days is the record's declared duration range.
	Days DayRange
}

// Source provides the records the filter scans. *datastore.Store satisfies it.
type Source interface {
	Category(ctx context.Context, name string) ([]datastore.Record, error)
}

// Filter matches records against draft plans.
type Filter struct {
	src Source
}

// New creates a Filter over the given record source.
func New(src Source) *Filter {
	return &Filter{src: src}
}

// Recommend returns the matching records for a completed plan, best overlap
// first. An empty result is a valid outcome, not an error.
func (f *Filter) Recommend(ctx context.Context, plan planner.DraftPlan) []Match {
	start := time.Now()
	bucketMin, bucketMax, ok := planner.DurationRange(plan.Duration)
	if !ok || len(plan.Interests) == 0 {
		return nil
	}

	var out []Match
	for _, cat := range sourceCategories {
		recs, err := f.src.Category(ctx, cat)
		if err != nil {
			continue
		}
		for _, rec := range recs {
			days, ok := recordDays(rec)
			if !ok {
				continue
			}
			if days.Min > bucketMax || days.Max < bucketMin {
				continue
			}
			if !budgetAllows(rec, plan.Budget) {
				continue
			}
			tags := recordTags(rec)
			overlap := pie.Filter(plan.Interests, func(tag string) bool {
				return pie.Contains(tags, tag)
			})
			if len(overlap) == 0 {
				continue
			}
			out = append(out, Match{
				Category: cat,
				Record:   rec,
				Overlap:  overlap,
				Days:     days,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Overlap) > len(out[j].Overlap)
	})

	logger.Debug(ctx, "travel.recommend", "filter.done",
		slog.String("duration", plan.Duration),
		slog.Int("interests", len(plan.Interests)),
		slog.String("budget", plan.Budget),
		slog.Int("matches", len(out)),
		slog.Duration("took", logger.RoundMS(time.Since(start))),
	)
	return out
}

// budgetAllows applies the budget rule: records without recognizable budget
// data are unconstrained, and a flexible plan accepts everything.
func budgetAllows(rec datastore.Record, budget string) bool {
	if budget == "" || budget == planner.BudgetFlexible {
		return true
	}
	declared, ok := planner.ParseBudget(rec.Text("budget"))
	if !ok {
		return true
	}
	return declared == budget
}
