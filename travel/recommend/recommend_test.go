package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/breathebhutan/tashi/travel/datastore"
	"github.com/breathebhutan/tashi/travel/planner"
)

// fakeSource serves fixed records per category.
type fakeSource map[string][]datastore.Record

func (f fakeSource) Category(_ context.Context, name string) ([]datastore.Record, error) {
	recs, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("category %q: not indexed", name)
	}
	return recs, nil
}

func rec(fields map[string]any) datastore.Record { return datastore.Record(fields) }

func testSource() fakeSource {
	return fakeSource{
		"itineraries": {
			rec(map[string]any{
				"name":        "Valleys and Dzongs",
				"description": "Nine days of culture and nature in the west.",
				"duration":    "9 days",
				"interests":   []any{"culture", "nature"},
			}),
			rec(map[string]any{
				"name":        "Highland Crossing",
				"description": "A 12 day high route for trekkers.",
				"interests":   []any{"trekking", "mountains"},
			}),
			rec(map[string]any{
				"name":        "Quick Culture Break",
				"description": "Five days around Thimphu and Paro.",
				"duration":    float64(5),
				"interests":   []any{"culture"},
			}),
		},
		"tours": {
			rec(map[string]any{
				"name":        "Nature Escape",
				"description": "10 days of valleys, birds and forest walks.",
				"tags":        []any{"nature"},
			}),
			rec(map[string]any{
				"name":        "Luxury Heritage Tour",
				"description": "8 days of culture in the finest lodges.",
				"budget":      "luxury",
				"tags":        []any{"culture"},
			}),
			rec(map[string]any{
				"name":        "Undated Wonders",
				"description": "Culture and nature, schedule on request.",
				"tags":        []any{"culture", "nature"},
			}),
		},
	}
}

func TestRecommendMatchesDurationAndInterests(t *testing.T) {
	f := New(testSource())
	plan := planner.DraftPlan{
		Duration:  planner.Duration8to10,
		Interests: []string{"culture", "nature"},
		Budget:    planner.BudgetFlexible,
	}

	matches := f.Recommend(context.Background(), plan)
	if len(matches) != 3 {
		t.Fatalf("got %d matches: %+v", len(matches), names(matches))
	}

	// Two-tag overlap first, then the one-tag matches in source order.
	if got := matches[0].Record.Name(); got != "Valleys and Dzongs" {
		t.Errorf("best match = %q", got)
	}
	if len(matches[0].Overlap) != 2 {
		t.Errorf("best overlap = %v", matches[0].Overlap)
	}
	if got := matches[1].Record.Name(); got != "Nature Escape" {
		t.Errorf("second match = %q", got)
	}
	if got := matches[2].Record.Name(); got != "Luxury Heritage Tour" {
		t.Errorf("third match = %q", got)
	}

	for _, m := range matches {
		if m.Days.Min > 10 || m.Days.Max < 8 {
			t.Errorf("%s day range %+v outside bucket", m.Record.Name(), m.Days)
		}
		if len(m.Overlap) == 0 {
			t.Errorf("%s has empty overlap", m.Record.Name())
		}
	}
}

func TestRecommendExcludesUndatedRecords(t *testing.T) {
	f := New(testSource())
	matches := f.Recommend(context.Background(), planner.DraftPlan{
		Duration:  planner.Duration8to10,
		Interests: []string{"culture", "nature"},
	})
	for _, m := range matches {
		if m.Record.Name() == "Undated Wonders" {
			t.Errorf("record without duration matched")
		}
	}
}

func TestRecommendBudgetRule(t *testing.T) {
	f := New(testSource())

	// Standard budget excludes the declared-luxury tour but keeps records
	// without budget data.
	matches := f.Recommend(context.Background(), planner.DraftPlan{
		Duration:  planner.Duration8to10,
		Interests: []string{"culture", "nature"},
		Budget:    planner.BudgetStandard,
	})
	for _, m := range matches {
		if m.Record.Name() == "Luxury Heritage Tour" {
			t.Errorf("luxury record matched a standard budget")
		}
	}
	if !contains(names(matches), "Nature Escape") {
		t.Errorf("budget-less record excluded: %v", names(matches))
	}

	// A luxury budget keeps the declared-luxury tour.
	matches = f.Recommend(context.Background(), planner.DraftPlan{
		Duration:  planner.Duration8to10,
		Interests: []string{"culture"},
		Budget:    planner.BudgetLuxury,
	})
	if !contains(names(matches), "Luxury Heritage Tour") {
		t.Errorf("luxury record missing for luxury budget: %v", names(matches))
	}
}

func TestRecommendEmptyResultIsValid(t *testing.T) {
	f := New(testSource())
	matches := f.Recommend(context.Background(), planner.DraftPlan{
		Duration:  planner.Duration15plus,
		Interests: []string{"food"},
	})
	if len(matches) != 0 {
		t.Errorf("got %v, want none", names(matches))
	}
}

func TestRecordDaysParsing(t *testing.T) {
	tests := []struct {
		fields   map[string]any
		min, max int
		ok       bool
	}{
		{map[string]any{"duration": "8-10 days"}, 8, 10, true},
		{map[string]any{"duration": float64(7)}, 7, 7, true},
		{map[string]any{"duration": "12"}, 12, 12, true},
		{map[string]any{"name": "Bhutan 11 Day Journey"}, 11, 11, true},
		{map[string]any{"description": "A 5 to 7 days loop."}, 5, 7, true},
		{map[string]any{"name": "Sometime"}, 0, 0, false},
	}
	for _, tt := range tests {
		r, ok := recordDays(rec(tt.fields))
		if ok != tt.ok || r.Min != tt.min || r.Max != tt.max {
			t.Errorf("recordDays(%v) = %+v, %v; want %d-%d, %v",
				tt.fields, r, ok, tt.min, tt.max, tt.ok)
		}
	}
}

func names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Record.Name()
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
