package render

import (
	"strings"
	"testing"

	"github.com/breathebhutan/tashi/travel/datastore"
	"github.com/breathebhutan/tashi/travel/finalize"
	"github.com/breathebhutan/tashi/travel/planner"
	"github.com/breathebhutan/tashi/travel/recommend"
)

func TestCategoryListRendersRecords(t *testing.T) {
	out := CategoryList("tours", []datastore.Record{
		{"name": "Western Loop", "description": "Paro, Thimphu and Punakha."},
		{"name": "Eastern Discovery", "description": "Remote valleys."},
	}, 5)

	for _, want := range []string{"Cultural Tours", "1. *Western Loop*", "2. *Eastern Discovery*", "Remote valleys."} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
}

func TestCategoryListCapsAndCounts(t *testing.T) {
	recs := []datastore.Record{
		{"name": "A"}, {"name": "B"}, {"name": "C"}, {"name": "D"},
	}
	out := CategoryList("tours", recs, 2)
	if strings.Contains(out, "*C*") {
		t.Errorf("cap ignored:\n%s", out)
	}
	if !strings.Contains(out, "and 2 more") {
		t.Errorf("remainder note missing:\n%s", out)
	}
}

func TestSearchResultsEmpty(t *testing.T) {
	out := SearchResults("yak polo", nil, 5)
	if !strings.Contains(out, "couldn't find anything") {
		t.Errorf("empty search text = %q", out)
	}
}

func TestSearchResultsEscapesMarkdown(t *testing.T) {
	out := SearchResults("nest", []datastore.Match{
		{Category: "tours", Record: datastore.Record{
			"name":        "Tiger_s Nest *Special*",
			"description": "Hike to the monastery.",
		}},
	}, 5)
	if strings.Contains(out, "Tiger_s Nest *Special*") {
		t.Errorf("record name not escaped:\n%s", out)
	}
	if !strings.Contains(out, `Tiger\_s Nest \*Special\*`) {
		t.Errorf("escaped name missing:\n%s", out)
	}
}

func TestPlanSummary(t *testing.T) {
	out := PlanSummary(planner.DraftPlan{
		Duration:  planner.Duration8to10,
		Interests: []string{"culture", "nature"},
		Budget:    planner.BudgetComfort,
	})
	for _, want := range []string{"8-10", "culture, nature", "comfort"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRecommendationsList(t *testing.T) {
	out := Recommendations([]recommend.Match{
		{
			Record:  datastore.Record{"name": "Valleys and Dzongs", "description": "Nine days in the west."},
			Overlap: []string{"culture", "nature"},
			Days:    recommend.DayRange{Min: 9, Max: 9},
		},
	}, 5)
	for _, want := range []string{"Valleys and Dzongs", "9 days", "culture, nature"} {
		if !strings.Contains(out, want) {
			t.Errorf("recommendations missing %q:\n%s", want, out)
		}
	}

	if out := Recommendations(nil, 5); !strings.Contains(out, "custom itineraries") {
		t.Errorf("empty recommendations text = %q", out)
	}
}

func TestFinalizedTexts(t *testing.T) {
	plan := finalize.FinalizedPlan{RefID: "ref-1"}
	if out := Finalized(plan); !strings.Contains(out, "ref-1") {
		t.Errorf("success text missing ref: %q", out)
	}
	out := FinalizedFollowUp(plan)
	if !strings.Contains(out, "follow up with you manually") || !strings.Contains(out, "ref-1") {
		t.Errorf("follow-up text = %q", out)
	}
}

func TestTruncateBreaksOnWord(t *testing.T) {
	long := strings.Repeat("word ", 60)
	out := truncate(long, 50)
	if len(out) > 55 {
		t.Errorf("truncate left %d bytes", len(out))
	}
	if !strings.HasSuffix(out, "…") {
		t.Errorf("no ellipsis: %q", out)
	}
}
