package bot

import (
	"testing"

	"github.com/breathebhutan/tashi/core/telegram/keyboard"
	"github.com/breathebhutan/tashi/travel/planner"
)

func TestChunkSplitsRows(t *testing.T) {
	btns := make([]keyboard.InlineBtn, 5)
	rows := chunk(btns, 2)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if len(rows[0]) != 2 || len(rows[2]) != 1 {
		t.Errorf("row sizes = %d/%d/%d", len(rows[0]), len(rows[1]), len(rows[2]))
	}
}

func TestDurationKeyboardCoversBucketsAndCancel(t *testing.T) {
	markup := durationKeyboard()
	// Two buckets per row plus the cancel row.
	if got := len(markup.InlineKeyboard); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	var labels []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			labels = append(labels, btn.Text)
		}
	}
	for _, bucket := range planner.DurationBuckets {
		found := false
		for _, l := range labels {
			if l == bucket+" days" {
				found = true
			}
		}
		if !found {
			t.Errorf("bucket %q missing from keyboard", bucket)
		}
	}
	if last := markup.InlineKeyboard[2][0].Text; last != "❌ Cancel" {
		t.Errorf("last row = %q, want cancel", last)
	}
}

func TestInterestKeyboardEndsWithDoneAndCancel(t *testing.T) {
	markup := interestKeyboard()
	rows := markup.InlineKeyboard
	if len(rows) < 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	done := rows[len(rows)-2][0]
	cancel := rows[len(rows)-1][0]
	if done.Text != "✅ Done" {
		t.Errorf("done button = %q", done.Text)
	}
	if cancel.Text != "❌ Cancel" {
		t.Errorf("cancel button = %q", cancel.Text)
	}
}
