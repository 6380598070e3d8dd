package planner

import (
	"reflect"
	"testing"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in     string
		bucket string
		ok     bool
	}{
		{"8-10", Duration8to10, true},
		{"5-7", Duration5to7, true},
		{"about 9 days", Duration8to10, true},
		{"I have 12 days", Duration11to14, true},
		{"3 days only", Duration5to7, true},
		{"three weeks", "", false},
		{"21 days", Duration15plus, true},
		{"a week", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		bucket, ok := ParseDuration(tt.in)
		if ok != tt.ok || bucket != tt.bucket {
			t.Errorf("ParseDuration(%q) = %q, %v; want %q, %v", tt.in, bucket, ok, tt.bucket, tt.ok)
		}
	}
}

func TestParseInterests(t *testing.T) {
	got := ParseInterests("We love culture, some light hiking and festivals")
	want := []string{"culture", "hiking", "festivals"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseInterests = %v, want %v", got, want)
	}
	if tags := ParseInterests("beaches and surfing"); tags != nil {
		t.Errorf("ParseInterests(off-topic) = %v", tags)
	}
}

func TestInterestsDone(t *testing.T) {
	for _, s := range []string{"done", "That's all!", "I think that is all", "finished"} {
		if !InterestsDone(s) {
			t.Errorf("InterestsDone(%q) = false", s)
		}
	}
	if InterestsDone("more temples please") {
		t.Errorf("InterestsDone matched a normal answer")
	}
}

func TestParseBudget(t *testing.T) {
	tests := []struct {
		in     string
		bucket string
		ok     bool
	}{
		{"luxury", BudgetLuxury, true},
		{"something cheap", BudgetStandard, true},
		{"mid range is fine", BudgetComfort, true},
		{"high-end please", BudgetLuxury, true},
		{"any", BudgetFlexible, true},
		{"gold plated", "", false},
	}
	for _, tt := range tests {
		bucket, ok := ParseBudget(tt.in)
		if ok != tt.ok || bucket != tt.bucket {
			t.Errorf("ParseBudget(%q) = %q, %v; want %q, %v", tt.in, bucket, ok, tt.bucket, tt.ok)
		}
	}
}

func TestParseConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want Intent
	}{
		{"yes", IntentConfirm},
		{"Sounds good", IntentConfirm},
		{"perfect, thank you", IntentConfirm},
		{"start over", IntentRestart},
		{"yes, start over", IntentRestart},
		{"restart", IntentRestart},
		{"no", IntentDecline},
		{"not quite", IntentDecline},
		{"what happens next?", IntentUnknown},
	}
	for _, tt := range tests {
		if got := ParseConfirm(tt.in); got != tt.want {
			t.Errorf("ParseConfirm(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
