package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/breathebhutan/tashi/travel/finalize"
	"gopkg.in/gomail.v2"
)

func testPlan() finalize.FinalizedPlan {
	return finalize.FinalizedPlan{
		RefID:           "ref-123",
		UserID:          42,
		Username:        "dorji",
		FullName:        "Dorji W",
		Duration:        "8-10",
		Interests:       []string{"culture", "nature"},
		Budget:          "comfort",
		Recommendations: []string{"Valleys and Dzongs"},
		CreatedAt:       time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func testWebhook(url string, attempts int) *Webhook {
	w := NewWebhook(url, "secret", attempts)
	w.backoff = time.Millisecond
	return w
}

func TestWebhookDelivers(t *testing.T) {
	var gotAuth string
	var gotPlan finalize.FinalizedPlan
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPlan); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := testWebhook(srv.URL, 3).Notify(context.Background(), testPlan()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotPlan.RefID != "ref-123" || gotPlan.Duration != "8-10" {
		t.Errorf("payload = %+v", gotPlan)
	}
}

func TestWebhookRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := testWebhook(srv.URL, 3).Notify(context.Background(), testPlan()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestWebhookGivesUpAfterAttemptBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testWebhook(srv.URL, 2).Notify(context.Background(), testPlan())
	if err == nil {
		t.Fatalf("Notify succeeded against a failing endpoint")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestWebhookDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if err := testWebhook(srv.URL, 3).Notify(context.Background(), testPlan()); err == nil {
		t.Fatalf("Notify succeeded on 400")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (400 is permanent)", got)
	}
}

type scriptedNotifier struct {
	name  string
	err   error
	calls int
}

func (n *scriptedNotifier) Name() string { return n.name }

func (n *scriptedNotifier) Notify(context.Context, finalize.FinalizedPlan) error {
	n.calls++
	return n.err
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	first := &scriptedNotifier{name: "email"}
	second := &scriptedNotifier{name: "webhook"}
	chain := NewChain(first, second)

	if err := chain.Notify(context.Background(), testPlan()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if first.calls != 1 || second.calls != 0 {
		t.Errorf("calls = %d/%d, want 1/0", first.calls, second.calls)
	}
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	first := &scriptedNotifier{name: "email", err: fmt.Errorf("smtp down")}
	second := &scriptedNotifier{name: "webhook"}
	chain := NewChain(first, second)

	if err := chain.Notify(context.Background(), testPlan()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
}

func TestChainFailsWhenAllFail(t *testing.T) {
	chain := NewChain(
		&scriptedNotifier{name: "email", err: fmt.Errorf("smtp down")},
		&scriptedNotifier{name: "webhook", err: fmt.Errorf("endpoint down")},
	)
	if err := chain.Notify(context.Background(), testPlan()); err == nil {
		t.Fatalf("Notify succeeded with all transports failing")
	}
}

func TestChainWithoutTransportsFails(t *testing.T) {
	chain := NewChain()
	if chain.Len() != 0 {
		t.Fatalf("Len = %d", chain.Len())
	}
	if err := chain.Notify(context.Background(), testPlan()); err == nil {
		t.Fatalf("empty chain reported success")
	}
}

type recordingDialer struct {
	msgs []*gomail.Message
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.msgs = append(d.msgs, m...)
	return nil
}

func TestEmailSubjectAndBody(t *testing.T) {
	dialer := &recordingDialer{}
	email := &Email{dialer: dialer, from: "bot@example.com", to: "team@example.com"}

	if err := email.Notify(context.Background(), testPlan()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(dialer.msgs) != 1 {
		t.Fatalf("sent %d messages", len(dialer.msgs))
	}
	subject := dialer.msgs[0].GetHeader("Subject")
	if len(subject) != 1 || subject[0] != "New Travel Plan Request from Dorji W" {
		t.Errorf("subject = %v", subject)
	}

	body := emailBody(testPlan())
	for _, want := range []string{
		"Dorji W", "@dorji", "8-10", "culture, nature", "comfort",
		"Valleys and Dzongs", "ref-123",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}
