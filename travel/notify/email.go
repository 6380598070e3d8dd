package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/breathebhutan/tashi/travel/finalize"
	"gopkg.in/gomail.v2"
)

// Dialer sends a composed message. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Email delivers plans to the business inbox over SMTP.
type Email struct {
	dialer Dialer
	from   string
	to     string
}

// NewEmail creates the SMTP transport.
func NewEmail(host string, port int, username, password, from, to string) *Email {
	return &Email{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		to:     to,
	}
}

// Name implements Notifier.
func (e *Email) Name() string { return "email" }

// Notify implements Notifier. gomail offers no context hook; SMTP dial and
// send run to completion or error on their own timeouts.
func (e *Email) Notify(_ context.Context, plan finalize.FinalizedPlan) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.to)
	m.SetHeader("Subject", fmt.Sprintf("New Travel Plan Request from %s", displayName(plan)))
	m.SetBody("text/plain", emailBody(plan))

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send plan email: %w", err)
	}
	return nil
}

func displayName(plan finalize.FinalizedPlan) string {
	if plan.FullName != "" {
		return plan.FullName
	}
	if plan.Username != "" {
		return "@" + plan.Username
	}
	return fmt.Sprintf("Telegram user %d", plan.UserID)
}

// emailBody renders the plain-text inquiry the team reads.
func emailBody(plan finalize.FinalizedPlan) string {
	var b strings.Builder
	b.WriteString("NEW TRAVEL PLAN REQUEST\n")
	b.WriteString("=======================\n\n")

	b.WriteString("TRAVELLER:\n")
	fmt.Fprintf(&b, "Name: %s\n", displayName(plan))
	if plan.Username != "" {
		fmt.Fprintf(&b, "Telegram: @%s (id %d)\n", plan.Username, plan.UserID)
	} else {
		fmt.Fprintf(&b, "Telegram id: %d\n", plan.UserID)
	}

	b.WriteString("\nPREFERENCES:\n")
	fmt.Fprintf(&b, "Duration: %s days\n", plan.Duration)
	fmt.Fprintf(&b, "Interests: %s\n", strings.Join(plan.Interests, ", "))
	fmt.Fprintf(&b, "Budget: %s\n", plan.Budget)

	if len(plan.Recommendations) > 0 {
		b.WriteString("\nMATCHED RECOMMENDATIONS:\n")
		for i, name := range plan.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, name)
		}
	}

	fmt.Fprintf(&b, "\nReference: %s\n", plan.RefID)
	fmt.Fprintf(&b, "Received: %s\n", plan.CreatedAt.Format("2006-01-02 15:04 MST"))
	return b.String()
}
