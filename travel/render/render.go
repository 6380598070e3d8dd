// Package render formats every text the bot sends: category listings, search
// results, stage prompts, plan summaries, and finalization notices. Pure
// formatting, no I/O; all output targets Telegram Markdown (v1).
package render

import (
	"fmt"
	"strings"

	"github.com/breathebhutan/tashi/core/telegram/format"
	"github.com/breathebhutan/tashi/travel/datastore"
	"github.com/breathebhutan/tashi/travel/finalize"
	"github.com/breathebhutan/tashi/travel/inquiry"
	"github.com/breathebhutan/tashi/travel/planner"
	"github.com/breathebhutan/tashi/travel/recommend"
)

const descriptionLimit = 180

// Static replies in Tashi's voice.
const (
	Help = `Here is what I can do:

/plan — plan your trip step by step
/search <text> — search everything I know
/tours — cultural tours
/festivals — festival dates and stories
/trekking — trekking routes
/itineraries — ready-made itineraries
/experiences — special experiences
/reviews — traveller reviews
/deals — current offers
/about — about Breathe Bhutan
/cancel — stop the current planning dialogue
/reset — discard answers and start planning again

You can also just type what you are looking for.`

	Cancelled       = "No problem, I've cleared your planning answers. Type /plan whenever you want to start again."
	NothingToCancel = "There is nothing to cancel — you have no planning dialogue in progress. Type /plan to start one."
	Busy            = "One moment — I'm still working on your previous message. Please try again."
	StalePlanButton = "That step has expired. Type /plan to start planning again."
	UnknownInput    = "I'm not sure what you mean. Type /help to see what I can do."

	DurationPrompt = "How many days are you planning to stay in Bhutan? Pick a range or just tell me a number of days."
	BudgetPrompt   = "What budget level should I plan for?"

	InvalidDuration = "I didn't catch a trip length there. Pick one of the ranges below or tell me a number of days."
	InvalidInterest = "Tell me what you'd like to experience — culture, trekking, festivals, nature... Pick from the buttons or type your own words."
	EmptyInterests  = "Pick at least one interest before we move on — it helps me find the right trips for you."
	InvalidBudget   = "Pick one of the budget levels below, or say something like \"mid-range\" or \"flexible\"."
	ConfirmNudge    = "Shall I send this plan to the Breathe Bhutan team? Say yes to confirm, or start over to change your answers."
)

// Welcome greets a traveller by name.
func Welcome(name string) string {
	return fmt.Sprintf("Hello %s! I'm Tashi, your personal travel assistant for Bhutan. "+
		"I can tell you about tours, festivals, treks and itineraries, or plan a trip with you step by step.\n\n"+
		"Type /plan to start planning, or /help to see everything I can do.", escape(name))
}

// InterestsPrompt asks for interests, echoing what is already selected.
func InterestsPrompt(selected []string) string {
	if len(selected) == 0 {
		return "What would you like to experience in Bhutan? Pick as many as you like, then press Done."
	}
	return fmt.Sprintf("Noted: %s. Anything else? Press Done when you're finished.",
		escape(strings.Join(selected, ", ")))
}

// CategoryHeading maps a category to its listing title.
var categoryHeadings = map[string]string{
	"general":      "About Breathe Bhutan",
	"tours":        "Cultural Tours",
	"festivals":    "Festivals",
	"trekking":     "Trekking Routes",
	"itineraries":  "Itineraries",
	"experiences":  "Special Experiences",
	"testimonials": "Traveller Reviews",
	"deals":        "Current Offers",
}

// CategoryList renders at most limit records of one category.
func CategoryList(category string, recs []datastore.Record, limit int) string {
	heading, ok := categoryHeadings[category]
	if !ok {
		heading = capitalize(category)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", escape(heading))
	b.WriteString(recordList(recs, limit))
	return b.String()
}

// CategoryNotFound is the user-visible reply for an unknown category.
func CategoryNotFound(category string) string {
	return fmt.Sprintf("I don't have anything filed under %q right now. Type /help to see the sections I know.", category)
}

// SearchResults renders at most limit matches for a query.
func SearchResults(query string, matches []datastore.Match, limit int) string {
	if len(matches) == 0 {
		return fmt.Sprintf("I couldn't find anything matching %q. Try different words, or /plan and I'll suggest trips myself.", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Here is what I found for *%s*:\n", escape(query))
	shown := 0
	for _, m := range matches {
		if limit > 0 && shown >= limit {
			break
		}
		shown++
		fmt.Fprintf(&b, "\n%d. *%s* _(%s)_\n", shown, escape(m.Record.Name()), escape(m.Category))
		if desc := truncate(m.Record.Description(), descriptionLimit); desc != "" {
			fmt.Fprintf(&b, "%s\n", escape(desc))
		}
	}
	if rest := len(matches) - shown; rest > 0 {
		fmt.Fprintf(&b, "\n…and %d more. Try a narrower search.", rest)
	}
	return b.String()
}

// SearchUsage explains the /search command.
const SearchUsage = "Tell me what to look for, like `/search tiger's nest`."

// Recommendations renders the matched trips shown on confirmation.
func Recommendations(matches []recommend.Match, limit int) string {
	if len(matches) == 0 {
		return "I don't have a ready-made trip that fits exactly, but the Breathe Bhutan team loves building custom itineraries."
	}
	var b strings.Builder
	b.WriteString("These trips fit your plans best:\n")
	for i, m := range matches {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(&b, "\n%d. *%s* — %s days, %s\n", i+1,
			escape(m.Record.Name()), dayRange(m.Days), escape(strings.Join(m.Overlap, ", ")))
		if desc := truncate(m.Record.Description(), descriptionLimit); desc != "" {
			fmt.Fprintf(&b, "%s\n", escape(desc))
		}
	}
	return b.String()
}

// PlanSummary renders the confirmation-stage recap of the draft plan.
func PlanSummary(plan planner.DraftPlan) string {
	return fmt.Sprintf("Here is your plan so far:\n\n"+
		"• Duration: *%s days*\n"+
		"• Interests: *%s*\n"+
		"• Budget: *%s*",
		plan.Duration, escape(strings.Join(plan.Interests, ", ")), plan.Budget)
}

// Finalized thanks the traveller after successful delivery.
func Finalized(plan finalize.FinalizedPlan) string {
	return fmt.Sprintf("Wonderful! I've sent your plan to the Breathe Bhutan team — "+
		"they'll get back to you soon with a detailed proposal.\n\n"+
		"Your reference: `%s`", plan.RefID)
}

// FinalizedFollowUp covers the delivery-failed outcome: the plan is recorded,
// the team follows up manually.
func FinalizedFollowUp(plan finalize.FinalizedPlan) string {
	return fmt.Sprintf("Your plan is saved, but I couldn't reach the team right away — "+
		"we'll follow up with you manually.\n\n"+
		"Your reference: `%s`", plan.RefID)
}

// InquiryList renders the admin view of recent inquiries.
func InquiryList(rows []inquiry.Inquiry) string {
	if len(rows) == 0 {
		return "No inquiries yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*Recent inquiries* (%d)\n", len(rows))
	for _, row := range rows {
		name := row.FullName
		if name == "" && row.Username != "" {
			name = "@" + row.Username
		}
		if name == "" {
			name = fmt.Sprintf("user %d", row.UserID)
		}
		fmt.Fprintf(&b, "\n%s — *%s*\n", row.CreatedAt.Format("Jan 2 15:04"), escape(name))
		fmt.Fprintf(&b, "%s days, %s, %s — _%s_\n",
			row.Duration, escape(strings.Join(row.Interests, ", ")), row.Budget, row.Status)
		fmt.Fprintf(&b, "`%s`\n", row.RefID)
	}
	return b.String()
}

func recordList(recs []datastore.Record, limit int) string {
	if len(recs) == 0 {
		return "\nNothing here yet — check back soon."
	}
	var b strings.Builder
	shown := 0
	for _, rec := range recs {
		if limit > 0 && shown >= limit {
			break
		}
		name := rec.Name()
		if name == "" {
			continue
		}
		shown++
		fmt.Fprintf(&b, "\n%d. *%s*\n", shown, escape(name))
		if desc := truncate(rec.Description(), descriptionLimit); desc != "" {
			fmt.Fprintf(&b, "%s\n", escape(desc))
		}
	}
	if rest := len(recs) - shown; rest > 0 {
		fmt.Fprintf(&b, "\n…and %d more.", rest)
	}
	return b.String()
}

func dayRange(r recommend.DayRange) string {
	if r.Min == r.Max {
		return fmt.Sprintf("%d", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if i := strings.LastIndexByte(cut, ' '); i > limit/2 {
		cut = cut[:i]
	}
	return cut + "…"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func escape(s string) string {
	out, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return out
}
