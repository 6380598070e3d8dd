package bot

import (
	"context"
	"strings"

	"github.com/breathebhutan/tashi/core/telegram/commands"
	tghelpers "github.com/breathebhutan/tashi/core/telegram/helpers"
	"github.com/breathebhutan/tashi/travel/render"

	tele "gopkg.in/telebot.v4"
)

// categoryCommands maps browse commands to data store categories.
var categoryCommands = []struct {
	command     string
	category    string
	description string
}{
	{"/tours", "tours", "Cultural tours"},
	{"/festivals", "festivals", "Festival dates and stories"},
	{"/trekking", "trekking", "Trekking routes"},
	{"/itineraries", "itineraries", "Ready-made itineraries"},
	{"/experiences", "experiences", "Special experiences"},
	{"/reviews", "testimonials", "Traveller reviews"},
	{"/deals", "deals", "Current offers"},
	{"/about", "general", "About Breathe Bhutan"},
}

const categoryListLimit = 8

func (a *App) registerCommands() {
	a.registry.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Meet Tashi",
	})
	a.registry.RegisterCommand("/help", commands.Command{
		Handler: func(c tele.Context) error {
			return tghelpers.SendText(c, render.Help)
		},
		Description: "What Tashi can do",
	})
	a.registry.RegisterCommand("/plan", commands.Command{
		Handler:     a.handlePlan,
		Description: "Plan your trip step by step",
	})
	a.registry.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Stop the current planning dialogue",
	})
	a.registry.RegisterCommand("/reset", commands.Command{
		Handler:     a.handleReset,
		Description: "Start planning over from scratch",
	})
	a.registry.RegisterCommand("/search", commands.Command{
		Handler:     a.handleSearch,
		Description: "Search everything Tashi knows",
	})

	for _, cc := range categoryCommands {
		category := cc.category
		a.registry.RegisterCommand(cc.command, commands.Command{
			Handler: func(c tele.Context) error {
				return a.sendCategory(c, category)
			},
			Description: cc.description,
		})
	}

	a.registry.RegisterCommand("/inquiries", commands.Command{
		Handler:     a.handleInquiries,
		Description: "Recent travel inquiries",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) handleStart(c tele.Context) error {
	name := tghelpers.SenderIdentity(c).DisplayName()
	return tghelpers.SendMD(c, render.Welcome(name))
}

func (a *App) sendCategory(c tele.Context, category string) error {
	ctx := tghelpers.BuildContext(c)
	recs, err := a.store.Category(ctx, category)
	if err != nil {
		return tghelpers.SendText(c, render.CategoryNotFound(category))
	}
	return tghelpers.SendMD(c, render.CategoryList(category, recs, categoryListLimit))
}

func (a *App) handleSearch(c tele.Context) error {
	query := strings.TrimSpace(c.Message().Payload)
	if query == "" {
		return tghelpers.SendMD(c, render.SearchUsage)
	}
	text, _ := a.searchReply(tghelpers.BuildContext(c), query)
	return tghelpers.SendMD(c, text)
}

// searchReply renders the search response for a free-text query. found is
// false when nothing matched.
func (a *App) searchReply(ctx context.Context, query string) (text string, found bool) {
	matches := a.store.Search(ctx, query)
	return render.SearchResults(query, matches, categoryListLimit), len(matches) > 0
}

func (a *App) handleInquiries(c tele.Context) error {
	if a.inquiries == nil {
		return tghelpers.SendText(c, "Inquiry storage is not configured.")
	}
	ctx := tghelpers.BuildContext(c)
	rows, err := a.inquiries.Recent(ctx, 10)
	if err != nil {
		return tghelpers.SendText(c, "Could not read inquiries: "+err.Error())
	}
	return tghelpers.SendMD(c, render.InquiryList(rows))
}
