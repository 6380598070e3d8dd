package bot

import (
	"strings"

	tghelpers "github.com/breathebhutan/tashi/core/telegram/helpers"
	"github.com/breathebhutan/tashi/core/telegram/ui"
	"github.com/breathebhutan/tashi/travel/render"

	tele "gopkg.in/telebot.v4"
)

// fallbacks answers updates that map to no command, stage, or known button.
// Free text outside the planning dialogue is treated as a search query, so
// "tiger's nest" works without the /search prefix.
type fallbacks struct {
	app *App
}

var _ ui.FallbackProvider = fallbacks{}

func (f fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		query := strings.TrimSpace(c.Text())
		if query == "" {
			return tghelpers.SendText(c, render.UnknownInput)
		}
		if text, found := f.app.searchReply(tghelpers.BuildContext(c), query); found {
			return tghelpers.SendMD(c, text)
		}
		return tghelpers.SendText(c, render.UnknownInput)
	}
}

func (fallbacks) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, "I can only read text for now — tell me in words what you're looking for.")
	}
}

func (fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, render.StalePlanButton)
	}
}
