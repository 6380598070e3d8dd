package telegram

import (
	tele "gopkg.in/telebot.v4"
)

// SetupCommands publishes the registry's visible commands to the bot command menu.
// Handlers themselves are bound through Routes; this only syncs the menu.
func SetupCommands(bot *tele.Bot, reg *Registry) {
	if bot == nil || reg == nil {
		return
	}
	InitBotCommands(bot, reg)
}
