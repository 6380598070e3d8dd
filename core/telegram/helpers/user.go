package helpers

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Identity captures who sent the current update, as far as Telegram tells us.
type Identity struct {
	ID       int64
	Username string
	FullName string
}

// SenderIdentity extracts the sender's identity from the current update.
// The zero Identity is returned for updates without a sender.
func SenderIdentity(c tele.Context) Identity {
	if c == nil {
		return Identity{}
	}
	user := c.Sender()
	if user == nil {
		return Identity{}
	}
	return Identity{
		ID:       user.ID,
		Username: user.Username,
		FullName: composeFullName(user.FirstName, user.LastName),
	}
}

func composeFullName(first, last string) string {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// DisplayName returns the best human-readable name for the identity.
func (id Identity) DisplayName() string {
	if id.FullName != "" {
		return id.FullName
	}
	if id.Username != "" {
		return "@" + id.Username
	}
	return "traveller"
}
