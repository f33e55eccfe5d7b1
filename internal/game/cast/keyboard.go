// Package cast keyboard and message builders for the Telegram surface.
package cast

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"
)

const (
	// CallbackPrefix is the prefix for all cast callback data.
	CallbackPrefix = "cast_"
)

// EncodeCallback encodes a strike control for the given session.
func EncodeCallback(sessionID string) string {
	return CallbackPrefix + "strike_" + sessionID
}

// DecodeCallback decodes callback data into action and session id.
func DecodeCallback(data string) (action, sessionID string) {
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", ""
	}
	content := strings.TrimPrefix(data, CallbackPrefix)
	parts := strings.SplitN(content, "_", 2)
	action = parts[0]
	if len(parts) > 1 {
		sessionID = parts[1]
	}
	return action, sessionID
}

// WaitingKeyboard is the armed-state control. Telegram cannot disable inline
// buttons, so premature strikes are rejected by the session guard instead.
func WaitingKeyboard(sessionID string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{{
			{Text: "No bites yet...", Data: EncodeCallback(sessionID)},
		}},
	}
}

// LiveKeyboard is the bite-available control.
func LiveKeyboard(sessionID string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{{
			{Text: "\U0001F41F It appears!", Data: EncodeCallback(sessionID)},
		}},
	}
}

// DoneKeyboard removes all controls from a terminal session's message.
func DoneKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{}}
}

// FormatCast is the initial message for a fresh session.
func FormatCast() string {
	return "\U0001F3A3 Your line has been cast!"
}

// FormatSuccess formats a successful resolution summary.
func FormatSuccess(out Outcome) string {
	msg := fmt.Sprintf("Well done! You reeled in after just %.2f seconds.", out.Reaction.Seconds())
	if out.Reward.Item {
		name := fmt.Sprintf("%s %s", out.Reward.Rating, out.Reward.Type)
		msg += fmt.Sprintf("\nYou found %s `%s`!", indefiniteArticle(name), name)
	} else {
		msg += "\nYou got a fish!"
	}
	return msg
}

// FormatFailure formats a too-slow resolution summary.
func FormatFailure() string {
	return "The fish appears to have gotten away thanks to your sluggish reaction time. " +
		"Next time you must be faster."
}

// FormatExpired formats the no-strike timeout summary.
func FormatExpired() string {
	return "Your line came back empty. Nothing was interested today."
}

// FormatNotYours is the rejection notice for non-owner strikes.
func FormatNotYours() string {
	return "That is not your line!"
}

// FormatStorageError is the generic failure notice when a payout write
// fails. The session itself has already resolved.
func FormatStorageError() string {
	return "⚠ Something went wrong recording your catch. Please try again later."
}

func indefiniteArticle(name string) string {
	if name == "" {
		return "a"
	}
	switch name[0] {
	case 'A', 'E', 'I', 'O', 'U', 'a', 'e', 'i', 'o', 'u':
		return "an"
	}
	return "a"
}
