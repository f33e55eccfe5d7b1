// Package inventory keyboard builders for the Telegram surface.
package inventory

import (
	"strings"

	tele "gopkg.in/telebot.v3"
)

const (
	// CallbackPrefix is the prefix for all inventory callback data.
	CallbackPrefix = "inv_"

	// ActionNoop marks a visually disabled control; clicks on it are
	// acknowledged and ignored.
	ActionNoop = "noop"
)

// EncodeCallback encodes a paging control for the given session.
func EncodeCallback(action, sessionID string) string {
	return CallbackPrefix + action + "_" + sessionID
}

// DecodeCallback decodes callback data into action and session id.
func DecodeCallback(data string) (action, sessionID string) {
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", ""
	}
	parts := strings.SplitN(strings.TrimPrefix(data, CallbackPrefix), "_", 2)
	action = parts[0]
	if len(parts) > 1 {
		sessionID = parts[1]
	}
	return action, sessionID
}

// BuildControls renders the back / halt / forward row. Controls disabled by
// the page bounds (or by a halt) route to the noop action, since Telegram
// inline buttons cannot be greyed out.
func BuildControls(v View) *tele.ReplyMarkup {
	back := tele.InlineButton{Text: "\U0001F448", Data: EncodeCallback(ActionNoop, v.ID)}
	if v.BackEnabled {
		back.Data = EncodeCallback("back", v.ID)
	}
	halt := tele.InlineButton{Text: "✋", Data: EncodeCallback(ActionNoop, v.ID)}
	if !v.Halted {
		halt.Data = EncodeCallback("halt", v.ID)
	}
	forward := tele.InlineButton{Text: "\U0001F449", Data: EncodeCallback(ActionNoop, v.ID)}
	if v.ForwardEnabled {
		forward.Data = EncodeCallback("fwd", v.ID)
	}

	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{{back, halt, forward}},
	}
}

// FormatEmpty is the reply when the user owns nothing.
func FormatEmpty() string {
	return "You do not own any items!"
}

// FormatNotYours is the rejection notice for non-owner clicks.
func FormatNotYours() string {
	return "These are not your items!"
}
