// Package pond keyboard and message builders for the Telegram surface.
package pond

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-fishing-bot/internal/game/reward"
)

const (
	// CallbackPrefix is the prefix for all pond callback data.
	CallbackPrefix = "pond_"
)

// Cell button labels: untouched water, partially revealed water, the three
// frozen contents, and blank scenery before/after its one-shot click.
const (
	labelConcealed = "\U0001F30A"
	labelRippling  = "\U0001F4A7"
	labelCatch     = "\U0001F41F"
	labelJunk      = "\U0001F97E"
	labelHazard    = "\U0001F988"
	labelBlank     = "・"
	labelUsedBlank = "✨"
)

// EncodeCallback encodes a reveal control for one cell of a session.
func EncodeCallback(sessionID string, cell int) string {
	return fmt.Sprintf("%sreveal_%s_%d", CallbackPrefix, sessionID, cell)
}

// DecodeCallback decodes callback data into action, session id and cell
// index. A missing or malformed cell index comes back as -1.
func DecodeCallback(data string) (action, sessionID string, cell int) {
	cell = -1
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", "", cell
	}
	parts := strings.SplitN(strings.TrimPrefix(data, CallbackPrefix), "_", 3)
	action = parts[0]
	if len(parts) > 1 {
		sessionID = parts[1]
	}
	if len(parts) > 2 {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			cell = n
		}
	}
	return action, sessionID, cell
}

// BuildGrid renders the session grid as an inline keyboard, one button per
// cell. Frozen and ended cells keep their buttons; the session guard turns
// stale clicks into no-ops.
func BuildGrid(v View) *tele.ReplyMarkup {
	rows := make([][]tele.InlineButton, 0, v.Rows)
	for r := 0; r < v.Rows; r++ {
		row := make([]tele.InlineButton, 0, v.Cols)
		for c := 0; c < v.Cols; c++ {
			i := r*v.Cols + c
			row = append(row, tele.InlineButton{
				Text: cellLabel(v.Cells[i]),
				Data: EncodeCallback(v.ID, i),
			})
		}
		rows = append(rows, row)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

// cellLabel picks the display glyph for one cell.
func cellLabel(c CellView) string {
	if c.Kind == KindDecorative {
		if c.Icon != "" {
			return c.Icon
		}
		if c.Used {
			return labelUsedBlank
		}
		return labelBlank
	}
	if c.Frozen {
		switch c.Content.Kind {
		case reward.ContentHazard:
			return labelHazard
		case reward.ContentJunk:
			return labelJunk
		default:
			return labelCatch
		}
	}
	if c.Touched {
		return labelRippling
	}
	return labelConcealed
}

// FormatPanel is the header text above the grid.
func FormatPanel(v View) string {
	return fmt.Sprintf("\U0001F3A3 The pond\nTries left: %d | Score: %d", v.Tries, v.Score)
}

// FormatReveal describes a single frozen cell for the turn notice.
func FormatReveal(content reward.CellContent) string {
	switch content.Kind {
	case reward.ContentHazard:
		return fmt.Sprintf("A %s! It scattered everything!", content.Name)
	case reward.ContentJunk:
		return fmt.Sprintf("Just %s...", indefinite(content.Name))
	default:
		return fmt.Sprintf("You hauled up %s worth %d!", indefinite(content.Name), content.Value)
	}
}

// FormatSummary is the terminal message for any end reason.
func FormatSummary(v View, payout int) string {
	var msg string
	switch v.Reason {
	case EndHazard:
		msg = "\U0001F988 A shark tore through the pond and the fish scattered!\n"
	case EndCompleted:
		msg = "\U0001F3C1 You are out of tries. Time to pack up.\n"
	case EndTimeout:
		msg = "⏰ The pond froze over while you dawdled.\n"
	}

	msg += fmt.Sprintf("Final score: %d", v.Score)
	if payout > 0 {
		msg += fmt.Sprintf("\nYou take home %d fish.", payout)
	} else if v.Reason == EndTimeout {
		msg += "\nNothing to take home."
	}

	if len(v.Log) > 0 {
		msg += "\nSeen: " + strings.Join(v.Log, ", ")
	}
	return msg
}

// FormatNotYours is the rejection notice for non-owner clicks.
func FormatNotYours() string {
	return "This is not your pond!"
}

// FormatStorageError is the generic failure notice when the payout write
// fails. The session itself has already ended.
func FormatStorageError() string {
	return "⚠ Something went wrong recording your haul. Please try again later."
}

func indefinite(name string) string {
	if name == "" {
		return "something"
	}
	switch name[0] {
	case 'A', 'E', 'I', 'O', 'U', 'a', 'e', 'i', 'o', 'u':
		return "an " + name
	}
	return "a " + name
}
