// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-fishing-bot/internal/config"
	"telegram-fishing-bot/internal/game/cast"
	"telegram-fishing-bot/internal/game/inventory"
	"telegram-fishing-bot/internal/game/pond"
	"telegram-fishing-bot/internal/service"
)

// FishingHandler handles the fishing commands and their callbacks.
type FishingHandler struct {
	cfg     *config.Config
	fishing *service.FishingService
	casts   *cast.Manager
	ponds   *pond.Manager
	pages   *inventory.Manager

	castTimes sync.Map // map[int64][]time.Time, recent /cast starts
}

// NewFishingHandler creates a new FishingHandler.
func NewFishingHandler(
	cfg *config.Config,
	fishing *service.FishingService,
	casts *cast.Manager,
	ponds *pond.Manager,
	pages *inventory.Manager,
) *FishingHandler {
	return &FishingHandler{
		cfg:     cfg,
		fishing: fishing,
		casts:   casts,
		ponds:   ponds,
		pages:   pages,
	}
}

// senderName prefers the username, falling back to the first name.
func senderName(sender *tele.User) string {
	if sender.Username != "" {
		return sender.Username
	}
	return sender.FirstName
}

// checkCastCooldown enforces the rate of CooldownCasts starts per
// CooldownSeconds. Returns remaining seconds if throttled, 0 otherwise.
func (h *FishingHandler) checkCastCooldown(userID int64) int {
	window := time.Duration(h.cfg.Cast.CooldownSeconds) * time.Second
	limit := h.cfg.Cast.CooldownCasts
	if limit <= 0 || window <= 0 {
		return 0
	}

	now := time.Now()
	var recent []time.Time
	if v, ok := h.castTimes.Load(userID); ok {
		for _, ts := range v.([]time.Time) {
			if now.Sub(ts) < window {
				recent = append(recent, ts)
			}
		}
	}

	if len(recent) >= limit {
		remaining := window - now.Sub(recent[0])
		h.castTimes.Store(userID, recent)
		return int(remaining.Seconds()) + 1
	}

	recent = append(recent, now)
	h.castTimes.Store(userID, recent)
	return 0
}

// HandleCast handles the /cast command: arm a timed session, announce the
// bite after a hidden delay, expire it if the user never strikes.
func (h *FishingHandler) HandleCast(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}

	if remaining := h.checkCastCooldown(sender.ID); remaining > 0 {
		return c.Reply(fmt.Sprintf("⏰ The fish need a break. Try again in %d seconds.", remaining))
	}

	if err := h.fishing.EnsureAngler(ctx, sender.ID, senderName(sender)); err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to register angler")
		return c.Reply(cast.FormatStorageError())
	}

	s := h.casts.Start(sender.ID, chat.ID)

	msg, err := c.Bot().Send(chat, cast.FormatCast(), cast.WaitingKeyboard(s.ID))
	if err != nil {
		h.casts.Expire(s.ID)
		return err
	}

	go h.scheduleBite(c.Bot(), msg, s.ID, s.Delay)
	go h.scheduleCastExpiry(c.Bot(), msg, s.ID)

	return nil
}

// scheduleBite flips the session live after its hidden delay and swaps the
// keyboard. A session already resolved or expired is left alone.
func (h *FishingHandler) scheduleBite(bot *tele.Bot, msg *tele.Message, sessionID string, delay time.Duration) {
	time.Sleep(delay)

	if !h.casts.Bite(sessionID, time.Now()) {
		return
	}
	if _, err := bot.Edit(msg, cast.FormatCast(), cast.LiveKeyboard(sessionID)); err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("Failed to edit cast message on bite")
	}
}

// scheduleCastExpiry closes the session if no strike resolved it within the
// session timeout.
func (h *FishingHandler) scheduleCastExpiry(bot *tele.Bot, msg *tele.Message, sessionID string) {
	time.Sleep(h.castTimeout())

	if !h.casts.Expire(sessionID) {
		return
	}
	if _, err := bot.Edit(msg, cast.FormatExpired(), cast.DoneKeyboard()); err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("Failed to edit cast message on expiry")
	}
}

func (h *FishingHandler) castTimeout() time.Duration {
	secs := h.cfg.Cast.SessionTimeoutSeconds
	if secs <= 0 {
		secs = 30
	}
	return time.Duration(secs) * time.Second
}

// HandleCastCallback handles strike button clicks.
func (h *FishingHandler) HandleCastCallback(c tele.Context) error {
	ctx := context.Background()
	callback := c.Callback()
	sender := c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	action, sessionID := cast.DecodeCallback(strings.TrimPrefix(callback.Data, "\f"))
	if action != "strike" || sessionID == "" {
		return c.Respond(&tele.CallbackResponse{})
	}

	out, err := h.casts.Strike(sessionID, sender.ID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, cast.ErrNotOwner):
			return c.Respond(&tele.CallbackResponse{
				Text:      cast.FormatNotYours(),
				ShowAlert: true,
			})
		case errors.Is(err, cast.ErrNotLive), errors.Is(err, cast.ErrSessionNotFound):
			// Premature, repeated or stale click; acknowledge silently.
			return c.Respond(&tele.CallbackResponse{})
		default:
			return c.Respond(&tele.CallbackResponse{})
		}
	}

	text := cast.FormatFailure()
	if out.Success {
		// The write must land before the summary goes out.
		if err := h.fishing.AwardCatch(ctx, sender.ID, out.Reward); err != nil {
			log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to store cast reward")
			text = cast.FormatStorageError()
		} else {
			text = cast.FormatSuccess(out)
		}
	}

	if callback.Message != nil {
		if _, err := c.Bot().Edit(callback.Message, text, cast.DoneKeyboard()); err != nil {
			log.Debug().Err(err).Str("session_id", sessionID).Msg("Failed to edit cast result")
		}
	}
	return c.Respond(&tele.CallbackResponse{})
}

// HandlePond handles the /pond command: roll a fresh grid and post it.
func (h *FishingHandler) HandlePond(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}

	if err := h.fishing.EnsureAngler(ctx, sender.ID, senderName(sender)); err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to register angler")
		return c.Reply(pond.FormatStorageError())
	}

	v := h.ponds.Start(sender.ID, chat.ID)

	msg, err := c.Bot().Send(chat, pond.FormatPanel(v), pond.BuildGrid(v))
	if err != nil {
		h.ponds.Remove(v.ID)
		return err
	}

	go h.schedulePondExpiry(c.Bot(), msg, v.ID)

	return nil
}

// schedulePondExpiry times out a pond session that is still open.
func (h *FishingHandler) schedulePondExpiry(bot *tele.Bot, msg *tele.Message, sessionID string) {
	secs := h.cfg.Pond.SessionTimeoutSeconds
	if secs <= 0 {
		secs = 60
	}
	time.Sleep(time.Duration(secs) * time.Second)

	v, expired := h.ponds.Expire(sessionID)
	if !expired {
		return
	}
	h.ponds.Remove(sessionID)

	if _, err := bot.Edit(msg, pond.FormatSummary(v, 0), pond.BuildGrid(v)); err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("Failed to edit pond message on expiry")
	}
}

// HandlePondCallback handles grid cell clicks.
func (h *FishingHandler) HandlePondCallback(c tele.Context) error {
	ctx := context.Background()
	callback := c.Callback()
	sender := c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	action, sessionID, cell := pond.DecodeCallback(strings.TrimPrefix(callback.Data, "\f"))
	if action != "reveal" || sessionID == "" || cell < 0 {
		return c.Respond(&tele.CallbackResponse{})
	}

	res, err := h.ponds.Reveal(sessionID, cell, sender.ID)
	if err != nil {
		switch {
		case errors.Is(err, pond.ErrNotOwner):
			return c.Respond(&tele.CallbackResponse{
				Text:      pond.FormatNotYours(),
				ShowAlert: true,
			})
		default:
			// Stale cell, ended session or bad index; acknowledge silently.
			return c.Respond(&tele.CallbackResponse{})
		}
	}

	text := pond.FormatPanel(res.View)
	if res.View.Ended {
		h.ponds.Remove(sessionID)

		// The payout write must land before the summary goes out.
		if err := h.fishing.AwardPondScore(ctx, sender.ID, int64(res.Payout)); err != nil {
			log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to store pond payout")
			text = pond.FormatStorageError()
		} else {
			text = pond.FormatSummary(res.View, res.Payout)
		}
	}

	if callback.Message != nil {
		if _, err := c.Bot().Edit(callback.Message, text, pond.BuildGrid(res.View)); err != nil {
			log.Debug().Err(err).Str("session_id", sessionID).Msg("Failed to edit pond grid")
		}
	}

	if res.FrozeCell {
		return c.Respond(&tele.CallbackResponse{Text: pond.FormatReveal(res.Content)})
	}
	return c.Respond(&tele.CallbackResponse{})
}

// HandleItems handles the /items command: list the collection, paginated
// past one page.
func (h *FishingHandler) HandleItems(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}

	items, err := h.fishing.Items(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to list items")
		return c.Reply(cast.FormatStorageError())
	}

	if len(items) == 0 {
		return c.Reply(inventory.FormatEmpty())
	}

	if len(items) <= inventory.PageSize {
		return c.Reply(inventory.PageText(items, 0), tele.ModeMarkdown)
	}

	v := h.pages.Start(sender.ID, items)

	msg, err := c.Bot().Send(chat, v.Text, inventory.BuildControls(v), tele.ModeMarkdown)
	if err != nil {
		h.pages.Remove(v.ID)
		return err
	}

	go h.scheduleInventoryExpiry(c.Bot(), msg, v.ID)

	return nil
}

// scheduleInventoryExpiry freezes an idle paginator after the timeout.
func (h *FishingHandler) scheduleInventoryExpiry(bot *tele.Bot, msg *tele.Message, sessionID string) {
	secs := h.cfg.Inventory.TimeoutSeconds
	if secs <= 0 {
		secs = 180
	}
	time.Sleep(time.Duration(secs) * time.Second)

	v, expired := h.pages.Expire(sessionID)
	if !expired {
		return
	}
	h.pages.Remove(sessionID)

	if _, err := bot.Edit(msg, v.Text, inventory.BuildControls(v), tele.ModeMarkdown); err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("Failed to edit paginator on expiry")
	}
}

// HandleInventoryCallback handles paginator control clicks.
func (h *FishingHandler) HandleInventoryCallback(c tele.Context) error {
	callback := c.Callback()
	sender := c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	action, sessionID := inventory.DecodeCallback(strings.TrimPrefix(callback.Data, "\f"))
	if action == "" || sessionID == "" || action == inventory.ActionNoop {
		return c.Respond(&tele.CallbackResponse{})
	}

	var v inventory.View
	var err error
	switch action {
	case "back":
		v, err = h.pages.Back(sessionID, sender.ID)
	case "fwd":
		v, err = h.pages.Forward(sessionID, sender.ID)
	case "halt":
		v, err = h.pages.Halt(sessionID, sender.ID)
	default:
		return c.Respond(&tele.CallbackResponse{})
	}

	if err != nil {
		if errors.Is(err, inventory.ErrNotOwner) {
			return c.Respond(&tele.CallbackResponse{
				Text:      inventory.FormatNotYours(),
				ShowAlert: true,
			})
		}
		// Edge click or halted paginator; acknowledge silently.
		return c.Respond(&tele.CallbackResponse{})
	}

	if action == "halt" {
		h.pages.Remove(sessionID)
	}

	if callback.Message != nil {
		if _, err := c.Bot().Edit(callback.Message, v.Text, inventory.BuildControls(v), tele.ModeMarkdown); err != nil {
			log.Debug().Err(err).Str("session_id", sessionID).Msg("Failed to edit paginator")
		}
	}
	return c.Respond(&tele.CallbackResponse{})
}

// HandleStats handles the /stats command.
func (h *FishingHandler) HandleStats(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if err := h.fishing.EnsureAngler(ctx, sender.ID, senderName(sender)); err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to register angler")
		return c.Reply(cast.FormatStorageError())
	}

	user, err := h.fishing.Stats(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load stats")
		return c.Reply(cast.FormatStorageError())
	}

	items, err := h.fishing.Items(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to count items")
		return c.Reply(cast.FormatStorageError())
	}

	msg := fmt.Sprintf(
		"\U0001F3A3 @%s\n\U0001F41F Fish: %d\n\U0001F4E6 Items: %d\n\U0001FA99 Balance: %d\n⭐ XP: %d",
		user.Username, user.Fish, len(items), user.Balance, user.XP,
	)
	return c.Reply(msg)
}
