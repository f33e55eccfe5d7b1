// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-fishing-bot/internal/config"
	"telegram-fishing-bot/internal/game/cast"
	"telegram-fishing-bot/internal/game/inventory"
	"telegram-fishing-bot/internal/game/pond"
	"telegram-fishing-bot/internal/handler"
	"telegram-fishing-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	fishingHandler *handler.FishingHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config         *config.Config
	FishingService *service.FishingService
	CastManager    *cast.Manager
	PondManager    *pond.Manager
	PageManager    *inventory.Manager
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot: teleBot,
		cfg: deps.Config,
	}

	b.fishingHandler = handler.NewFishingHandler(
		deps.Config,
		deps.FishingService,
		deps.CastManager,
		deps.PondManager,
		deps.PageManager,
	)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(RecoveryMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/cast", b.fishingHandler.HandleCast)
	b.bot.Handle("/pond", b.fishingHandler.HandlePond)
	b.bot.Handle("/items", b.fishingHandler.HandleItems)
	b.bot.Handle("/stats", b.fishingHandler.HandleStats)

	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes callbacks to the owning handler by data prefix.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data
	data := strings.TrimPrefix(callback.Data, "\f")

	switch {
	case strings.HasPrefix(data, cast.CallbackPrefix):
		return b.fishingHandler.HandleCastCallback(c)
	case strings.HasPrefix(data, pond.CallbackPrefix):
		return b.fishingHandler.HandlePondCallback(c)
	case strings.HasPrefix(data, inventory.CallbackPrefix):
		return b.fishingHandler.HandleInventoryCallback(c)
	default:
		log.Debug().Str("data", data).Msg("Callback with unknown prefix")
		return c.Respond(&tele.CallbackResponse{})
	}
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

// GetBot returns the underlying telebot instance.
func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}
