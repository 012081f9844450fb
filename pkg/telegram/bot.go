package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recibo/pkg/recibo"
	"recibo/pkg/services"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vmkteam/embedlog"
)

// promptTTL bounds how long an interactive delete prompt stays answerable.
const promptTTL = 5 * time.Minute

type Bot struct {
	api          *bot.Bot
	logger       embedlog.Logger
	manager      *recibo.Manager
	vision       services.Vision
	debug        bool
	stateManager *StateManager
}

type Config struct {
	Token       string
	Debug       bool
	OpenAIToken string
}

// New creates a new Telegram bot instance
func New(ctx context.Context, cfg Config, manager *recibo.Manager, logger embedlog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(defaultHandler(logger)),
	}

	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	api, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		api:          api,
		logger:       logger,
		manager:      manager,
		debug:        cfg.Debug,
		stateManager: NewStateManager(promptTTL),
		vision:       recibo.NewOpenAI(cfg.OpenAIToken),
	}

	// Register command handlers
	b.registerHandlers()

	return b, nil
}

// Start starts the bot with long polling
func (b *Bot) Start(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	b.logger.Print(ctx, "telegram bot started", "username", me.Username, "id", me.ID)
	b.api.Start(ctx)

	return nil
}

// Stop gracefully stops the bot
func (b *Bot) Stop(ctx context.Context) {
	b.logger.Print(ctx, "stopping telegram bot")
}

// SweepExpired deletes interactive prompts whose TTL has passed. Message
// deletion is best effort, Telegram may have already purged them.
func (b *Bot) SweepExpired(ctx context.Context) {
	for _, p := range b.stateManager.CollectExpired(time.Now()) {
		_, _ = b.api.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    p.ChatID,
			MessageID: p.MessageID,
		})
	}
}

// registerHandlers registers all command handlers
func (b *Bot) registerHandlers() {
	// Command handlers
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, b.handleStart)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/ajuda", bot.MatchTypeExact, b.handleHelp)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/total", bot.MatchTypeExact, b.handleTotal)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/limpar", bot.MatchTypeExact, b.handleClear)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/plano", bot.MatchTypeExact, b.handlePlan)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/assinar", bot.MatchTypeExact, b.handleSubscribe)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/apagar", bot.MatchTypePrefix, b.handleDelete)
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "/editar", bot.MatchTypePrefix, b.handleEdit)

	// Callback query handler for inline keyboards
	b.api.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, b.handleCallback)

	// Text message handler (for keyboard buttons)
	// This will also handle photo and document messages
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, b.handleMessage)
}

// defaultHandler handles unknown messages
func defaultHandler(logger embedlog.Logger) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message != nil {
			logger.Print(ctx, "unknown command", "text", update.Message.Text, "from", update.Message.From.Username)
			_, err := b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   "Comando desconhecido. Use /ajuda para ver os comandos disponíveis.",
			})
			if err != nil {
				logger.Error(ctx, "failed to send message", "err", err)
			}
		}
	}
}
