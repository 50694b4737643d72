// Package telegram connects the reaction pipeline to the Telegram Bot
// API via long polling.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mymmrac/telego"

	"github.com/nextlevelbuilder/autoreact/internal/auth"
	"github.com/nextlevelbuilder/autoreact/internal/config"
	"github.com/nextlevelbuilder/autoreact/internal/dispatch"
	"github.com/nextlevelbuilder/autoreact/internal/store"
)

// NewBot creates the telego bot from config, honoring an optional HTTP
// proxy.
func NewBot(cfg config.TelegramConfig) (*telego.Bot, error) {
	var opts []telego.BotOption

	if cfg.Proxy != "" {
		proxyURL, parseErr := url.Parse(cfg.Proxy)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, parseErr)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			},
		}))
	}

	bot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return bot, nil
}

// Deps are the channel's collaborators, wired in cmd.
type Deps struct {
	Stores     *store.Stores
	Dispatcher *dispatch.Dispatcher
	Resolver   *auth.Resolver
	Kill       *config.KillSwitch
}

// Channel receives Telegram updates and feeds messages to the
// dispatcher and admin commands to the command handlers.
type Channel struct {
	bot        *telego.Bot
	stores     *store.Stores
	dispatcher *dispatch.Dispatcher
	resolver   *auth.Resolver
	kill       *config.KillSwitch
	users      *userCache

	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

func New(bot *telego.Bot, deps Deps) *Channel {
	return &Channel{
		bot:        bot,
		stores:     deps.Stores,
		dispatcher: deps.Dispatcher,
		resolver:   deps.Resolver,
		kill:       deps.Kill,
		users:      newUserCache(),
	}
}

// Start begins long polling for Telegram updates. Each update is
// handled on its own goroutine so one chat's slow external calls never
// block another's.
func (c *Channel) Start(ctx context.Context) error {
	slog.Info("starting telegram bot (polling mode)")

	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel
	c.pollDone = make(chan struct{})

	updates, err := c.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	slog.Info("telegram bot connected", "username", c.bot.Username())

	go func() {
		if err := c.syncMenuCommands(pollCtx); err != nil {
			slog.Warn("failed to sync telegram menu commands", "error", err)
		}
	}()

	go func() {
		defer close(c.pollDone)
		for {
			select {
			case <-pollCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					slog.Info("telegram updates channel closed")
					return
				}
				if update.Message == nil {
					slog.Debug("telegram update skipped (no message)", "update_id", update.UpdateID)
					continue
				}
				go c.safeHandleMessage(pollCtx, update.Message)
			}
		}
	}()

	return nil
}

// safeHandleMessage isolates a single message's handler: a panic there
// must never take down the polling loop.
func (c *Channel) safeHandleMessage(ctx context.Context, message *telego.Message) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("message handler panicked", "chat_id", message.Chat.ID, "panic", r)
		}
	}()
	c.handleMessage(ctx, message)
}

// Stop shuts down the bot by cancelling the long polling context and
// waiting for the polling goroutine to exit.
func (c *Channel) Stop() {
	slog.Info("stopping telegram bot")

	if c.pollCancel != nil {
		c.pollCancel()
	}
	if c.pollDone != nil {
		select {
		case <-c.pollDone:
			slog.Info("telegram bot stopped")
		case <-time.After(10 * time.Second):
			slog.Warn("telegram polling goroutine did not exit within timeout")
		}
	}
}

func (c *Channel) syncMenuCommands(ctx context.Context) error {
	return c.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{
		Commands: []telego.BotCommand{
			{Command: "addreact", Description: "Add a reaction trigger (admin)"},
			{Command: "delreact", Description: "Remove a reaction trigger (admin)"},
			{Command: "reactlist", Description: "List reaction triggers"},
			{Command: "clearreact", Description: "Remove all reaction triggers (admin)"},
			{Command: "reactionon", Description: "Enable reactions in this chat (admin)"},
			{Command: "reactionoff", Description: "Disable reactions in this chat (admin)"},
			{Command: "reaction", Description: "Show reaction status"},
			{Command: "help", Description: "Show usage"},
		},
	})
}
