// Package bot wires the Telegram transport to the conversation state machine
// and the Blogger publisher.
package bot

import (
	"context"
	"errors"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"blogger_movie_post_bot/post"
	"blogger_movie_post_bot/publisher"
	"blogger_movie_post_bot/server"
	"blogger_movie_post_bot/template"
)

// Bot is the long-polling Telegram frontend.
type Bot struct {
	api   *tgbotapi.BotAPI
	store *post.Store
	tmpl  *template.Template
	pub   *publisher.Publisher
	agent *post.Agent // nil when no LLM is configured
	// authListen is the callback server address for /auth (":8080" default).
	authListen string
	verbose    bool
	logger     *log.Logger

	// authMu guards the pending one-shot OAuth callback server.
	authMu sync.Mutex
	auth   *server.Server
}

// New authenticates against the Telegram Bot API. agent may be nil; authListen
// may be empty for the default callback port.
func New(token string, tmpl *template.Template, pub *publisher.Publisher, agent *post.Agent, authListen string, verbose bool, logger *log.Logger) (*Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if tmpl == nil || pub == nil {
		return nil, errors.New("template and publisher are required")
	}
	if logger == nil {
		logger = log.Default()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Printf("authorized as @%s", api.Self.UserName)

	return &Bot{
		api:        api,
		store:      post.NewStore(),
		tmpl:       tmpl,
		pub:        pub,
		agent:      agent,
		authListen: authListen,
		verbose:    verbose,
		logger:     logger,
	}, nil
}

func (b *Bot) infof(format string, args ...interface{}) {
	if !b.verbose {
		return
	}
	b.logger.Printf("[INFO] "+format, args...)
}

// Start runs the polling loop until ctx is cancelled. Updates from different
// users run concurrently; each user's session only sees one update at a time
// because Telegram delivers a user's messages in order and every update is
// handled to completion.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Printf("send failed: %v", err)
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Printf("send failed: %v", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Printf("edit failed: %v", err)
	}
}
