// Package bot holds the platform adapters. Each adapter translates raw
// platform events into normalized quiz events, hands them to the engine and
// renders the reply with the fixed quick-reply keyboard.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/korjavin/quizbot/quiz"
)

// Engine is the part of the conversation engine adapters depend on.
type Engine interface {
	Handle(ctx context.Context, ev quiz.Event) (quiz.Reply, error)
}

// Telegram runs the game over Telegram long polling.
type Telegram struct {
	api    *tgbotapi.BotAPI
	engine Engine
	logger *slog.Logger
}

// NewTelegram creates the Telegram adapter.
func NewTelegram(token string, engine Engine, logger *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Telegram{api: api, engine: engine, logger: logger}, nil
}

// Run polls for updates until ctx is cancelled. Each message is handled in
// its own goroutine; the engine serializes per-user mutations itself.
func (b *Telegram) Run(ctx context.Context) error {
	b.logger.Info("telegram_start", "bot_username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Telegram) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	userID := strconv.FormatInt(message.From.ID, 10)
	b.logger.Debug("telegram_message", "user_id", userID)

	ev := quiz.Event{UserID: userID, Text: message.Text}
	switch {
	case message.IsCommand() && message.Command() == "start":
		ev.Kind = quiz.EventStart
	case message.IsCommand() && message.Command() == "cancel":
		ev.Kind = quiz.EventCancel
	default:
		ev.Kind = quiz.KindForText(message.Text)
	}

	reply, err := b.engine.Handle(ctx, ev)
	if err != nil {
		// A store failure on one request must not take the bot down.
		b.logger.Error("engine_error", "user_id", userID, "error", err.Error())
		reply = quiz.Reply{Text: quiz.MsgStoreFailure}
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, reply.Text)
	if reply.RemoveKeyboard {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	} else {
		msg.ReplyMarkup = replyKeyboard()
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("telegram_send_error", "user_id", userID, "error", err.Error())
	}
}

func replyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	layout := quiz.KeyboardLayout()
	rows := make([][]tgbotapi.KeyboardButton, 0, len(layout))
	for _, labels := range layout {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}
