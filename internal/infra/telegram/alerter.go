// Package telegram sends operational alerts about failed job runs to an
// admin chat.
package telegram

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/telebot.v3"
)

// Alerter implements alert.Client over a Telegram bot.
type Alerter struct {
	bot         *telebot.Bot
	adminChatID int64
}

func NewAlerter(token string, adminChatID int64) (*Alerter, error) {
	pref := telebot.Settings{
		Token:  token,
		Poller: nil, // send-only, no update polling
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot for alerting: %w", err)
	}
	return &Alerter{bot: bot, adminChatID: adminChatID}, nil
}

// Notify sends the alert text to the admin chat. The context deadline is not
// threaded through telebot; a failed send surfaces as an error for the
// caller to log.
func (a *Alerter) Notify(ctx context.Context, text string) error {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		return ctx.Err()
	}
	_, err := a.bot.Send(telebot.ChatID(a.adminChatID), text)
	if err != nil {
		return fmt.Errorf("failed to send Telegram alert: %w", err)
	}
	return nil
}
