// Package telegram is a reference push.Channel implementation over
// the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Channel pushes events to Telegram chats. Session ids are mapped to
// Telegram chat ids via Bind, populated by the transport's inbound
// handler — out of scope here.
type Channel struct {
	bot *tgbotapi.BotAPI

	mu    sync.RWMutex
	chats map[string]int64
}

// New builds a Channel from an already-authenticated bot client.
func New(bot *tgbotapi.BotAPI) *Channel {
	return &Channel{bot: bot, chats: make(map[string]int64)}
}

// Bind associates a session id with the Telegram chat id that should
// receive its pushes.
func (c *Channel) Bind(sessionID string, chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chats[sessionID] = chatID
}

func (c *Channel) chatID(sessionID string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.chats[sessionID]
	return id, ok
}

// VoiceFileReady implements push.Channel by uploading the rendered
// audio fragment as a voice message.
func (c *Channel) VoiceFileReady(_ context.Context, filename string, index int, isLast bool, targetSessionID string) error {
	chatID, ok := c.chatID(targetSessionID)
	if !ok {
		return fmt.Errorf("telegram push: no chat bound for session %s", targetSessionID)
	}
	voice := tgbotapi.NewVoice(chatID, tgbotapi.FilePath(filename))
	if isLast {
		voice.Caption = "fragment " + strconv.Itoa(index) + " (final)"
	}
	_, err := c.bot.Send(voice)
	return err
}

// InactivityReminder implements push.Channel.
func (c *Channel) InactivityReminder(_ context.Context, targetSessionID, response string) error {
	chatID, ok := c.chatID(targetSessionID)
	if !ok {
		return fmt.Errorf("telegram push: no chat bound for session %s", targetSessionID)
	}
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, response))
	return err
}

// SessionActivated implements push.Channel. Telegram has no signaling
// channel, so activation is a silent no-op rather than a user-visible
// message.
func (c *Channel) SessionActivated(_ context.Context, _ string) error {
	return nil
}
