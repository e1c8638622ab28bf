// Package bot binds the dialog flows to the Telegram transport: it renders
// product cards, translates callback taps into flow calls, and delivers flow
// notifications back through the bot API.
package bot

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/ribbonbot/core/telegram/keyboard"
	"github.com/m3rciful/ribbonbot/internal/notify"
)

// Notifier delivers flow messages over the Telegram bot API. The bot handle
// only exists once the runtime is up, so Bind is called from the start hook;
// sends before binding are rejected rather than queued.
type Notifier struct {
	bot atomic.Pointer[tele.Bot]
}

// NewNotifier creates an unbound Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Bind attaches the live bot handle.
func (n *Notifier) Bind(b *tele.Bot) {
	n.bot.Store(b)
}

// SendText delivers plain HTML text with optional control rows.
func (n *Notifier) SendText(_ context.Context, identity int64, text string, rows ...notify.Row) error {
	b := n.bot.Load()
	if b == nil {
		return fmt.Errorf("notifier: bot not bound")
	}
	_, err := b.Send(&tele.User{ID: identity}, text, sendOptions(rows))
	return err
}

// SendImage delivers a photo with an HTML caption and optional control rows.
func (n *Notifier) SendImage(_ context.Context, identity int64, photoRef, caption string, rows ...notify.Row) error {
	b := n.bot.Load()
	if b == nil {
		return fmt.Errorf("notifier: bot not bound")
	}
	photo := &tele.Photo{File: fileFor(photoRef), Caption: caption}
	_, err := b.Send(&tele.User{ID: identity}, photo, sendOptions(rows))
	return err
}

func sendOptions(rows []notify.Row) *tele.SendOptions {
	return &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: controlMarkup(rows)}
}

// controlMarkup turns flow control rows into an inline keyboard.
func controlMarkup(rows []notify.Row) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	btnRows := make([][]keyboard.InlineBtn, 0, len(rows))
	for _, row := range rows {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, ctl := range row {
			btns = append(btns, keyboard.InlineBtn{
				Text:   ctl.Label,
				Unique: ctl.Action,
				Data:   ctl.Data,
			})
		}
		btnRows = append(btnRows, btns)
	}
	return keyboard.InlineButtonsRows(btnRows...)
}

// fileFor resolves a photo reference: an existing path is uploaded from disk,
// anything else is treated as a Telegram file id or URL.
func fileFor(ref string) tele.File {
	if _, err := os.Stat(ref); err == nil {
		return tele.FromDisk(ref)
	}
	return tele.File{FileID: ref}
}
