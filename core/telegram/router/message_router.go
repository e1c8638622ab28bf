package router

import (
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/ribbonbot/core/telegram"
	"github.com/m3rciful/ribbonbot/core/telegram/middleware"
)

// Dialogs routes free-form input to whichever per-identity flow currently owns it.
// A claim result of false means no active flow expected the update.
type Dialogs interface {
	ClaimText(c tele.Context) (bool, error)
	ClaimPhoto(c tele.Context) (bool, error)
}

// TextOptions controls fallback behaviour for text/photo updates.
type TextOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownPhoto tele.HandlerFunc
}

// TextRoutes builds handlers for text and photo routing.
// Dialog flows are consulted first; unclaimed text falls through to command
// aliases and then the registry fallback. Unclaimed updates are dropped
// silently: stray text with no active flow is expected, not an error.
func TextRoutes(dialogs Dialogs, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if dialogs != nil {
			claimed, err := dialogs.ClaimText(c)
			if claimed || err != nil {
				return handleWithSummary(c, "dialog", start, "", func() error {
					return err
				})
			}
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	photoHandler := func(c tele.Context) error {
		start := time.Now()
		if dialogs != nil {
			claimed, err := dialogs.ClaimPhoto(c)
			if claimed || err != nil {
				return handleWithSummary(c, "dialog_photo", start, "", func() error {
					return err
				})
			}
		}
		if opts.UnknownPhoto != nil {
			return handleWithSummary(c, "unexpected_photo", start, "", func() error {
				return opts.UnknownPhoto(c)
			})
		}
		logHandlerSummary(c, "unexpected_photo", start, "skip", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
		{
			Endpoint: tele.OnPhoto,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(photoHandler)),
		},
	}
}
