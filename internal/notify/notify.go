// Package notify abstracts outbound chat delivery for the dialog flows.
package notify

import "context"

// Control is an opaque labeled action rendered as an inline button. When the
// recipient activates it, the transport delivers a callback event carrying
// Action and Data back to the router.
type Control struct {
	Label  string
	Action string
	Data   string
}

// Row groups controls rendered side by side.
type Row []Control

// Sender delivers messages to a chat identity. Implementations live at the
// transport edge; flows stay free of telegram types so they can be tested
// against a fake.
type Sender interface {
	SendText(ctx context.Context, identity int64, text string, rows ...Row) error
	SendImage(ctx context.Context, identity int64, photoRef, caption string, rows ...Row) error
}
