// Package notify delivers user notifications over websockets and web push.
package notify

import (
	"context"
	"log/slog"
)

const (
	TypeContactRequest  = "contact_request"
	TypeContactAccepted = "contact_accepted"
	TypeTeamInvite      = "team_invite"
	TypeEventInvite     = "event_invite"
)

type Notification struct {
	Type   string         `json:"type"`
	UserID uint           `json:"user_id"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data,omitempty"`
}

// Sender delivers one notification through a single channel.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Notifier fans a notification out to every configured sender. Delivery
// failures are logged and never reported to the caller.
type Notifier struct {
	senders []Sender
	log     *slog.Logger
}

func NewNotifier(log *slog.Logger, senders ...Sender) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{senders: senders, log: log}
}

func (n *Notifier) Notify(ctx context.Context, notes ...Notification) {
	if n == nil {
		return
	}
	for _, note := range notes {
		for _, s := range n.senders {
			if err := s.Send(ctx, note); err != nil {
				n.log.Warn("notification not delivered", "type", note.Type, "user_id", note.UserID, "error", err)
			}
		}
	}
}
