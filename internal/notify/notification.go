// Package notify delivers best-effort email and chat notifications. Callers
// hand a Notification to a Dispatcher and never wait for the outcome.
package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type Kind string

const (
	KindEmail Kind = "email"
	KindChat  Kind = "chat"
)

var ErrUnknownKind = errors.New("unknown notification kind")

type Notification struct {
	Kind       Kind     `json:"kind"`
	Subject    string   `json:"subject,omitempty"`
	Body       string   `json:"body,omitempty"`
	Recipients []string `json:"recipients,omitempty"`
	Text       string   `json:"text,omitempty"`
}

func Email(subject, body string, recipients ...string) Notification {
	return Notification{
		Kind:       KindEmail,
		Subject:    subject,
		Body:       body,
		Recipients: recipients,
	}
}

func Chat(text string) Notification {
	return Notification{
		Kind: KindChat,
		Text: text,
	}
}

type EmailSender interface {
	SendEmail(ctx context.Context, subject, body string, recipients []string) error
}

type ChatSender interface {
	SendChatMessage(ctx context.Context, text string) error
}

// Router delivers a notification synchronously through the gateway matching
// its kind. A nil gateway silently skips that kind.
type Router struct {
	Email EmailSender
	Chat  ChatSender
}

func (r *Router) Deliver(ctx context.Context, n Notification) error {
	switch n.Kind {
	case KindEmail:
		if r.Email == nil || len(n.Recipients) == 0 {
			zap.L().Debug("email gateway disabled, skipping notification", zap.String("subject", n.Subject))
			return nil
		}
		if err := r.Email.SendEmail(ctx, n.Subject, n.Body, n.Recipients); err != nil {
			return fmt.Errorf("r.Email.SendEmail -> %w", err)
		}
	case KindChat:
		if r.Chat == nil {
			zap.L().Debug("chat gateway disabled, skipping notification")
			return nil
		}
		if err := r.Chat.SendChatMessage(ctx, n.Text); err != nil {
			return fmt.Errorf("r.Chat.SendChatMessage -> %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
	}

	return nil
}

// Deliverer performs the actual, blocking delivery of a notification.
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

func logDeliveryFailure(n Notification, err error) {
	zap.L().Warn("notification delivery failed",
		zap.String("kind", string(n.Kind)),
		zap.Strings("recipients", n.Recipients),
		zap.Error(err),
	)
}
