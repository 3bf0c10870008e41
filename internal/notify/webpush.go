package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/tariel-x/eventease/internal/models"
)

// SubscriptionStore is the part of the store the push sender needs.
type SubscriptionStore interface {
	PushSubscriptions(ctx context.Context, userID uint) ([]models.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, id string) error
}

type VAPID struct {
	PublicKey  string
	PrivateKey string
	Subject    string
}

type WebPush struct {
	subs   SubscriptionStore
	keys   VAPID
	client webpush.HTTPClient
	log    *slog.Logger
}

func NewWebPush(subs SubscriptionStore, keys VAPID, log *slog.Logger) *WebPush {
	if log == nil {
		log = slog.Default()
	}
	return &WebPush{subs: subs, keys: keys, client: http.DefaultClient, log: log}
}

// WithHTTPClient replaces the client used to reach push services.
func (w *WebPush) WithHTTPClient(c webpush.HTTPClient) *WebPush {
	w.client = c
	return w
}

// Send pushes n to every stored subscription of the user. Subscriptions with
// malformed keys, and those the push service reports as gone, are deleted.
func (w *WebPush) Send(ctx context.Context, n Notification) error {
	subs, err := w.subs.PushSubscriptions(ctx, n.UserID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"type":  n.Type,
		"title": n.Title,
		"body":  n.Body,
		"data":  n.Data,
	})
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	var errs []error
	for _, sub := range subs {
		if err := validateKeys(sub.P256DH, sub.Auth); err != nil {
			w.log.Warn("dropping push subscription with bad keys", "user_id", sub.UserID, "subscription_id", sub.ID, "error", err)
			w.drop(ctx, sub)
			continue
		}

		resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: strings.TrimSpace(sub.P256DH),
				Auth:   strings.TrimSpace(sub.Auth),
			},
		}, &webpush.Options{
			HTTPClient:      w.client,
			Subscriber:      w.keys.Subject,
			VAPIDPublicKey:  w.keys.PublicKey,
			VAPIDPrivateKey: w.keys.PrivateKey,
			TTL:             30,
			Urgency:         webpush.UrgencyHigh,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("push to subscription %s: %w", sub.ID, err))
			continue
		}
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
			w.log.Info("push subscription expired", "user_id", sub.UserID, "subscription_id", sub.ID, "status", resp.StatusCode)
			w.drop(ctx, sub)
		case resp.StatusCode >= 400:
			errs = append(errs, fmt.Errorf("push to subscription %s: status %d", sub.ID, resp.StatusCode))
		}
	}
	return errors.Join(errs...)
}

func (w *WebPush) drop(ctx context.Context, sub models.PushSubscription) {
	if err := w.subs.DeletePushSubscription(ctx, sub.ID); err != nil {
		w.log.Error("failed to delete push subscription", "subscription_id", sub.ID, "error", err)
	}
}

// validateKeys checks the browser keys: p256dh must be an uncompressed P-256
// point and auth a 16-byte secret.
func validateKeys(p256dh, auth string) error {
	pub, err := decodeKey(p256dh)
	if err != nil {
		return fmt.Errorf("p256dh: %w", err)
	}
	if len(pub) != 65 || pub[0] != 0x04 {
		return fmt.Errorf("p256dh: want 65-byte uncompressed point, got %d bytes", len(pub))
	}
	secret, err := decodeKey(auth)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if len(secret) != 16 {
		return fmt.Errorf("auth: want 16 bytes, got %d", len(secret))
	}
	return nil
}

func decodeKey(s string) ([]byte, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	if s == "" {
		return nil, errors.New("empty key")
	}
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
