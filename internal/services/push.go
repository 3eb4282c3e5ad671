package services

import (
	"context"
	"fmt"

	"barhop-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// PushSender delivers a push notification to one device token.
// Implementations must treat delivery as best-effort; callers never
// roll back a write because a push failed.
type PushSender interface {
	Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}

// APNsSender sends push notifications through Apple's push service
// using token-based authentication.
type APNsSender struct {
	client *apns2.Client
	topic  string
}

// NewAPNsSender creates an APNs push sender from configuration.
func NewAPNsSender(cfg config.APNsConfig) (*APNsSender, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsSender{client: client, topic: cfg.Topic}, nil
}

// Send pushes one notification to a device token.
func (s *APNsSender) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	p := payload.NewPayload().AlertTitle(title).AlertBody(body)
	for k, v := range data {
		p = p.Custom(k, v)
	}

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       s.topic,
		Payload:     p,
	}

	res, err := s.client.PushWithContext(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %s", res.Reason)
	}
	return nil
}

// NopPushSender drops every notification. Used when APNs is not
// configured.
type NopPushSender struct{}

// Send logs and discards the notification.
func (NopPushSender) Send(_ context.Context, deviceToken, title, _ string, _ map[string]string) error {
	log.Debug().Str("device_token", deviceToken).Str("title", title).Msg("Push delivery disabled, dropping notification")
	return nil
}
