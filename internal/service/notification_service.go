package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/owaste/rewards-service/internal/config"
	"github.com/owaste/rewards-service/internal/events"
	"github.com/owaste/rewards-service/internal/repository"
)

// NotificationService turns domain events into push notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	sessions   repository.SessionStore
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sessions repository.SessionStore, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		sessions:   sessions,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPointsEarned, n.notify("Points earned"))
	n.dispatcher.Subscribe(events.EventRewardRedeemed, n.notify("Reward redeemed"))
	n.dispatcher.Subscribe(events.EventPointsConverted, n.notify("Conversion requested"))
	n.dispatcher.Subscribe(events.EventChallengeCompleted, n.notify("Weekly challenge completed"))
}

func (n *NotificationService) notify(title string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		n.logger.Info(title,
			zap.String("user_id", event.UserID),
			zap.String("transaction_id", event.TransactionID),
			zap.Any("payload", event.Payload))
		n.sendPushNotificationStub(ctx, title, event)
		n.sendWebhookNotificationStub(ctx, event)
		if n.sessions == nil {
			return nil
		}
		return n.sessions.SetUnread(ctx, event.UserID, true)
	}
}

func (n *NotificationService) sendPushNotificationStub(_ context.Context, title string, event events.Event) {
	if strings.TrimSpace(n.cfg.PushProvider) == "" {
		return
	}
	n.logger.Debug("sendPushNotificationStub",
		zap.String("provider", n.cfg.PushProvider),
		zap.String("title", title),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}
