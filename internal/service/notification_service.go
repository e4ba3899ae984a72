package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
)

// EventPublisher forwards serialized events to an external channel.
type EventPublisher interface {
	Enabled() bool
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService fans domain events out to the log and, when configured,
// to a Redis pub/sub channel.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  EventPublisher
	channel    string
	service    string
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Publisher  EventPublisher
	Channel    string
	// Service names the emitting service in published messages.
	Service string
	Logger  *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		publisher:  deps.Publisher,
		channel:    deps.Channel,
		service:    deps.Service,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

type notification struct {
	Service string `json:"service"`
	events.Event
}

// handle never fails the publishing request; delivery problems are only logged.
func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int64("entity_id", event.EntityID),
		zap.Any("payload", event.Payload))

	if n.publisher == nil || !n.publisher.Enabled() || n.channel == "" {
		return nil
	}
	body, err := json.Marshal(notification{Service: n.service, Event: event})
	if err != nil {
		n.logger.Warn("encode event", zap.String("event_id", event.ID), zap.Error(err))
		return nil
	}
	if err := n.publisher.Publish(ctx, n.channel, body); err != nil {
		n.logger.Warn("publish event",
			zap.String("event_id", event.ID),
			zap.String("channel", n.channel),
			zap.Error(err))
	}
	return nil
}
