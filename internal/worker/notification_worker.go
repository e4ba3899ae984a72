package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/service"
)

// ErrQueueFull is returned when an event is dropped because the worker is behind.
var ErrQueueFull = errors.New("notification queue full")

const defaultQueueSize = 256

type message struct {
	channel string
	payload []byte
}

// NotificationWorker moves event delivery off the request path. It satisfies
// service.EventPublisher and forwards queued messages to the wrapped publisher
// from Run.
type NotificationWorker struct {
	next   service.EventPublisher
	queue  chan message
	logger *zap.Logger
}

// NewNotificationWorker wraps next with a bounded queue. size <= 0 selects the
// default capacity.
func NewNotificationWorker(next service.EventPublisher, size int, logger *zap.Logger) *NotificationWorker {
	if size <= 0 {
		size = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		next:   next,
		queue:  make(chan message, size),
		logger: logger,
	}
}

// Enabled reports whether the wrapped publisher can deliver.
func (w *NotificationWorker) Enabled() bool {
	return w != nil && w.next != nil && w.next.Enabled()
}

// Publish enqueues payload without blocking.
func (w *NotificationWorker) Publish(_ context.Context, channel string, payload []byte) error {
	select {
	case w.queue <- message{channel: channel, payload: payload}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run delivers queued messages until ctx is cancelled, then drains what is left.
func (w *NotificationWorker) Run(ctx context.Context) error {
	for {
		select {
		case msg := <-w.queue:
			w.deliver(ctx, msg)
		case <-ctx.Done():
			w.drain()
			return nil
		}
	}
}

func (w *NotificationWorker) drain() {
	ctx := context.Background()
	for {
		select {
		case msg := <-w.queue:
			w.deliver(ctx, msg)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, msg message) {
	if err := w.next.Publish(ctx, msg.channel, msg.payload); err != nil {
		w.logger.Warn("deliver notification", zap.String("channel", msg.channel), zap.Error(err))
	}
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
