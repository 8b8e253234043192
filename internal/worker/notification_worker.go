package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/travel-community/internal/events"
	"github.com/spec-kit/travel-community/internal/service"
)

const defaultQueueSize = 256

// NotificationWorker moves notification delivery off the request path. Events
// are queued by dispatcher subscriptions and drained by Run.
type NotificationWorker struct {
	notifier *service.NotificationService
	logger   *zap.Logger
	queue    chan events.Event
	wg       sync.WaitGroup
}

// NewNotificationWorker subscribes the worker to every event the notifier handles.
func NewNotificationWorker(dispatcher events.Dispatcher, notifier *service.NotificationService, logger *zap.Logger, queueSize int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	w := &NotificationWorker{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan events.Event, queueSize),
	}
	if dispatcher != nil && notifier != nil {
		for _, eventType := range notifier.EventTypes() {
			dispatcher.Subscribe(eventType, w.enqueue)
		}
	}
	return w
}

// enqueue never blocks the publisher. A full queue drops the event.
func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

// Start runs the worker in the background until ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.Run(ctx)
	}()
}

// Wait blocks until a started worker has drained and exited.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

// Run drains the queue until ctx is cancelled, then flushes what is left.
func (w *NotificationWorker) Run(ctx context.Context) {
	for {
		select {
		case event := <-w.queue:
			w.deliver(ctx, event)
		case <-ctx.Done():
			w.flush()
			return
		}
	}
}

func (w *NotificationWorker) flush() {
	for {
		select {
		case event := <-w.queue:
			w.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	if err := w.notifier.Notify(ctx, event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
