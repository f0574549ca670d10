package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

// ErrStopped is returned by Publish after Stop.
var ErrStopped = errors.New("notification worker stopped")

// NotificationWorker moves event delivery off the request path. Publish
// enqueues, a fixed set of goroutines hand events to the wrapped
// dispatcher.
type NotificationWorker struct {
	next   events.Dispatcher
	logger *zap.Logger
	queue  chan events.Event

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewNotificationWorker wraps next. workers and buffer below 1 are raised to 1.
func NewNotificationWorker(next events.Dispatcher, workers, buffer int, logger *zap.Logger) *NotificationWorker {
	if workers < 1 {
		workers = 1
	}
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{
		next:   next,
		logger: logger,
		queue:  make(chan events.Event, buffer),
	}
	w.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go w.run()
	}
	return w
}

func (w *NotificationWorker) run() {
	defer w.wg.Done()
	for event := range w.queue {
		// Delivery outlives the request that produced the event.
		if err := w.next.Publish(context.Background(), event); err != nil {
			w.logger.Warn("notification handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("ticket_id", event.TicketID),
				zap.Error(err))
		}
	}
}

// Publish enqueues event, blocking while the buffer is full.
func (w *NotificationWorker) Publish(ctx context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers handler on the wrapped dispatcher.
func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.next.Subscribe(eventType, handler)
}

// Stop drains queued events and waits for the workers, or gives up when
// ctx ends.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
