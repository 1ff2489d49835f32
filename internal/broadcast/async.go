package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rekk2/event-registration/internal/telemetry"

	"go.uber.org/zap"
)

// ErrQueueClosed returned by AsyncPublisher.Publish after Close.
var ErrQueueClosed = errors.New("broadcast queue closed")

type queuedEvent struct {
	ctx context.Context
	ev  Event
}

// AsyncPublisher hands events to a single worker that delivers them to the wrapped
// publisher. Publish never waits on delivery; when the queue is full the event is
// dropped and counted.
type AsyncPublisher struct {
	name    string
	next    Publisher
	timeout time.Duration
	queue   chan queuedEvent
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsyncPublisher starts the worker. timeout bounds each delivery; size <= 0 means 64.
func NewAsyncPublisher(name string, next Publisher, size int, timeout time.Duration, logger *zap.Logger) *AsyncPublisher {
	if size <= 0 {
		size = 64
	}
	p := &AsyncPublisher{
		name:    name,
		next:    next,
		timeout: timeout,
		queue:   make(chan queuedEvent, size),
		logger:  logger,
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

var _ Publisher = (*AsyncPublisher)(nil)

func (p *AsyncPublisher) Publish(ctx context.Context, ev Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrQueueClosed
	}
	select {
	case p.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), ev: ev}:
	default:
		telemetry.BroadcastQueueDroppedTotal.WithLabelValues(p.name).Inc()
		p.logger.Warn("Broadcast queue full, event dropped",
			zap.String("queue", p.name),
			zap.String("topic", ev.Topic),
		)
	}
	return nil
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for item := range p.queue {
		p.deliver(item)
	}
}

func (p *AsyncPublisher) deliver(item queuedEvent) {
	ctx := item.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.next.Publish(ctx, item.ev); err != nil {
		p.logger.Warn("Broadcast delivery failed",
			zap.String("queue", p.name),
			zap.String("topic", item.ev.Topic),
			zap.Error(err),
		)
	}
}

// Pending events queued but not yet handed to the worker.
func (p *AsyncPublisher) Pending() int {
	return len(p.queue)
}

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (p *AsyncPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
