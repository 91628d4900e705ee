// Package event is an in-process publish/subscribe dispatcher.
//
// Services fire domain events after a write commits; listeners (realtime
// notifier, Kafka publisher, cache invalidation) react without the service
// knowing they exist. A listener error is logged and never reaches the
// caller.
//
//	d := event.NewDispatcher(pool)
//	d.Listen("order.created", notifyRestaurant)
//	d.Fire(ctx, "order.created", order)
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/workerpool"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any) error

// Dispatcher maps event names to listeners.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *workerpool.Pool
}

// NewDispatcher returns a dispatcher. pool runs FireAsync listeners; when
// nil, or when the pool is saturated, they run inline.
func NewDispatcher(pool *workerpool.Pool) *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}, pool: pool}
}

// Listen registers h for event.
func (d *Dispatcher) Listen(event string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], h)
}

func (d *Dispatcher) listeners(event string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hs := make([]Handler, len(d.handlers[event]))
	copy(hs, d.handlers[event])
	return hs
}

// Fire runs every listener for event in registration order and waits for
// them.
func (d *Dispatcher) Fire(ctx context.Context, event string, payload any) {
	for _, h := range d.listeners(event) {
		d.call(ctx, event, h, payload)
	}
}

// FireAsync hands each listener to the pool and returns. The listeners get
// a context detached from ctx's cancellation so they outlive the request.
func (d *Dispatcher) FireAsync(ctx context.Context, event string, payload any) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range d.listeners(event) {
		h := h
		task := func() { d.call(ctx, event, h, payload) }
		if d.pool == nil {
			task()
			continue
		}
		if err := d.pool.Submit(task); err != nil {
			if !errors.Is(err, workerpool.ErrPoolFull) {
				logger.WithCtx(ctx).Warn("event: pool unavailable, running inline", "event", event, "error", err)
			}
			task()
		}
	}
}

func (d *Dispatcher) call(ctx context.Context, event string, h Handler, payload any) {
	if err := h(ctx, payload); err != nil {
		logger.WithCtx(ctx).Warn("event: listener failed", "event", event, "error", err)
	}
}

// Flush removes every listener.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = map[string][]Handler{}
}
