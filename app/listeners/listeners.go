// Package listeners subscribes the side effects of domain events: the
// realtime notifier, the Kafka order log and cache invalidation.
package listeners

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/ayoo/app/events"
	"github.com/shashiranjanraj/ayoo/app/jobs"
	"github.com/shashiranjanraj/ayoo/app/realtime"
	"github.com/shashiranjanraj/ayoo/app/services"
	"github.com/shashiranjanraj/ayoo/pkg/event"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/queue"
)

// Deps are the listener targets. Nil fields switch their listener off.
type Deps struct {
	Notifier *realtime.Notifier
	Queue    *queue.Manager // set only when the order log is enabled
	Stats    *services.StatsService
	Catalog  *services.CatalogService
}

// Register attaches every listener to d.
func Register(d *event.Dispatcher, deps Deps) {
	if n := deps.Notifier; n != nil {
		d.Listen(events.OrderCreated, func(ctx context.Context, p any) error {
			e, ok := p.(events.OrderEvent)
			if !ok {
				return payloadError(events.OrderCreated, p)
			}
			n.OrderCreated(ctx, e.Order)
			return nil
		})
		update := func(ctx context.Context, p any) error {
			e, ok := p.(events.OrderEvent)
			if !ok {
				return payloadError("order update", p)
			}
			n.OrderUpdated(ctx, e.Order)
			return nil
		}
		d.Listen(events.OrderStatusChanged, update)
		d.Listen(events.OrderRiderAssigned, update)
		d.Listen(events.OrderLocationChanged, func(ctx context.Context, p any) error {
			e, ok := p.(events.LocationEvent)
			if !ok {
				return payloadError(events.OrderLocationChanged, p)
			}
			n.LocationUpdated(ctx, e.Order.ID, e.Lat, e.Lng)
			return nil
		})
	}

	if q := deps.Queue; q != nil {
		for _, name := range []string{events.OrderCreated, events.OrderStatusChanged, events.OrderRiderAssigned, events.OrderLocationChanged} {
			name := name
			d.Listen(name, func(ctx context.Context, p any) error {
				var job *jobs.PublishOrderEvent
				var err error
				switch e := p.(type) {
				case events.OrderEvent:
					job, err = jobs.NewPublishOrderEvent(name, e.Order, nil)
				case events.LocationEvent:
					job, err = jobs.NewPublishOrderEvent(name, e.Order, realtime.Location{Lat: e.Lat, Lng: e.Lng})
				default:
					return payloadError(name, p)
				}
				if err != nil {
					return err
				}
				return q.Dispatch(ctx, job)
			})
		}
	}

	if s := deps.Stats; s != nil {
		forget := func(ctx context.Context, _ any) error { return s.Forget(ctx) }
		d.Listen(events.OrderCreated, forget)
		d.Listen(events.OrderStatusChanged, forget)
	}

	if c := deps.Catalog; c != nil {
		d.Listen(events.CatalogChanged, func(ctx context.Context, p any) error {
			if e, ok := p.(events.CatalogEvent); ok {
				logger.WithCtx(ctx).Debug("catalog changed, dropping restaurant cache", "restaurant_id", e.RestaurantID)
			}
			return c.Forget(ctx)
		})
	}
}

func payloadError(name string, p any) error {
	return fmt.Errorf("listeners: %s got payload %T", name, p)
}
