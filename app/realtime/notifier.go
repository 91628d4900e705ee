// Package realtime pushes order updates to connected clients.
//
// Frames go to rooms on a Sink: the local websocket hub on a single
// instance, or a Relay that fans them out to every instance through Redis.
// Rooms are "order:{id}" and "restaurant:{id}"; a broadcast reaches every
// client, which is how rider consoles learn about new and changed orders.
package realtime

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/metrics"
)

// Server-emitted event names.
const (
	EventNewOrder        = "new_order"
	EventOrderAvailable  = "order_available"
	EventStatusUpdated   = "order_status_updated"
	EventOrderUpdated    = "order_updated"
	EventLocationUpdated = "order_location_updated"
)

// GlobalChannel is the channel name carried by broadcast frames.
const GlobalChannel = "global"

const (
	orderPrefix      = "order:"
	restaurantPrefix = "restaurant:"
)

func OrderRoom(id string) string      { return orderPrefix + id }
func RestaurantRoom(id string) string { return restaurantPrefix + id }

// validRoom reports whether room names an order or restaurant room with an
// id.
func validRoom(room string) bool {
	for _, prefix := range []string{orderPrefix, restaurantPrefix} {
		if id, ok := strings.CutPrefix(room, prefix); ok {
			return id != ""
		}
	}
	return false
}

// Frame is the JSON written to clients.
type Frame struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Data    any    `json:"data"`
}

// Location is the payload of order_location_updated.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Sink delivers encoded frames. *ws.Hub and *Relay implement it.
type Sink interface {
	Publish(room string, data []byte) bool
	Broadcast(data []byte) bool
}

// Notifier turns order changes into frames.
type Notifier struct {
	sink Sink
	pool []models.OrderStatus
}

// NewNotifier emits on sink. pool holds the statuses riders may claim an
// unassigned order in; only new orders in it are offered to riders.
func NewNotifier(sink Sink, pool []models.OrderStatus) *Notifier {
	return &Notifier{sink: sink, pool: pool}
}

// OrderCreated tells the restaurant about a new order and, when riders can
// already claim it, offers it to every rider.
func (n *Notifier) OrderCreated(ctx context.Context, o models.Order) {
	n.emit(ctx, RestaurantRoom(o.RestaurantID), EventNewOrder, o)
	if slices.Contains(n.pool, o.Status) {
		n.emit(ctx, GlobalChannel, EventOrderAvailable, o)
	}
}

// OrderUpdated reports a status change or rider claim to the order's
// watchers and to every rider console.
func (n *Notifier) OrderUpdated(ctx context.Context, o models.Order) {
	n.emit(ctx, OrderRoom(o.ID), EventStatusUpdated, o)
	n.emit(ctx, GlobalChannel, EventOrderUpdated, o)
}

// LocationUpdated reports a rider position to the order's watchers.
func (n *Notifier) LocationUpdated(ctx context.Context, orderID string, lat, lng float64) {
	n.emit(ctx, OrderRoom(orderID), EventLocationUpdated, Location{Lat: lat, Lng: lng})
}

// emit never fails the caller; delivery is best effort.
func (n *Notifier) emit(ctx context.Context, channel, event string, data any) {
	raw, err := json.Marshal(Frame{Event: event, Channel: channel, Data: data})
	if err != nil {
		metrics.RealtimeEvent(event, "error")
		logger.WithCtx(ctx).Warn("realtime: encode frame", "event", event, "error", err)
		return
	}

	var ok bool
	if channel == GlobalChannel {
		ok = n.sink.Broadcast(raw)
	} else {
		ok = n.sink.Publish(channel, raw)
	}
	if !ok {
		metrics.RealtimeEvent(event, "dropped")
		logger.WithCtx(ctx).Warn("realtime: frame not delivered", "event", event, "channel", channel)
		return
	}
	metrics.RealtimeEvent(event, "sent")
}

// EventOf extracts the event name of an encoded frame, for SSE.
func EventOf(raw []byte) string {
	var f struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(raw, &f); err != nil || f.Event == "" {
		return "message"
	}
	return f.Event
}
