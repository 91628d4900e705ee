package realtime

import (
	"encoding/json"

	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/ws"
)

// Client-sent event names.
const (
	EventJoinOrder      = "join_order"
	EventJoinRestaurant = "join_restaurant"
	EventLeave          = "leave"
)

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// idOf accepts "42" or {"orderId":"42"} / {"restaurantId":"42"} /
// {"id":"42"}.
func idOf(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		ID           string `json:"id"`
		OrderID      string `json:"orderId"`
		RestaurantID string `json:"restaurantId"`
		Channel      string `json:"channel"`
	}
	if json.Unmarshal(raw, &obj) != nil {
		return ""
	}
	for _, v := range []string{obj.OrderID, obj.RestaurantID, obj.Channel, obj.ID} {
		if v != "" {
			return v
		}
	}
	return ""
}

// HandleMessage applies room membership requests from websocket clients.
// Unknown or malformed frames are ignored.
func HandleMessage(h *ws.Hub, msg ws.Message) {
	var in inbound
	if err := json.Unmarshal(msg.Data, &in); err != nil {
		logger.Debug("realtime: ignoring malformed frame", "client", msg.Client.ID())
		return
	}
	id := idOf(in.Data)
	if id == "" {
		return
	}

	switch in.Event {
	case EventJoinOrder:
		h.Join(msg.Client, OrderRoom(id))
	case EventJoinRestaurant:
		h.Join(msg.Client, RestaurantRoom(id))
	case EventLeave:
		if validRoom(id) {
			h.Leave(msg.Client, id)
		}
	default:
		logger.Debug("realtime: unknown event", "event", in.Event, "client", msg.Client.ID())
	}
}

// Rooms builds the initial rooms of a connection from its query
// parameters (orderId, restaurantId).
func Rooms(orderIDs, restaurantIDs []string) []string {
	rooms := []string{}
	for _, id := range orderIDs {
		if id != "" {
			rooms = append(rooms, OrderRoom(id))
		}
	}
	for _, id := range restaurantIDs {
		if id != "" {
			rooms = append(rooms, RestaurantRoom(id))
		}
	}
	return rooms
}
