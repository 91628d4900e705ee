package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/ayoo/app/realtime"
	"github.com/shashiranjanraj/ayoo/pkg/ws"
)

type RealtimeController struct {
	hub *ws.Hub
}

func NewRealtimeController(hub *ws.Hub) *RealtimeController {
	return &RealtimeController{hub: hub}
}

// Connect upgrades GET /ws. Repeated orderId and restaurantId query
// parameters join rooms up front; clients may also send join_order,
// join_restaurant and leave frames.
func (h *RealtimeController) Connect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ws.Upgrade(w, r, h.hub, realtime.Rooms(q["orderId"], q["restaurantId"])...)
}
