package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/realtime"
	"github.com/shashiranjanraj/ayoo/app/services"
	"github.com/shashiranjanraj/ayoo/pkg/ctx"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
	"github.com/shashiranjanraj/ayoo/pkg/sse"
	"github.com/shashiranjanraj/ayoo/pkg/ws"
)

const sseKeepalive = 15 * time.Second

type OrderController struct {
	orders *services.OrderService
	hub    *ws.Hub
}

func NewOrderController(orders *services.OrderService, hub *ws.Hub) *OrderController {
	return &OrderController{orders: orders, hub: hub}
}

type statusRequest struct {
	Status  string `json:"status" validate:"required,in=PENDING,ACCEPTED,PREPARING,READY_FOR_PICKUP,PICKED_UP,DELIVERING,DELIVERED,CANCELLED"`
	RiderID string `json:"riderId"`
}

type claimRequest struct {
	RiderID string `json:"riderId"`
}

type locationRequest struct {
	Lat     *float64 `json:"lat" validate:"required,between=-90,90"`
	Lng     *float64 `json:"lng" validate:"required,between=-180,180"`
	RiderID string   `json:"riderId"`
}

// riderOf returns the rider acting on the request: a rider token pins it
// to the caller, otherwise the body decides.
func riderOf(c *ctx.Context, fromBody string) string {
	if role, id := c.Identity(); role == rbac.Rider {
		return id
	}
	return fromBody
}

// Store handles POST /api/orders.
func (h *OrderController) Store(c *ctx.Context) {
	var in services.CreateOrderInput
	if !c.BindJSON(&in) {
		return
	}
	if role, id := c.Identity(); role == rbac.Customer {
		in.CustomerID = id
	}
	o, err := h.orders.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(o)
}

func (h *OrderController) Show(c *ctx.Context) {
	o, err := h.orders.Find(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(o)
}

func (h *OrderController) History(c *ctx.Context) {
	rows, err := h.orders.History(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(rows)
}

func (h *OrderController) list(c *ctx.Context, fn func(*ctx.Context) ([]models.Order, error)) {
	orders, err := fn(c)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

func (h *OrderController) ByCustomer(c *ctx.Context) {
	h.list(c, func(c *ctx.Context) ([]models.Order, error) { return h.orders.ListByCustomer(c.Context(), c.Param("id")) })
}

func (h *OrderController) ByRestaurant(c *ctx.Context) {
	h.list(c, func(c *ctx.Context) ([]models.Order, error) { return h.orders.ListByRestaurant(c.Context(), c.Param("id")) })
}

func (h *OrderController) ByRider(c *ctx.Context) {
	h.list(c, func(c *ctx.Context) ([]models.Order, error) { return h.orders.ListByRider(c.Context(), c.Param("id")) })
}

// Available handles GET /api/orders/available, the rider pool.
func (h *OrderController) Available(c *ctx.Context) {
	h.list(c, func(c *ctx.Context) ([]models.Order, error) { return h.orders.ListAvailable(c.Context()) })
}

// UpdateStatus handles PATCH /api/orders/{id}/status.
func (h *OrderController) UpdateStatus(c *ctx.Context) {
	var body statusRequest
	if !c.BindJSON(&body) {
		return
	}
	role, id := c.Identity()
	o, err := h.orders.Transition(c.Context(), services.TransitionInput{
		OrderID:   c.Param("id"),
		Status:    models.OrderStatus(body.Status),
		ActorRole: role,
		ActorID:   id,
		RiderID:   riderOf(c, body.RiderID),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(o)
}

// Claim handles POST /api/orders/{id}/claim.
func (h *OrderController) Claim(c *ctx.Context) {
	var body claimRequest
	if !c.BindJSON(&body) {
		return
	}
	role, id := c.Identity()
	o, err := h.orders.Claim(c.Context(), services.ClaimInput{
		OrderID:   c.Param("id"),
		RiderID:   riderOf(c, body.RiderID),
		ActorRole: role,
		ActorID:   id,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(o)
}

// UpdateLocation handles PATCH /api/orders/{id}/location.
func (h *OrderController) UpdateLocation(c *ctx.Context) {
	var body locationRequest
	if !c.BindJSON(&body) {
		return
	}
	o, err := h.orders.UpdateLocation(c.Context(), services.LocationInput{
		OrderID: c.Param("id"),
		Lat:     *body.Lat,
		Lng:     *body.Lng,
		RiderID: riderOf(c, body.RiderID),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(o)
}

// QR handles GET /api/orders/{id}/qr: a PNG the rider scans at handoff.
func (h *OrderController) QR(c *ctx.Context) {
	o, err := h.orders.Find(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	size, ok := c.QueryInt("size", 256)
	if !ok || size < 64 || size > 1024 {
		c.ValidationError(map[string]string{"size": "The size must be between 64 and 1024."})
		return
	}
	png, err := qrcode.Encode(fmt.Sprintf("ayoo://orders/%s", o.ID), qrcode.Medium, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.SetHeader("Cache-Control", "no-store")
	c.Bytes(http.StatusOK, "image/png", png)
}

// Events handles GET /api/orders/{id}/events, streaming the order's room
// as Server-Sent Events. The room is joined before the order is read so an
// update landing in between still reaches the stream.
func (h *OrderController) Events(c *ctx.Context) {
	id := c.Param("id")
	sub := h.hub.Subscribe(32, realtime.OrderRoom(id))
	defer sub.Close()

	o, err := h.orders.Find(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	stream, err := sse.New(c.W, c.R)
	if err != nil {
		fail(c, err)
		return
	}
	if err := stream.Send("order", o); err != nil {
		return
	}
	if err := stream.Forward(sub.C(), sseKeepalive, realtime.EventOf); err != nil {
		logger.WithCtx(c.Context()).Debug("sse: stream ended", "order_id", o.ID, "error", err)
	}
}
