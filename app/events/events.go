// Package events names the domain events fired by the services and the
// payloads listeners receive.
package events

import "github.com/shashiranjanraj/ayoo/app/models"

const (
	OrderCreated         = "order.created"
	OrderStatusChanged   = "order.status_changed"
	OrderRiderAssigned   = "order.rider_assigned"
	OrderLocationChanged = "order.location_changed"

	// CatalogChanged fires after a restaurant or menu write.
	CatalogChanged = "catalog.changed"
)

// OrderEvent is the payload of every order event. Order is the stored
// state after the write.
type OrderEvent struct {
	Order     models.Order
	From      models.OrderStatus
	ActorRole string
	ActorID   string
}

// LocationEvent is the payload of OrderLocationChanged.
type LocationEvent struct {
	Order models.Order
	Lat   float64
	Lng   float64
}

// CatalogEvent is the payload of CatalogChanged.
type CatalogEvent struct {
	RestaurantID string
}
