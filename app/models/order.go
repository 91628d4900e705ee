package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusAccepted       OrderStatus = "ACCEPTED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	StatusPickedUp       OrderStatus = "PICKED_UP"
	StatusDelivering     OrderStatus = "DELIVERING"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// Statuses lists every order status in lifecycle order.
var Statuses = []OrderStatus{
	StatusPending,
	StatusAccepted,
	StatusPreparing,
	StatusReadyForPickup,
	StatusPickedUp,
	StatusDelivering,
	StatusDelivered,
	StatusCancelled,
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

const (
	PaymentCOD    = "COD"
	PaymentOnline = "ONLINE"

	PaymentPending         = "PENDING"
	PaymentAwaitingPayment = "AWAITING_PAYMENT"
	PaymentPaid            = "PAID"
)

// OrderItem is a menu line as it was priced when the order was placed.
type OrderItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Order is one customer order. Items and Total are snapshots and are never
// recomputed from the menu. Version increments on every write.
type Order struct {
	ID              string          `gorm:"primaryKey;size:36" json:"id"`
	CustomerID      string          `gorm:"size:64;not null;index" json:"customerId"`
	RestaurantID    string          `gorm:"size:64;not null;index" json:"restaurantId"`
	RiderID         *string         `gorm:"size:64;index" json:"riderId,omitempty"`
	Items           []OrderItem     `gorm:"serializer:json;type:text" json:"items"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status          OrderStatus     `gorm:"size:32;not null;index" json:"status"`
	CreatedAt       time.Time       `gorm:"precision:6;autoCreateTime:false" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"precision:6;autoUpdateTime:false" json:"updatedAt"`
	DeliveryAddress string          `gorm:"size:512" json:"deliveryAddress"`
	DeliveryLat     *float64        `json:"deliveryLat,omitempty"`
	DeliveryLng     *float64        `json:"deliveryLng,omitempty"`
	RiderLat        *float64        `json:"riderLat,omitempty"`
	RiderLng        *float64        `json:"riderLng,omitempty"`
	RestaurantLat   *float64        `json:"restaurantLat,omitempty"`
	RestaurantLng   *float64        `json:"restaurantLng,omitempty"`
	CustomerName    string          `gorm:"size:255" json:"customerName"`
	RestaurantName  string          `gorm:"size:255" json:"restaurantName"`
	PaymentMethod   string          `gorm:"size:16" json:"paymentMethod,omitempty"`
	PaymentStatus   string          `gorm:"size:32" json:"paymentStatus,omitempty"`
	Version         int64           `gorm:"not null;default:1" json:"version"`
}

// HasRider reports whether a rider has claimed the order.
func (o *Order) HasRider() bool { return o.RiderID != nil && *o.RiderID != "" }

// OrderStatusHistory records one applied transition or rider claim.
type OrderStatusHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    string      `gorm:"size:36;not null;index" json:"orderId"`
	FromStatus OrderStatus `gorm:"size:32;not null" json:"from"`
	ToStatus   OrderStatus `gorm:"size:32;not null" json:"to"`
	ActorRole  string      `gorm:"size:16" json:"actorRole,omitempty"`
	ActorID    string      `gorm:"size:64" json:"actorId,omitempty"`
	RiderID    *string     `gorm:"size:64" json:"riderId,omitempty"`
	CreatedAt  time.Time   `gorm:"precision:6;autoCreateTime:false" json:"createdAt"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }
