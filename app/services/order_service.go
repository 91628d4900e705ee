// Package services holds the business rules of the delivery platform: the
// order lifecycle, catalog and account management, vouchers, admin
// analytics and payments. Services are constructed once in the kernel and
// shared by the HTTP, GraphQL and CLI surfaces.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/ayoo/app/events"
	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/repositories"
	"github.com/shashiranjanraj/ayoo/pkg/event"
	"github.com/shashiranjanraj/ayoo/pkg/lock"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/metrics"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
	"github.com/shashiranjanraj/ayoo/pkg/validate"
)

// maxAttempts bounds the optimistic retry loop of one mutation.
const maxAttempts = 3

// OrderItemInput is one line of a new order.
type OrderItemInput struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"min=1"`
}

// CreateOrderInput is the body of POST /api/orders.
type CreateOrderInput struct {
	CustomerID      string           `json:"customerId" validate:"required"`
	RestaurantID    string           `json:"restaurantId" validate:"required"`
	Items           []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Total           decimal.Decimal  `json:"total"`
	DeliveryAddress string           `json:"deliveryAddress" validate:"required"`
	DeliveryLat     *float64         `json:"deliveryLat" validate:"nullable,between=-90,90"`
	DeliveryLng     *float64         `json:"deliveryLng" validate:"nullable,between=-180,180"`
	RestaurantLat   *float64         `json:"restaurantLat" validate:"nullable,between=-90,90"`
	RestaurantLng   *float64         `json:"restaurantLng" validate:"nullable,between=-180,180"`
	CustomerName    string           `json:"customerName"`
	RestaurantName  string           `json:"restaurantName"`
	PaymentMethod   string           `json:"paymentMethod" validate:"nullable,in=COD,ONLINE"`
}

// TransitionInput asks for one status change. An empty ActorRole skips the
// actor check.
type TransitionInput struct {
	OrderID   string
	Status    models.OrderStatus
	ActorRole string
	ActorID   string
	RiderID   string
}

// ClaimInput assigns a rider without changing status.
type ClaimInput struct {
	OrderID   string
	RiderID   string
	ActorRole string
	ActorID   string
}

// LocationInput is a rider position ping. RiderID, when set, must be the
// assigned rider.
type LocationInput struct {
	OrderID string
	Lat     float64
	Lng     float64
	RiderID string
}

// OrderService applies the order lifecycle. Every mutation holds the
// order's lock, writes with a version check and fires its event before the
// lock is released, so listeners see one order's events in commit order.
type OrderService struct {
	orders *repositories.OrderRepository
	locks  lock.Locker
	events *event.Dispatcher
	pool   []models.OrderStatus
}

func NewOrderService(orders *repositories.OrderRepository, locks lock.Locker, events *event.Dispatcher, pool []models.OrderStatus) *OrderService {
	if len(pool) == 0 {
		pool = RiderPool(true)
	}
	return &OrderService{orders: orders, locks: locks, events: events, pool: pool}
}

// Pool returns the statuses riders may claim from.
func (s *OrderService) Pool() []models.OrderStatus { return s.pool }

// claimable reports whether an unassigned order in status may be claimed:
// the pool, plus orders the kitchen has accepted but no rider picked up.
func (s *OrderService) claimable(status models.OrderStatus) bool {
	if status == models.StatusAccepted || status == models.StatusPreparing {
		return true
	}
	for _, p := range s.pool {
		if p == status {
			return true
		}
	}
	return false
}

// Create validates in and stores a new PENDING order.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	errs := validate.Struct(&in)
	for i, item := range in.Items {
		if item.Price.IsNegative() {
			errs["items."+strconv.Itoa(i)+".price"] = "The price field must be at least 0."
		}
	}
	if in.Total.IsNegative() {
		errs["total"] = "The total field must be at least 0."
	}
	if validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}

	o := &models.Order{
		CustomerID:      in.CustomerID,
		RestaurantID:    in.RestaurantID,
		Items:           make([]models.OrderItem, 0, len(in.Items)),
		Total:           in.Total,
		DeliveryAddress: in.DeliveryAddress,
		DeliveryLat:     in.DeliveryLat,
		DeliveryLng:     in.DeliveryLng,
		RestaurantLat:   in.RestaurantLat,
		RestaurantLng:   in.RestaurantLng,
		CustomerName:    in.CustomerName,
		RestaurantName:  in.RestaurantName,
		PaymentMethod:   in.PaymentMethod,
	}
	for _, item := range in.Items {
		o.Items = append(o.Items, models.OrderItem(item))
	}
	switch o.PaymentMethod {
	case models.PaymentOnline:
		o.PaymentStatus = models.PaymentAwaitingPayment
	default:
		o.PaymentMethod = models.PaymentCOD
		o.PaymentStatus = models.PaymentPending
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	metrics.OrderCreated()
	logger.WithCtx(ctx).Info("order created", "order_id", o.ID, "restaurant_id", o.RestaurantID, "total", o.Total.String())

	s.events.Fire(ctx, events.OrderCreated, events.OrderEvent{Order: *o, From: o.Status})
	return o, nil
}

// Transition moves an order to in.Status if the table allows it.
func (s *OrderService) Transition(ctx context.Context, in TransitionInput) (*models.Order, error) {
	var from models.OrderStatus
	out, err := s.mutate(ctx, in.OrderID, func(o *models.Order) (*models.Order, error) {
		actor, ok := TransitionActor(o.Status, in.Status)
		if !ok {
			return nil, fmt.Errorf("%w: %s to %s (allowed: %s)", ErrInvalidTransition, o.Status, in.Status, allowedFrom(o.Status))
		}
		if in.ActorRole != "" && in.ActorRole != rbac.Admin && in.ActorRole != actor {
			return nil, fmt.Errorf("%w: %s to %s needs %s", ErrActorNotAllowed, o.Status, in.Status, actor)
		}

		change := repositories.StatusChange{
			OrderID:   o.ID,
			Version:   o.Version,
			From:      o.Status,
			To:        in.Status,
			ActorRole: in.ActorRole,
			ActorID:   in.ActorID,
			At:        s.orders.Now(o.UpdatedAt),
		}
		if actor == rbac.Rider {
			switch {
			case o.HasRider():
				if in.RiderID != "" && in.RiderID != *o.RiderID {
					return nil, ErrAlreadyClaimed
				}
			case in.RiderID == "":
				return nil, ErrRiderRequired
			default:
				rider := in.RiderID
				change.RiderID = &rider
			}
		}
		from = o.Status
		return s.orders.UpdateStatus(ctx, change)
	}, func(next *models.Order) {
		metrics.OrderTransition(string(from), string(next.Status))
		logger.WithCtx(ctx).Info("order status changed",
			"order_id", next.ID, "from", from, "to", next.Status, "actor_role", in.ActorRole, "version", next.Version)
		s.events.Fire(ctx, events.OrderStatusChanged, events.OrderEvent{
			Order: *next, From: from, ActorRole: in.ActorRole, ActorID: in.ActorID,
		})
	})
	if err != nil {
		s.conflict(err)
		return nil, err
	}
	return out, nil
}

// Claim assigns in.RiderID to an unassigned order that has not been picked
// up.
// Claiming an order the rider already holds returns it unchanged.
func (s *OrderService) Claim(ctx context.Context, in ClaimInput) (*models.Order, error) {
	if in.RiderID == "" {
		return nil, ErrRiderRequired
	}
	if in.ActorRole != "" && in.ActorRole != rbac.Rider && in.ActorRole != rbac.Admin {
		return nil, ErrActorNotAllowed
	}

	out, err := s.mutate(ctx, in.OrderID, func(o *models.Order) (*models.Order, error) {
		if o.HasRider() {
			if *o.RiderID == in.RiderID {
				return o, nil
			}
			return nil, ErrAlreadyClaimed
		}
		if !s.claimable(o.Status) {
			return nil, fmt.Errorf("%w: status %s", ErrNotClaimable, o.Status)
		}
		return s.orders.AssignRider(ctx, repositories.RiderAssignment{
			OrderID:   o.ID,
			Version:   o.Version,
			Status:    o.Status,
			RiderID:   in.RiderID,
			ActorRole: in.ActorRole,
			ActorID:   in.ActorID,
			At:        s.orders.Now(o.UpdatedAt),
		})
	}, func(next *models.Order) {
		logger.WithCtx(ctx).Info("order claimed", "order_id", next.ID, "rider_id", in.RiderID, "version", next.Version)
		s.events.Fire(ctx, events.OrderRiderAssigned, events.OrderEvent{
			Order: *next, From: next.Status, ActorRole: in.ActorRole, ActorID: in.ActorID,
		})
	})
	if err != nil {
		s.conflict(err)
		return nil, err
	}
	return out, nil
}

// UpdateLocation records the rider's position on the order.
func (s *OrderService) UpdateLocation(ctx context.Context, in LocationInput) (*models.Order, error) {
	if in.Lat < -90 || in.Lat > 90 || in.Lng < -180 || in.Lng > 180 {
		return nil, &ValidationError{Fields: map[string]string{"lat": "The coordinates are out of range."}}
	}
	out, err := s.mutate(ctx, in.OrderID, func(o *models.Order) (*models.Order, error) {
		if in.RiderID != "" && (!o.HasRider() || *o.RiderID != in.RiderID) {
			return nil, ErrNotAssignedRider
		}
		return s.orders.UpdateLocation(ctx, repositories.LocationChange{
			OrderID: o.ID,
			Version: o.Version,
			Lat:     in.Lat,
			Lng:     in.Lng,
			At:      s.orders.Now(o.UpdatedAt),
		})
	}, func(next *models.Order) {
		s.events.Fire(ctx, events.OrderLocationChanged, events.LocationEvent{Order: *next, Lat: in.Lat, Lng: in.Lng})
	})
	if err != nil {
		s.conflict(err)
		return nil, err
	}
	return out, nil
}

// mutate runs apply on a fresh read of the order under its lock, retrying
// when the write loses a version race. emit runs, still under the lock,
// only when apply returned a different record than it was given.
func (s *OrderService) mutate(ctx context.Context, id string, apply func(*models.Order) (*models.Order, error), emit func(*models.Order)) (*models.Order, error) {
	unlock, err := s.locks.Lock(ctx, "order:"+id)
	if err != nil {
		return nil, fmt.Errorf("lock order %s: %w", id, err)
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		cur, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		next, err := apply(cur)
		if errors.Is(err, repositories.ErrStaleVersion) && attempt < maxAttempts {
			metrics.OrderConflict("stale_version")
			logger.WithCtx(ctx).Debug("order write lost version race, retrying", "order_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		if next != cur {
			emit(next)
		}
		return next, nil
	}
}

func (s *OrderService) conflict(err error) {
	var reason string
	switch {
	case errors.Is(err, ErrInvalidTransition):
		reason = "invalid_transition"
	case errors.Is(err, ErrAlreadyClaimed):
		reason = "already_claimed"
	case errors.Is(err, ErrNotClaimable):
		reason = "not_claimable"
	case errors.Is(err, ErrActorNotAllowed), errors.Is(err, ErrNotAssignedRider):
		reason = "forbidden"
	case errors.Is(err, repositories.ErrStaleVersion):
		reason = "stale_version"
	default:
		return
	}
	metrics.OrderConflict(reason)
}

func (s *OrderService) Find(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *OrderService) ListByCustomer(ctx context.Context, id string) ([]models.Order, error) {
	return s.orders.ListByCustomer(ctx, id)
}

func (s *OrderService) ListByRestaurant(ctx context.Context, id string) ([]models.Order, error) {
	return s.orders.ListByRestaurant(ctx, id)
}

func (s *OrderService) ListByRider(ctx context.Context, id string) ([]models.Order, error) {
	return s.orders.ListByRider(ctx, id)
}

// ListAvailable returns the rider pool: unassigned orders riders may claim.
func (s *OrderService) ListAvailable(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListAvailable(ctx, s.pool)
}

func (s *OrderService) History(ctx context.Context, id string) ([]models.OrderStatusHistory, error) {
	if _, err := s.orders.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.orders.History(ctx, id)
}
