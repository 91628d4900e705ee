package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/app/models"
)

// StatusChange is a versioned status write. RiderID, when set, is attached
// in the same statement and only while the order has no other rider.
type StatusChange struct {
	OrderID   string
	Version   int64
	From      models.OrderStatus
	To        models.OrderStatus
	RiderID   *string
	ActorRole string
	ActorID   string
	At        time.Time
}

// RiderAssignment is a versioned claim of an unassigned order.
type RiderAssignment struct {
	OrderID   string
	Version   int64
	Status    models.OrderStatus
	RiderID   string
	ActorRole string
	ActorID   string
	At        time.Time
}

// LocationChange is a versioned rider position write.
type LocationChange struct {
	OrderID string
	Version int64
	Lat     float64
	Lng     float64
	At      time.Time
}

// OrderRepository stores orders and their status history.
type OrderRepository struct {
	db  *gorm.DB
	now Clock
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db, now: time.Now}
}

// WithClock returns a copy of r that reads time from now.
func (r *OrderRepository) WithClock(now Clock) *OrderRepository {
	return &OrderRepository{db: r.db, now: now}
}

// Now returns a timestamp strictly after prev.
func (r *OrderRepository) Now(prev time.Time) time.Time {
	return Stamp(r.now(), prev)
}

// Create inserts o as a new PENDING order with a fresh id and version 1.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	now := r.Now(time.Time{})
	o.ID = uuid.NewString()
	o.Status = models.StatusPending
	o.RiderID = nil
	o.RiderLat, o.RiderLng = nil, nil
	o.CreatedAt = now
	o.UpdatedAt = now
	o.Version = 1
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *OrderRepository) list(ctx context.Context, order string, query any, args ...any) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.WithContext(ctx).Where(query, args...).Order(order).Find(&orders).Error
	return orders, err
}

// ListByCustomer returns the customer's orders, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return r.list(ctx, "created_at DESC", "customer_id = ?", customerID)
}

// ListByRestaurant returns the restaurant's orders, newest first.
func (r *OrderRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error) {
	return r.list(ctx, "created_at DESC", "restaurant_id = ?", restaurantID)
}

// ListByRider returns the orders a rider has claimed, newest first.
func (r *OrderRepository) ListByRider(ctx context.Context, riderID string) ([]models.Order, error) {
	return r.list(ctx, "created_at DESC", "rider_id = ?", riderID)
}

// ListAvailable returns unassigned orders in one of statuses, oldest first.
func (r *OrderRepository) ListAvailable(ctx context.Context, statuses []models.OrderStatus) ([]models.Order, error) {
	if len(statuses) == 0 {
		return []models.Order{}, nil
	}
	return r.list(ctx, "created_at ASC", "status IN ? AND rider_id IS NULL", statuses)
}

// UpdateStatus applies c if the order is still at c.Version and returns the
// stored result.
func (r *OrderRepository) UpdateStatus(ctx context.Context, c StatusChange) (*models.Order, error) {
	values := map[string]any{
		"status":     c.To,
		"updated_at": c.At,
		"version":    gorm.Expr("version + 1"),
	}
	var out models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Order{}).Where("id = ? AND version = ?", c.OrderID, c.Version)
		if c.RiderID != nil {
			values["rider_id"] = *c.RiderID
			q = q.Where("(rider_id IS NULL OR rider_id = ?)", *c.RiderID)
		}
		if err := r.swap(tx, q, c.OrderID, values); err != nil {
			return err
		}
		if err := tx.Create(&models.OrderStatusHistory{
			OrderID:    c.OrderID,
			FromStatus: c.From,
			ToStatus:   c.To,
			ActorRole:  c.ActorRole,
			ActorID:    c.ActorID,
			RiderID:    c.RiderID,
			CreatedAt:  c.At,
		}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", c.OrderID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignRider sets the rider of an unassigned order at a.Version.
func (r *OrderRepository) AssignRider(ctx context.Context, a RiderAssignment) (*models.Order, error) {
	values := map[string]any{
		"rider_id":   a.RiderID,
		"updated_at": a.At,
		"version":    gorm.Expr("version + 1"),
	}
	var out models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Order{}).Where("id = ? AND version = ? AND rider_id IS NULL", a.OrderID, a.Version)
		if err := r.swap(tx, q, a.OrderID, values); err != nil {
			return err
		}
		rider := a.RiderID
		if err := tx.Create(&models.OrderStatusHistory{
			OrderID:    a.OrderID,
			FromStatus: a.Status,
			ToStatus:   a.Status,
			ActorRole:  a.ActorRole,
			ActorID:    a.ActorID,
			RiderID:    &rider,
			CreatedAt:  a.At,
		}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", a.OrderID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLocation overwrites the rider position at l.Version.
func (r *OrderRepository) UpdateLocation(ctx context.Context, l LocationChange) (*models.Order, error) {
	values := map[string]any{
		"rider_lat":  l.Lat,
		"rider_lng":  l.Lng,
		"updated_at": l.At,
		"version":    gorm.Expr("version + 1"),
	}
	var out models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Order{}).Where("id = ? AND version = ?", l.OrderID, l.Version)
		if err := r.swap(tx, q, l.OrderID, values); err != nil {
			return err
		}
		return tx.Where("id = ?", l.OrderID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// swap runs the conditional update q. Zero affected rows is ErrNotFound
// when the order is gone and ErrStaleVersion otherwise.
func (r *OrderRepository) swap(tx *gorm.DB, q *gorm.DB, id string, values map[string]any) error {
	res := q.Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := tx.Model(&models.Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStaleVersion
}

// History returns the status history of an order, oldest first.
func (r *OrderRepository) History(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	rows := []models.OrderStatusHistory{}
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&rows).Error
	return rows, err
}

// Count returns the number of orders.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}

// Since returns the orders created at or after t, oldest first.
func (r *OrderRepository) Since(ctx context.Context, t time.Time) ([]models.Order, error) {
	return r.list(ctx, "created_at ASC", "created_at >= ?", t)
}

// DeliveredTotals returns the total of every delivered order.
func (r *OrderRepository) DeliveredTotals(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.WithContext(ctx).
		Select("id", "total").
		Where("status = ?", models.StatusDelivered).
		Find(&orders).Error
	return orders, err
}
