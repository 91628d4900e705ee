package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/app/models"
)

// RestaurantRepository stores restaurants and their menus.
type RestaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

func (r *RestaurantRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

func (r *RestaurantRepository) All(ctx context.Context) ([]models.Restaurant, error) {
	out := []models.Restaurant{}
	err := r.withItems(ctx).Order("name ASC").Find(&out).Error
	for i := range out {
		if out[i].Items == nil {
			out[i].Items = []models.FoodItem{}
		}
	}
	return out, err
}

func (r *RestaurantRepository) FindByID(ctx context.Context, id string) (*models.Restaurant, error) {
	var rest models.Restaurant
	if err := r.withItems(ctx).Where("id = ?", id).First(&rest).Error; err != nil {
		return nil, notFound(err)
	}
	if rest.Items == nil {
		rest.Items = []models.FoodItem{}
	}
	return &rest, nil
}

// Create inserts rest with a fresh id. Menu items, if any, are inserted
// with it.
func (r *RestaurantRepository) Create(ctx context.Context, rest *models.Restaurant) error {
	rest.ID = uuid.NewString()
	for i := range rest.Items {
		rest.Items[i].ID = uuid.NewString()
		rest.Items[i].RestaurantID = rest.ID
	}
	return r.db.WithContext(ctx).Create(rest).Error
}

// Update writes the given columns and returns the refreshed restaurant.
func (r *RestaurantRepository) Update(ctx context.Context, id string, values map[string]any) (*models.Restaurant, error) {
	if len(values) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.FindByID(ctx, id)
}

func (r *RestaurantRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Restaurant{}).Count(&n).Error
	return n, err
}

// FindItem returns a menu item of the restaurant.
func (r *RestaurantRepository) FindItem(ctx context.Context, restaurantID, itemID string) (*models.FoodItem, error) {
	var item models.FoodItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", itemID, restaurantID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// AddItem appends item to the restaurant's menu.
func (r *RestaurantRepository) AddItem(ctx context.Context, restaurantID string, item *models.FoodItem) error {
	if _, err := r.FindByID(ctx, restaurantID); err != nil {
		return err
	}
	item.ID = uuid.NewString()
	item.RestaurantID = restaurantID
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItem patches a menu item in place.
func (r *RestaurantRepository) UpdateItem(ctx context.Context, restaurantID, itemID string, values map[string]any) (*models.FoodItem, error) {
	if _, err := r.FindItem(ctx, restaurantID, itemID); err != nil {
		return nil, err
	}
	if len(values) > 0 {
		err := r.db.WithContext(ctx).Model(&models.FoodItem{}).
			Where("id = ? AND restaurant_id = ?", itemID, restaurantID).
			Updates(values).Error
		if err != nil {
			return nil, err
		}
	}
	return r.FindItem(ctx, restaurantID, itemID)
}

// DeleteItem removes a menu item. Orders that already include it keep
// their snapshot.
func (r *RestaurantRepository) DeleteItem(ctx context.Context, restaurantID, itemID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", itemID, restaurantID).
		Delete(&models.FoodItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
