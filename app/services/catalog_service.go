package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/ayoo/app/events"
	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/repositories"
	"github.com/shashiranjanraj/ayoo/pkg/cache"
	"github.com/shashiranjanraj/ayoo/pkg/event"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/storage"
)

const (
	restaurantsCacheKey = "ayoo:restaurants:all"
	restaurantsCacheTTL = 30 * time.Second
	defaultItemImage    = "https://picsum.photos/seed/food/400/400"
)

// RestaurantPatch is the body of PATCH /api/restaurants/{id}. Nil fields
// are left alone; empty strings do not clear name, cuisine or image.
type RestaurantPatch struct {
	Name         *string  `json:"name" validate:"nullable,max=255"`
	Cuisine      *string  `json:"cuisine"`
	Address      *string  `json:"address"`
	Lat          *float64 `json:"lat" validate:"nullable,between=-90,90"`
	Lng          *float64 `json:"lng" validate:"nullable,between=-180,180"`
	Image        *string  `json:"image"`
	DeliveryTime *string  `json:"deliveryTime"`
	IsOpen       *bool    `json:"isOpen"`
}

// ItemInput is the body of the menu item endpoints. On create, name and
// price are required.
type ItemInput struct {
	Name        *string          `json:"name" validate:"nullable,max=255"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Image       *string          `json:"image"`
	IsPopular   *bool            `json:"isPopular"`
	IsSpicy     *bool            `json:"isSpicy"`
	IsNew       *bool            `json:"isNew"`
	IsAvailable *bool            `json:"isAvailable"`
}

// CatalogService manages restaurants and menus. The restaurant list is
// cached; every write fires events.CatalogChanged, whose listener drops
// the cache.
type CatalogService struct {
	restaurants *repositories.RestaurantRepository
	cache       *cache.Store
	disk        storage.Disk
	events      *event.Dispatcher
}

func NewCatalogService(restaurants *repositories.RestaurantRepository, store *cache.Store, disk storage.Disk, events *event.Dispatcher) *CatalogService {
	return &CatalogService{restaurants: restaurants, cache: store, disk: disk, events: events}
}

// List returns every restaurant with its menu.
func (s *CatalogService) List(ctx context.Context) ([]models.Restaurant, error) {
	return cache.Remember(ctx, s.cache, restaurantsCacheKey, restaurantsCacheTTL, s.restaurants.All)
}

// Forget drops the cached restaurant list.
func (s *CatalogService) Forget(ctx context.Context) error {
	return s.cache.Del(ctx, restaurantsCacheKey)
}

func (s *CatalogService) Find(ctx context.Context, id string) (*models.Restaurant, error) {
	return s.restaurants.FindByID(ctx, id)
}

func (s *CatalogService) changed(ctx context.Context, restaurantID string) {
	s.events.FireAsync(ctx, events.CatalogChanged, events.CatalogEvent{RestaurantID: restaurantID})
}

// Update patches a restaurant's profile.
func (s *CatalogService) Update(ctx context.Context, id string, p RestaurantPatch) (*models.Restaurant, error) {
	values := map[string]any{}
	if p.Name != nil && *p.Name != "" {
		values["name"] = *p.Name
	}
	if p.Cuisine != nil && *p.Cuisine != "" {
		values["cuisine"] = *p.Cuisine
	}
	if p.Image != nil && *p.Image != "" {
		values["image"] = *p.Image
	}
	if p.Address != nil {
		values["address"] = *p.Address
	}
	if p.Lat != nil {
		values["lat"] = *p.Lat
	}
	if p.Lng != nil {
		values["lng"] = *p.Lng
	}
	if p.DeliveryTime != nil {
		values["delivery_time"] = *p.DeliveryTime
	}
	if p.IsOpen != nil {
		values["is_open"] = *p.IsOpen
	}

	if _, err := s.restaurants.FindByID(ctx, id); err != nil {
		return nil, err
	}
	rest, err := s.restaurants.Update(ctx, id, values)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, id)
	return rest, nil
}

// AddItem appends an item to a restaurant's menu.
func (s *CatalogService) AddItem(ctx context.Context, restaurantID string, in ItemInput) (*models.FoodItem, error) {
	fields := map[string]string{}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		fields["name"] = "The name field is required."
	}
	if in.Price == nil {
		fields["price"] = "The price field is required."
	} else if in.Price.IsNegative() {
		fields["price"] = "The price field must be at least 0."
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	item := &models.FoodItem{
		Name:        *in.Name,
		Price:       *in.Price,
		Description: deref(in.Description),
		Category:    deref(in.Category),
		Image:       deref(in.Image),
		IsPopular:   in.IsPopular != nil && *in.IsPopular,
		IsSpicy:     in.IsSpicy != nil && *in.IsSpicy,
		IsNew:       in.IsNew != nil && *in.IsNew,
		IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
	}
	if item.Image == "" {
		item.Image = defaultItemImage
	}
	if err := s.restaurants.AddItem(ctx, restaurantID, item); err != nil {
		return nil, err
	}
	s.changed(ctx, restaurantID)
	return item, nil
}

// UpdateItem patches a menu item. Orders already placed keep their prices.
func (s *CatalogService) UpdateItem(ctx context.Context, restaurantID, itemID string, in ItemInput) (*models.FoodItem, error) {
	values := map[string]any{}
	if in.Name != nil {
		values["name"] = *in.Name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, invalid("price", "The price field must be at least 0.")
		}
		values["price"] = *in.Price
	}
	if in.Description != nil {
		values["description"] = *in.Description
	}
	if in.Category != nil {
		values["category"] = *in.Category
	}
	if in.Image != nil {
		values["image"] = *in.Image
	}
	if in.IsPopular != nil {
		values["is_popular"] = *in.IsPopular
	}
	if in.IsSpicy != nil {
		values["is_spicy"] = *in.IsSpicy
	}
	if in.IsNew != nil {
		values["is_new"] = *in.IsNew
	}
	if in.IsAvailable != nil {
		values["is_available"] = *in.IsAvailable
	}

	item, err := s.restaurants.UpdateItem(ctx, restaurantID, itemID, values)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, restaurantID)
	return item, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, restaurantID, itemID string) error {
	if err := s.restaurants.DeleteItem(ctx, restaurantID, itemID); err != nil {
		return err
	}
	s.changed(ctx, restaurantID)
	return nil
}

// imageTypes maps accepted upload content types to file extensions.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadItemImage stores an image on the configured disk and points the
// item at it. The previous image is removed when this disk issued it.
func (s *CatalogService) UploadItemImage(ctx context.Context, restaurantID, itemID, contentType string, r io.Reader) (*models.FoodItem, error) {
	ext, ok := imageTypes[contentType]
	if !ok {
		return nil, invalid("image", "The image must be a jpeg, png, webp or gif file.")
	}
	current, err := s.restaurants.FindItem(ctx, restaurantID, itemID)
	if err != nil {
		return nil, err
	}

	key := path.Join("restaurants", restaurantID, "items", itemID+"-"+uuid.NewString()[:8]+ext)
	if err := s.disk.Put(ctx, key, r, contentType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	url := s.disk.URL(key)
	item, err := s.UpdateItem(ctx, restaurantID, itemID, ItemInput{Image: &url})
	if err != nil {
		s.dropImage(ctx, key)
		return nil, err
	}
	if old, ok := s.disk.KeyFromURL(current.Image); ok && old != key {
		s.dropImage(ctx, old)
	}
	return item, nil
}

func (s *CatalogService) dropImage(ctx context.Context, key string) {
	if err := s.disk.Delete(ctx, key); err != nil {
		logger.WithCtx(ctx).Warn("image cleanup failed", "key", key, "error", err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
