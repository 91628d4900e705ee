package seeders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
)

func init() {
	Register("restaurants", seedRestaurants)
}

// seedRestaurants creates the demo merchant and its kitchen. The merchant
// owns the restaurant, so it can manage the menu after logging in.
func seedRestaurants(_ context.Context, db *gorm.DB) error {
	const email = "kusina@ayoo.ph"

	var owner models.User
	err := db.Where("email = ?", email).First(&owner).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := ensureUser(db, models.User{Email: email, Name: "Kusina ni Maria", Role: rbac.Merchant}); err != nil {
		return err
	}
	if err := db.Where("email = ?", email).First(&owner).Error; err != nil {
		return err
	}

	r := models.Restaurant{
		ID:           uuid.NewString(),
		Name:         "Kusina ni Maria",
		Rating:       4.8,
		DeliveryTime: "20-30 min",
		Cuisine:      "Filipino",
		IsPartner:    true,
		IsOpen:       true,
		Address:      "Quezon Ave, Iligan City",
		OwnerID:      owner.ID,
		Lat:          f64(8.2280),
		Lng:          f64(124.2452),
	}
	menu := []struct {
		name, category string
		price          int64
		popular, spicy bool
	}{
		{"Chicken Inasal", "Grill", 150, true, false},
		{"Pork Sisig", "Sizzling", 180, true, true},
		{"Sinigang na Baboy", "Soup", 220, false, false},
		{"Halo-Halo", "Dessert", 95, false, false},
	}
	for _, m := range menu {
		r.Items = append(r.Items, models.FoodItem{
			ID:          uuid.NewString(),
			Name:        m.name,
			Category:    m.category,
			Price:       decimal.NewFromInt(m.price),
			IsPopular:   m.popular,
			IsSpicy:     m.spicy,
			IsAvailable: true,
		})
	}
	if err := db.Create(&r).Error; err != nil {
		return err
	}
	return db.Model(&owner).Update("restaurant_id", r.ID).Error
}
