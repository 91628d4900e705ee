package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Restaurant is a merchant storefront. Items are loaded with Preload.
type Restaurant struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Rating       float64    `json:"rating"`
	DeliveryTime string     `gorm:"size:32" json:"deliveryTime"`
	Image        string     `gorm:"size:1024" json:"image"`
	Cuisine      string     `gorm:"size:128" json:"cuisine"`
	IsPartner    bool       `json:"isPartner"`
	IsOpen       bool       `json:"isOpen"`
	Address      string     `gorm:"size:512" json:"address,omitempty"`
	OwnerID      string     `gorm:"size:64;index" json:"ownerId,omitempty"`
	Lat          *float64   `json:"lat,omitempty"`
	Lng          *float64   `json:"lng,omitempty"`
	Items        []FoodItem `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// FoodItem is one menu entry. Its price may change freely; orders keep
// their own copy.
type FoodItem struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	RestaurantID string          `gorm:"size:36;not null;index" json:"restaurantId"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Description  string          `gorm:"type:text" json:"description"`
	Category     string          `gorm:"size:128" json:"category"`
	Image        string          `gorm:"size:1024" json:"image"`
	IsPopular    bool            `json:"isPopular"`
	IsSpicy      bool            `json:"isSpicy"`
	IsNew        bool            `json:"isNew"`
	IsAvailable  bool            `json:"isAvailable"`
	CreatedAt    time.Time       `json:"createdAt"`
}
