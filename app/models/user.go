package models

import "time"

const (
	RiderPending   = "PENDING"
	RiderApproved  = "APPROVED"
	RiderSuspended = "SUSPENDED"
)

// User is any account: customer, merchant, rider or admin.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password     string    `gorm:"size:255;not null" json:"-"`                 // bcrypt hash
	Name         string    `gorm:"size:255;not null" json:"name"`
	Role         string    `gorm:"size:16;not null;index" json:"role"`
	RestaurantID string    `gorm:"size:36" json:"restaurantId,omitempty"`
	Address      string    `gorm:"size:512" json:"address,omitempty"`
	Phone        string    `gorm:"size:32" json:"phone,omitempty"`
	Lat          *float64  `json:"lat,omitempty"`
	Lng          *float64  `json:"lng,omitempty"`
	RiderStatus  string    `gorm:"size:16" json:"riderStatus,omitempty"`
	VehicleType  string    `gorm:"size:32" json:"vehicleType,omitempty"`
	LicensePlate string    `gorm:"size:32" json:"licensePlate,omitempty"`
	IsOnline     bool      `json:"isOnline"`
	PhotoURL     string    `gorm:"size:1024" json:"photoUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
