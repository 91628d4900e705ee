package seeders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/pkg/auth"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
)

func init() {
	Register("admin", seedAdmin)
	Register("riders", seedRiders)
}

func f64(v float64) *float64 { return &v }

// ensureUser inserts u unless a user with its email exists.
func ensureUser(db *gorm.DB, u models.User) error {
	var existing models.User
	err := db.Where("email = ?", u.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return err
	}
	u.ID = uuid.NewString()
	u.Password = hash
	return db.Create(&u).Error
}

func seedAdmin(_ context.Context, db *gorm.DB) error {
	return ensureUser(db, models.User{
		Email: "admin@ayoo.ph",
		Name:  "Ayoo Admin",
		Role:  rbac.Admin,
	})
}

func seedRiders(_ context.Context, db *gorm.DB) error {
	riders := []models.User{
		{
			Email:        "juan.rider@ayoo.ph",
			Name:         "Juan Dela Cruz",
			Role:         rbac.Rider,
			Phone:        "09171234567",
			RiderStatus:  models.RiderPending,
			VehicleType:  "MOTORCYCLE",
			LicensePlate: "ABC 1234",
		},
		{
			Email:       "pedro.rider@ayoo.ph",
			Name:        "Pedro Penduko",
			Role:        rbac.Rider,
			Phone:       "09181234567",
			RiderStatus: models.RiderApproved,
			VehicleType: "BICYCLE",
			IsOnline:    true,
			Lat:         f64(8.2285),
			Lng:         f64(124.2452),
		},
	}
	for _, r := range riders {
		if err := ensureUser(db, r); err != nil {
			return err
		}
	}
	return nil
}
