package services

import (
	"context"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/repositories"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
)

// ProfilePatch is the body of PATCH /api/users/{id}. Nil fields are left
// alone; an empty name does not clear it.
type ProfilePatch struct {
	Name         *string  `json:"name" validate:"nullable,max=255"`
	Address      *string  `json:"address"`
	Phone        *string  `json:"phone" validate:"nullable,mobile"`
	Lat          *float64 `json:"lat" validate:"nullable,between=-90,90"`
	Lng          *float64 `json:"lng" validate:"nullable,between=-180,180"`
	VehicleType  *string  `json:"vehicleType"`
	LicensePlate *string  `json:"licensePlate"`
	PhotoURL     *string  `json:"photoUrl"`
	IsOnline     *bool    `json:"isOnline"`
}

type UserService struct {
	users *repositories.UserRepository
}

func NewUserService(users *repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Find(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateProfile applies p to the user.
func (s *UserService) UpdateProfile(ctx context.Context, id string, p ProfilePatch) (*models.User, error) {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return nil, err
	}
	values := map[string]any{}
	if p.Name != nil && *p.Name != "" {
		values["name"] = *p.Name
	}
	set := func(col string, v *string) {
		if v != nil {
			values[col] = *v
		}
	}
	set("address", p.Address)
	set("phone", p.Phone)
	set("vehicle_type", p.VehicleType)
	set("license_plate", p.LicensePlate)
	set("photo_url", p.PhotoURL)
	if p.Lat != nil {
		values["lat"] = *p.Lat
	}
	if p.Lng != nil {
		values["lng"] = *p.Lng
	}
	if p.IsOnline != nil {
		values["is_online"] = *p.IsOnline
	}
	return s.users.Update(ctx, id, values)
}

// Riders lists every rider account.
func (s *UserService) Riders(ctx context.Context) ([]models.User, error) {
	return s.users.ListByRole(ctx, rbac.Rider)
}

// SetRiderStatus approves or suspends a rider.
func (s *UserService) SetRiderStatus(ctx context.Context, id, status string) (*models.User, error) {
	switch status {
	case models.RiderPending, models.RiderApproved, models.RiderSuspended:
	default:
		return nil, invalid("status", "The selected status is invalid.")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != rbac.Rider {
		return nil, ErrNotRider
	}
	out, err := s.users.Update(ctx, id, map[string]any{"rider_status": status})
	if err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("rider status changed", "rider_id", id, "status", status)
	return out, nil
}
