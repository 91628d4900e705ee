package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/repositories"
	"github.com/shashiranjanraj/ayoo/pkg/auth"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
)

const (
	defaultRestaurantImage = "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?auto=format&fit=crop&q=80&w=600"
	defaultDeliveryTime    = "20-30 min"
)

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Name           string `json:"name" validate:"required,max=255"`
	Role           string `json:"role" validate:"nullable,in=CUSTOMER,MERCHANT,RIDER"`
	RestaurantName string `json:"restaurantName"`
	Phone          string `json:"phone"`
	VehicleType    string `json:"vehicleType"`
	LicensePlate   string `json:"licensePlate"`
}

// LoginInput is the body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is what register and login return.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService struct {
	users       *repositories.UserRepository
	restaurants *repositories.RestaurantRepository
}

func NewAuthService(users *repositories.UserRepository, restaurants *repositories.RestaurantRepository) *AuthService {
	return &AuthService{users: users, restaurants: restaurants}
}

// Register creates an account. A merchant gets a restaurant of their own;
// a rider starts PENDING until an admin approves them.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = rbac.Customer
	}
	user := &models.User{
		ID:       uuid.NewString(),
		Email:    strings.TrimSpace(in.Email),
		Password: hash,
		Name:     in.Name,
		Role:     role,
		Phone:    in.Phone,
	}
	if role == rbac.Rider {
		user.RiderStatus = models.RiderPending
		user.VehicleType = in.VehicleType
		user.LicensePlate = in.LicensePlate
	}

	if _, err := s.users.FindByEmail(ctx, user.Email); err == nil {
		return nil, ErrEmailTaken
	}

	if role == rbac.Merchant {
		name := in.RestaurantName
		if name == "" {
			name = in.Name + "'s Kitchen"
		}
		rest := &models.Restaurant{
			Name:         name,
			Rating:       5.0,
			DeliveryTime: defaultDeliveryTime,
			Image:        defaultRestaurantImage,
			Cuisine:      "Various",
			IsPartner:    true,
			IsOpen:       true,
			OwnerID:      user.ID,
		}
		if err := s.restaurants.Create(ctx, rest); err != nil {
			return nil, fmt.Errorf("create restaurant: %w", err)
		}
		user.RestaurantID = rest.ID
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID, "role", user.Role)

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

// Login checks credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}
