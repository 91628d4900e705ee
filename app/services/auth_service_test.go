package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/repositories"
	"github.com/shashiranjanraj/ayoo/app/services"
	"github.com/shashiranjanraj/ayoo/pkg/auth"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
	"github.com/shashiranjanraj/ayoo/pkg/testkit"
)

func newAuth(t *testing.T) (*services.AuthService, *repositories.UserRepository, *repositories.RestaurantRepository) {
	t.Helper()
	db := testkit.DB(t, models.All()...)
	users := repositories.NewUserRepository(db)
	restaurants := repositories.NewRestaurantRepository(db)
	return services.NewAuthService(users, restaurants), users, restaurants
}

func TestRegisterCustomerAndLogin(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()

	s, err := svc.Register(ctx, services.RegisterInput{Email: "Maria@Example.com", Password: "secret1", Name: "Maria"})
	require.NoError(t, err)
	assert.Equal(t, rbac.Customer, s.User.Role)
	assert.Equal(t, "maria@example.com", s.User.Email)

	claims, err := auth.ValidateToken(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, claims.UserID)

	_, err = svc.Register(ctx, services.RegisterInput{Email: "maria@example.com", Password: "secret1", Name: "Maria"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)

	in, err := svc.Login(ctx, services.LoginInput{Email: "maria@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, in.User.ID)

	_, err = svc.Login(ctx, services.LoginInput{Email: "maria@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = svc.Login(ctx, services.LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRegisterMerchantOpensRestaurant(t *testing.T) {
	svc, _, restaurants := newAuth(t)
	ctx := context.Background()

	s, err := svc.Register(ctx, services.RegisterInput{Email: "jose@example.com", Password: "secret1", Name: "Jose", Role: rbac.Merchant})
	require.NoError(t, err)
	require.NotEmpty(t, s.User.RestaurantID)

	rest, err := restaurants.FindByID(ctx, s.User.RestaurantID)
	require.NoError(t, err)
	assert.Equal(t, "Jose's Kitchen", rest.Name)
	assert.Equal(t, s.User.ID, rest.OwnerID)
	assert.True(t, rest.IsOpen)
}

func TestRegisterRiderStartsPending(t *testing.T) {
	svc, users, _ := newAuth(t)
	ctx := context.Background()

	s, err := svc.Register(ctx, services.RegisterInput{
		Email: "juan@example.com", Password: "secret1", Name: "Juan", Role: rbac.Rider,
		VehicleType: "MOTORCYCLE", LicensePlate: "ABC 1234",
	})
	require.NoError(t, err)

	u, err := users.FindByID(ctx, s.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RiderPending, u.RiderStatus)
	assert.Equal(t, "ABC 1234", u.LicensePlate)

	userSvc := services.NewUserService(users)
	approved, err := userSvc.SetRiderStatus(ctx, u.ID, models.RiderApproved)
	require.NoError(t, err)
	assert.Equal(t, models.RiderApproved, approved.RiderStatus)

	_, err = userSvc.SetRiderStatus(ctx, u.ID, "RETIRED")
	var verr *services.ValidationError
	assert.ErrorAs(t, err, &verr)

	customer, err := svc.Register(ctx, services.RegisterInput{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)
	_, err = userSvc.SetRiderStatus(ctx, customer.User.ID, models.RiderApproved)
	assert.ErrorIs(t, err, services.ErrNotRider)
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _ := newAuth(t)
	ctx := context.Background()
	s, err := svc.Register(ctx, services.RegisterInput{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)

	userSvc := services.NewUserService(users)
	got, err := userSvc.UpdateProfile(ctx, s.User.ID, services.ProfilePatch{
		Name: ptr(""), Address: ptr("Tibanga"), Lat: ptr(8.24), IsOnline: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "Tibanga", got.Address)
	assert.True(t, got.IsOnline)

	_, err = userSvc.UpdateProfile(ctx, "missing", services.ProfilePatch{})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
