package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/repositories"
	"github.com/shashiranjanraj/ayoo/pkg/testkit"
)

func newOrderRepo(t *testing.T) *repositories.OrderRepository {
	t.Helper()
	return repositories.NewOrderRepository(testkit.DB(t, models.All()...))
}

func draft(customer, restaurant string) *models.Order {
	return &models.Order{
		CustomerID:   customer,
		RestaurantID: restaurant,
		Items: []models.OrderItem{
			{ID: "x1", Name: "Chicken Inasal", Price: decimal.NewFromInt(100), Quantity: 2},
		},
		Total:           decimal.NewFromInt(245),
		DeliveryAddress: "Poblacion, Iligan City",
		CustomerName:    "Maria",
		RestaurantName:  "Inasal Haus",
	}
}

func TestCreateStampsNewOrder(t *testing.T) {
	repo := newOrderRepo(t)
	ctx := context.Background()

	o := draft("c1", "r1")
	o.Status = models.StatusDelivered
	rider := "sneaky"
	o.RiderID = &rider
	require.NoError(t, repo.Create(ctx, o))

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Nil(t, o.RiderID)
	assert.Equal(t, int64(1), o.Version)
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.True(t, decimal.NewFromInt(245).Equal(got.Total))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "x1", got.Items[0].ID)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Items[0].Price))
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestFindByIDMissing(t *testing.T) {
	repo := newOrderRepo(t)
	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestListsFilterByKey(t *testing.T) {
	repo := newOrderRepo(t)
	ctx := context.Background()

	a := draft("c1", "r1")
	b := draft("c1", "r2")
	c := draft("c2", "r1")
	for _, o := range []*models.Order{a, b, c} {
		require.NoError(t, repo.Create(ctx, o))
	}

	byCustomer, err := repo.ListByCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, byCustomer, 2)
	assert.Equal(t, b.ID, byCustomer[0].ID, "newest first")

	byRestaurant, err := repo.ListByRestaurant(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, byRestaurant, 2)

	none, err := repo.ListByRider(ctx, "rider-x")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListAvailableSkipsAssigned(t *testing.T) {
	repo := newOrderRepo(t)
	ctx := context.Background()

	open := draft("c1", "r1")
	claimed := draft("c1", "r1")
	accepted := draft("c1", "r1")
	for _, o := range []*models.Order{open, claimed, accepted} {
		require.NoError(t, repo.Create(ctx, o))
	}

	_, err := repo.AssignRider(ctx, repositories.RiderAssignment{
		OrderID: claimed.ID, Version: 1, Status: models.StatusPending, RiderID: "rider1", At: time.Now(),
	})
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, repositories.StatusChange{
		OrderID: accepted.ID, Version: 1, From: models.StatusPending, To: models.StatusAccepted, At: time.Now(),
	})
	require.NoError(t, err)

	pool := []models.OrderStatus{models.StatusPending, models.StatusReadyForPickup}
	got, err := repo.ListAvailable(ctx, pool)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)

	empty, err := repo.ListAvailable(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdateStatusCompareAndSwap(t *testing.T) {
	repo := newOrderRepo(t)
	ctx := context.Background()

	o := draft("c1", "r1")
	require.NoError(t, repo.Create(ctx, o))

	at := repo.Now(o.UpdatedAt)
	got, err := repo.UpdateStatus(ctx, repositories.StatusChange{
		OrderID: o.ID, Version: 1, From: models.StatusPending, To: models.StatusAccepted,
		ActorRole: "MERCHANT", ActorID: "m1", At: at,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)
	assert.Equal(t, int64(2), got.Version)
	assert.True(t, got.UpdatedAt.After(o.UpdatedAt))

	_, err = repo.UpdateStatus(ctx, repositories.StatusChange{
		OrderID: o.ID, Version: 1, From: models.StatusPending, To: models.StatusCancelled, At: time.Now(),
	})
	assert.ErrorIs(t, err, repositories.ErrStaleVersion)

	_, err = repo.UpdateStatus(ctx, repositories.StatusChange{OrderID: "missing", Version: 1, At: time.Now()})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	history, err := repo.History(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, history, 1, "failed writes leave no history")
	assert.Equal(t, models.StatusPending, history[0].FromStatus)
	assert.Equal(t, models.StatusAccepted, history[0].ToStatus)
	assert.Equal(t, "MERCHANT", history[0].ActorRole)
}

func TestUpdateStatusWithRiderKeepsExistingRider(t *testing.T) {
	repo := newOrderRepo(t)
	ctx := context.Background()

	o := draft("c1", "r1")
	require.NoError(t, repo.Create(ctx, o))
	_, err := repo.AssignRider(ctx, repositories.RiderAssignment{
		OrderID: o.ID, Version: 1, Status: models.StatusPending, RiderID: "rider1", At: time.Now(),
	})
	require.NoError(t, err)

	other := "rider2"
	_, err = repo.UpdateStatus(ctx, repositories.StatusChange{
		OrderID: o.ID, Version: 2, From: models.StatusPending, To: models.StatusAccepted, RiderID: &other, At: time.Now(),
	})
	assert.ErrorIs(t, err, repositories.ErrStaleVersion)

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RiderID)
	assert.Equal(t, "rider1", *got.RiderID)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestAssignRiderOnlyOnce(t *testing.T) {
	repo := newOrderRepo(t)
	ctx := context.Background()

	o := draft("c1", "r1")
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.AssignRider(ctx, repositories.RiderAssignment{
		OrderID: o.ID, Version: 1, Status: models.StatusPending, RiderID: "rider1", At: time.Now(),
	})
	require.NoError(t, err)
	require.NotNil(t, got.RiderID)
	assert.Equal(t, "rider1", *got.RiderID)
	assert.Equal(t, models.StatusPending, got.Status)

	_, err = repo.AssignRider(ctx, repositories.RiderAssignment{
		OrderID: o.ID, Version: 2, Status: models.StatusPending, RiderID: "rider2", At: time.Now(),
	})
	assert.ErrorIs(t, err, repositories.ErrStaleVersion)
}

func TestUpdateLocation(t *testing.T) {
	repo := newOrderRepo(t)
	ctx := context.Background()

	o := draft("c1", "r1")
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.UpdateLocation(ctx, repositories.LocationChange{
		OrderID: o.ID, Version: 1, Lat: 8.2285, Lng: 124.2452, At: repo.Now(o.UpdatedAt),
	})
	require.NoError(t, err)
	require.NotNil(t, got.RiderLat)
	assert.InDelta(t, 8.2285, *got.RiderLat, 1e-9)
	assert.InDelta(t, 124.2452, *got.RiderLng, 1e-9)
	assert.Equal(t, models.StatusPending, got.Status)

	history, err := repo.History(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStampStrictlyIncreases(t *testing.T) {
	prev := time.Date(2026, 1, 1, 12, 0, 0, 500_000, time.UTC)
	assert.Equal(t, prev.Add(time.Microsecond), repositories.Stamp(prev, prev))
	assert.Equal(t, prev.Add(time.Microsecond), repositories.Stamp(prev.Add(-time.Hour), prev))

	later := prev.Add(time.Second + 999)
	assert.Equal(t, later.Truncate(time.Microsecond), repositories.Stamp(later, prev))
}

func TestFrozenClockStillAdvancesUpdatedAt(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newOrderRepo(t).WithClock(func() time.Time { return frozen })
	ctx := context.Background()

	o := draft("c1", "r1")
	require.NoError(t, repo.Create(ctx, o))
	assert.Equal(t, frozen, o.CreatedAt.UTC())

	got, err := repo.UpdateStatus(ctx, repositories.StatusChange{
		OrderID: o.ID, Version: 1, From: models.StatusPending, To: models.StatusAccepted,
		At: repo.Now(o.UpdatedAt),
	})
	require.NoError(t, err)
	assert.Equal(t, frozen.Add(time.Microsecond), got.UpdatedAt.UTC())
}
