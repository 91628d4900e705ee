package seeders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/database/seeders"
	"github.com/shashiranjanraj/ayoo/pkg/auth"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
	"github.com/shashiranjanraj/ayoo/pkg/testkit"
)

func TestRunAllIsIdempotent(t *testing.T) {
	db := testkit.DB(t, models.All()...)
	ctx := context.Background()

	require.NoError(t, seeders.RunAll(ctx, db))
	require.NoError(t, seeders.RunAll(ctx, db))

	var users, restaurants, vouchers int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Restaurant{}).Count(&restaurants)
	db.Model(&models.Voucher{}).Count(&vouchers)
	assert.EqualValues(t, 4, users)
	assert.EqualValues(t, 1, restaurants)
	assert.EqualValues(t, 1, vouchers)
}

func TestVoucherSeederKeepsExistingRow(t *testing.T) {
	db := testkit.DB(t, models.All()...)
	ctx := context.Background()

	require.NoError(t, seeders.Run(ctx, db, "vouchers"))
	var first models.Voucher
	require.NoError(t, db.Where("code = ?", "AYOO2026").First(&first).Error)

	require.NoError(t, seeders.Run(ctx, db, "vouchers"))
	var all []models.Voucher
	require.NoError(t, db.Find(&all).Error)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, "20", all[0].DiscountValue.String())
}

func TestSeededRows(t *testing.T) {
	db := testkit.DB(t, models.All()...)
	require.NoError(t, seeders.RunAll(context.Background(), db))

	var juan, pedro models.User
	require.NoError(t, db.Where("name = ?", "Juan Dela Cruz").First(&juan).Error)
	assert.Equal(t, models.RiderPending, juan.RiderStatus)
	assert.Equal(t, "ABC 1234", juan.LicensePlate)
	assert.True(t, auth.CheckPassword(juan.Password, seeders.DefaultPassword))

	require.NoError(t, db.Where("name = ?", "Pedro Penduko").First(&pedro).Error)
	assert.Equal(t, models.RiderApproved, pedro.RiderStatus)
	assert.True(t, pedro.IsOnline)
	require.NotNil(t, pedro.Lat)
	assert.InDelta(t, 8.2285, *pedro.Lat, 1e-9)

	var v models.Voucher
	require.NoError(t, db.Where("code = ?", "AYOO2026").First(&v).Error)
	assert.Equal(t, "2026-12-31", v.ExpiryDate)
	assert.True(t, v.MaxDiscount.Valid)
	assert.Equal(t, "100", v.MaxDiscount.Decimal.String())

	var merchant models.User
	require.NoError(t, db.Where("role = ?", rbac.Merchant).First(&merchant).Error)
	var r models.Restaurant
	require.NoError(t, db.Preload("Items").First(&r, "id = ?", merchant.RestaurantID).Error)
	assert.Equal(t, merchant.ID, r.OwnerID)
	assert.Len(t, r.Items, 4)
}

func TestNames(t *testing.T) {
	assert.ElementsMatch(t, []string{"admin", "riders", "vouchers", "restaurants"}, seeders.Names())
}

func TestRunNamedSeeders(t *testing.T) {
	db := testkit.DB(t, models.All()...)
	ctx := context.Background()

	require.NoError(t, seeders.Run(ctx, db, "vouchers"))
	var users, vouchers int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Voucher{}).Count(&vouchers)
	assert.Zero(t, users)
	assert.EqualValues(t, 1, vouchers)

	assert.ErrorContains(t, seeders.Run(ctx, db, "menus"), `seeder "menus" is not registered`)
}
