package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/repositories"
	"github.com/shashiranjanraj/ayoo/app/services"
	"github.com/shashiranjanraj/ayoo/pkg/testkit"
)

func newVouchers(t *testing.T) *services.VoucherService {
	t.Helper()
	db := testkit.DB(t, models.All()...)
	return services.NewVoucherService(repositories.NewVoucherRepository(db))
}

func ayoo2026() services.VoucherInput {
	return services.VoucherInput{
		Code:          ptr("ayoo2026"),
		DiscountType:  ptr(models.DiscountPercentage),
		DiscountValue: ptr(decimal.NewFromInt(20)),
		MinOrderValue: ptr(decimal.NewFromInt(200)),
		MaxDiscount:   ptr(decimal.NewFromInt(100)),
		ExpiryDate:    ptr("2999-12-31T00:00:00Z"),
		Description:   ptr("20% off on your next order!"),
	}
}

func TestVoucherCreate(t *testing.T) {
	svc := newVouchers(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, ayoo2026())
	require.NoError(t, err)
	assert.Equal(t, "AYOO2026", v.Code)
	assert.Equal(t, "2999-12-31", v.ExpiryDate)
	assert.True(t, v.IsActive)

	_, err = svc.Create(ctx, ayoo2026())
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "code")

	_, err = svc.Create(ctx, services.VoucherInput{})
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)
}

func TestVoucherQuote(t *testing.T) {
	svc := newVouchers(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, ayoo2026())
	require.NoError(t, err)

	cases := []struct {
		subtotal int64
		discount int64
		eligible bool
	}{
		{150, 0, false},
		{300, 60, true},
		{1000, 100, true},
	}
	for _, tc := range cases {
		q, err := svc.Quote(ctx, services.QuoteInput{Code: "ayoo2026", Subtotal: decimal.NewFromInt(tc.subtotal)})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(tc.discount).Equal(q.Discount), "subtotal %d", tc.subtotal)
		assert.True(t, decimal.NewFromInt(tc.subtotal-tc.discount).Equal(q.Total))
		assert.Equal(t, tc.eligible, q.Eligible)
	}

	_, err = svc.Quote(ctx, services.QuoteInput{Code: "NOPE", Subtotal: decimal.NewFromInt(300)})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestVoucherExpiredAndInactive(t *testing.T) {
	svc := newVouchers(t)
	ctx := context.Background()

	in := ayoo2026()
	in.Code = ptr("OLD2020")
	in.ExpiryDate = ptr("2020-01-01")
	_, err := svc.Create(ctx, in)
	require.NoError(t, err)
	_, err = svc.Validate(ctx, "old2020")
	assert.ErrorIs(t, err, services.ErrVoucherExpired)

	v, err := svc.Create(ctx, ayoo2026())
	require.NoError(t, err)
	_, err = svc.Update(ctx, v.ID, services.VoucherInput{IsActive: ptr(false)})
	require.NoError(t, err)
	_, err = svc.Validate(ctx, "AYOO2026")
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, v.ID))
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
