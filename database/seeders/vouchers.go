package seeders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/app/models"
)

func init() {
	Register("vouchers", seedVouchers)
}

// seedVouchers looks the voucher up by code only; the fresh id is applied
// through Attrs so it never becomes part of the lookup.
func seedVouchers(_ context.Context, db *gorm.DB) error {
	var v models.Voucher
	return db.Where(models.Voucher{Code: "AYOO2026"}).Attrs(models.Voucher{
		ID:            uuid.NewString(),
		DiscountType:  models.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(20),
		MinOrderValue: decimal.NewFromInt(200),
		MaxDiscount:   decimal.NewNullDecimal(decimal.NewFromInt(100)),
		ExpiryDate:    "2026-12-31",
		IsActive:      true,
		Description:   "20% off on your next order!",
	}).FirstOrCreate(&v).Error
}
