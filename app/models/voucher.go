package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFixed      = "FIXED"
)

// Voucher is a promo code. ExpiryDate is a calendar day (YYYY-MM-DD); the
// voucher stays valid until the end of that day, UTC.
type Voucher struct {
	ID            string              `gorm:"primaryKey;size:36" json:"id"`
	Code          string              `gorm:"uniqueIndex;size:64;not null" json:"code"`
	DiscountType  string              `gorm:"size:16;not null" json:"discountType"`
	DiscountValue decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"discountValue"`
	MinOrderValue decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"minOrderValue"`
	MaxDiscount   decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"maxDiscount"`
	ExpiryDate    string              `gorm:"size:10;not null" json:"expiryDate"`
	IsActive      bool                `json:"isActive"`
	Description   string              `gorm:"size:512" json:"description"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// ExpiresAt is the first instant the voucher is no longer valid.
func (v *Voucher) ExpiresAt() (time.Time, error) {
	day, err := time.Parse(time.DateOnly, v.ExpiryDate)
	if err != nil {
		return time.Time{}, err
	}
	return day.AddDate(0, 0, 1), nil
}

// Expired reports whether the voucher has lapsed at now. An unparseable
// expiry date counts as expired.
func (v *Voucher) Expired(now time.Time) bool {
	at, err := v.ExpiresAt()
	if err != nil {
		return true
	}
	return !now.Before(at)
}

// Discount returns what v takes off subtotal, or zero when subtotal is
// below the minimum order value. The result never exceeds subtotal.
func (v *Voucher) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(v.MinOrderValue) {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch v.DiscountType {
	case DiscountPercentage:
		d = subtotal.Mul(v.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	default:
		d = v.DiscountValue
	}
	if v.MaxDiscount.Valid && d.GreaterThan(v.MaxDiscount.Decimal) {
		d = v.MaxDiscount.Decimal
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	return d
}
