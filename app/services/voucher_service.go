package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/repositories"
)

// VoucherInput is the body of POST and PATCH /api/vouchers. On create,
// code, discountType, discountValue and expiryDate are required.
type VoucherInput struct {
	Code          *string          `json:"code" validate:"nullable,alpha_num,max=64"`
	DiscountType  *string          `json:"discountType" validate:"nullable,in=PERCENTAGE,FIXED"`
	DiscountValue *decimal.Decimal `json:"discountValue"`
	MinOrderValue *decimal.Decimal `json:"minOrderValue"`
	MaxDiscount   *decimal.Decimal `json:"maxDiscount"`
	ExpiryDate    *string          `json:"expiryDate" validate:"nullable,date"`
	IsActive      *bool            `json:"isActive"`
	Description   *string          `json:"description"`
}

// QuoteInput is the body of POST /api/vouchers/quote.
type QuoteInput struct {
	Code     string          `json:"code" validate:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Quote is the discount a voucher gives on a subtotal.
type Quote struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Eligible bool            `json:"eligible"`
}

type VoucherService struct {
	vouchers *repositories.VoucherRepository
	now      func() time.Time
}

func NewVoucherService(vouchers *repositories.VoucherRepository) *VoucherService {
	return &VoucherService{vouchers: vouchers, now: time.Now}
}

func (s *VoucherService) List(ctx context.Context) ([]models.Voucher, error) {
	return s.vouchers.All(ctx)
}

// Create stores a new active voucher.
func (s *VoucherService) Create(ctx context.Context, in VoucherInput) (*models.Voucher, error) {
	fields := map[string]string{}
	if in.Code == nil || *in.Code == "" {
		fields["code"] = "The code field is required."
	}
	if in.DiscountType == nil {
		fields["discountType"] = "The discountType field is required."
	}
	if in.DiscountValue == nil || !in.DiscountValue.IsPositive() {
		fields["discountValue"] = "The discountValue field must be greater than 0."
	}
	if in.ExpiryDate == nil {
		fields["expiryDate"] = "The expiryDate field is required."
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	v := &models.Voucher{
		Code:          strings.ToUpper(*in.Code),
		DiscountType:  *in.DiscountType,
		DiscountValue: *in.DiscountValue,
		ExpiryDate:    normalizeDate(*in.ExpiryDate),
		IsActive:      true,
		Description:   deref(in.Description),
	}
	if in.MinOrderValue != nil {
		v.MinOrderValue = *in.MinOrderValue
	}
	if in.MaxDiscount != nil && in.MaxDiscount.IsPositive() {
		v.MaxDiscount = decimal.NewNullDecimal(*in.MaxDiscount)
	}
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}
	if err := s.vouchers.Create(ctx, v); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, invalid("code", "The code has already been taken.")
		}
		return nil, err
	}
	return v, nil
}

// Update patches a voucher.
func (s *VoucherService) Update(ctx context.Context, id string, in VoucherInput) (*models.Voucher, error) {
	values := map[string]any{}
	if in.Code != nil && *in.Code != "" {
		values["code"] = strings.ToUpper(*in.Code)
	}
	if in.DiscountType != nil {
		values["discount_type"] = *in.DiscountType
	}
	if in.DiscountValue != nil {
		values["discount_value"] = *in.DiscountValue
	}
	if in.MinOrderValue != nil {
		values["min_order_value"] = *in.MinOrderValue
	}
	if in.MaxDiscount != nil {
		values["max_discount"] = decimal.NewNullDecimal(*in.MaxDiscount)
	}
	if in.ExpiryDate != nil {
		values["expiry_date"] = normalizeDate(*in.ExpiryDate)
	}
	if in.IsActive != nil {
		values["is_active"] = *in.IsActive
	}
	if in.Description != nil {
		values["description"] = *in.Description
	}
	return s.vouchers.Update(ctx, id, values)
}

func (s *VoucherService) Delete(ctx context.Context, id string) error {
	return s.vouchers.Delete(ctx, id)
}

// Validate returns the active, unexpired voucher with code.
func (s *VoucherService) Validate(ctx context.Context, code string) (*models.Voucher, error) {
	v, err := s.vouchers.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if v.Expired(s.now()) {
		return nil, ErrVoucherExpired
	}
	return v, nil
}

// Quote computes the discount code gives on subtotal.
func (s *VoucherService) Quote(ctx context.Context, in QuoteInput) (*Quote, error) {
	if in.Subtotal.IsNegative() {
		return nil, invalid("subtotal", "The subtotal field must be at least 0.")
	}
	v, err := s.Validate(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	discount := v.Discount(in.Subtotal)
	return &Quote{
		Code:     v.Code,
		Subtotal: in.Subtotal,
		Discount: discount,
		Total:    in.Subtotal.Sub(discount),
		Eligible: !in.Subtotal.LessThan(v.MinOrderValue),
	}, nil
}

// normalizeDate keeps the calendar day of an ISO date or timestamp.
func normalizeDate(s string) string {
	if len(s) >= len(time.DateOnly) {
		if t, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)]); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return s
}
