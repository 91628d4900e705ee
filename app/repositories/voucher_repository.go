package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/app/models"
)

// VoucherRepository stores promo codes. Codes are kept upper-case.
type VoucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) *VoucherRepository {
	return &VoucherRepository{db: db}
}

func (r *VoucherRepository) All(ctx context.Context) ([]models.Voucher, error) {
	out := []models.Voucher{}
	err := r.db.WithContext(ctx).Order("code ASC").Find(&out).Error
	return out, err
}

func (r *VoucherRepository) FindByID(ctx context.Context, id string) (*models.Voucher, error) {
	var v models.Voucher
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

// FindActiveByCode returns the active voucher with code.
func (r *VoucherRepository) FindActiveByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var v models.Voucher
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", strings.ToUpper(code), true).
		First(&v).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

// Create inserts v. A code already in use is ErrDuplicate.
func (r *VoucherRepository) Create(ctx context.Context, v *models.Voucher) error {
	v.Code = strings.ToUpper(v.Code)
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Voucher{}).Where("code = ?", v.Code).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicate
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(v).Error
}

// Update writes the given columns and returns the refreshed voucher.
func (r *VoucherRepository) Update(ctx context.Context, id string, values map[string]any) (*models.Voucher, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if code, ok := values["code"].(string); ok {
		values["code"] = strings.ToUpper(code)
	}
	if len(values) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Voucher{}).Where("id = ?", id).Updates(values).Error; err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

func (r *VoucherRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Voucher{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
