// Package migrations lists the schema changes applied by `ayoo migrate`.
package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/pkg/migration"
	"github.com/shashiranjanraj/ayoo/pkg/queue"
)

// All returns every migration; the runner orders them by name.
func All() []migration.Entry {
	return []migration.Entry{
		{Name: "20260101000000_create_users_table", Migration: tables(&models.User{})},
		{Name: "20260101000001_create_restaurants_tables", Migration: tables(&models.Restaurant{}, &models.FoodItem{})},
		{Name: "20260101000002_create_orders_tables", Migration: tables(&models.Order{}, &models.OrderStatusHistory{})},
		{Name: "20260101000003_create_vouchers_table", Migration: tables(&models.Voucher{})},
		{Name: "20260101000004_create_failed_jobs_table", Migration: tables(&queue.FailedJobRecord{})},
	}
}

// createTables creates its models on Up and drops them, last first, on Down.
type createTables struct {
	models []any
}

func tables(models ...any) createTables { return createTables{models: models} }

func (m createTables) Up(tx *gorm.DB) error {
	return tx.AutoMigrate(m.models...)
}

func (m createTables) Down(tx *gorm.DB) error {
	for i := len(m.models) - 1; i >= 0; i-- {
		if err := tx.Migrator().DropTable(m.models[i]); err != nil {
			return err
		}
	}
	return nil
}
