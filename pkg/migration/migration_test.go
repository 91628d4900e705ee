package migration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/pkg/migration"
)

type widget struct {
	ID   uint
	Name string
}

type gadget struct {
	ID uint
}

type createTable struct{ model any }

func (m createTable) Up(tx *gorm.DB) error   { return tx.Migrator().CreateTable(m.model) }
func (m createTable) Down(tx *gorm.DB) error { return tx.Migrator().DropTable(m.model) }

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestRunRollbackStatus(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	first := migration.New(db, []migration.Entry{
		{Name: "20260101000000_create_widgets", Migration: createTable{&widget{}}},
	})
	applied, err := first.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260101000000_create_widgets"}, applied)

	// registered out of order on purpose
	second := migration.New(db, []migration.Entry{
		{Name: "20260102000000_create_gadgets", Migration: createTable{&gadget{}}},
		{Name: "20260101000000_create_widgets", Migration: createTable{&widget{}}},
	})
	applied, err = second.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260102000000_create_gadgets"}, applied)

	status, err := second.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []migration.Status{
		{Name: "20260101000000_create_widgets", Ran: true, Batch: 1},
		{Name: "20260102000000_create_gadgets", Ran: true, Batch: 2},
	}, status)

	reverted, err := second.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260102000000_create_gadgets"}, reverted)
	assert.False(t, db.Migrator().HasTable(&gadget{}))
	assert.True(t, db.Migrator().HasTable(&widget{}))

	applied, err = second.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260102000000_create_gadgets"}, applied)
}

func TestRollbackWithNothingRun(t *testing.T) {
	r := migration.New(openDB(t), nil)
	reverted, err := r.Rollback(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reverted)
}
