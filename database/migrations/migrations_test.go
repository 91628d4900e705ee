package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/database/migrations"
	"github.com/shashiranjanraj/ayoo/pkg/migration"
	"github.com/shashiranjanraj/ayoo/pkg/queue"
	"github.com/shashiranjanraj/ayoo/pkg/testkit"
)

func TestMigrateAndRollback(t *testing.T) {
	db := testkit.DB(t)
	ctx := context.Background()
	r := migration.New(db, migrations.All())

	applied, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, len(migrations.All()))

	for _, m := range append(models.All(), &queue.FailedJobRecord{}) {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}

	again, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	reverted, err := r.Rollback(ctx)
	require.NoError(t, err)
	assert.Len(t, reverted, len(applied))
	assert.False(t, db.Migrator().HasTable(&models.Order{}))
	assert.False(t, db.Migrator().HasTable(&models.User{}))

	status, err := r.Status(ctx)
	require.NoError(t, err)
	for _, s := range status {
		assert.False(t, s.Ran, s.Name)
	}
}
