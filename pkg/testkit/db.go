// Package testkit holds helpers shared by package tests: an isolated
// in-memory database, a canned outbound HTTP transport and envelope
// decoding for handler responses.
package testkit

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/pkg/database"
)

var dbSeq atomic.Int64

// DB opens a private in-memory sqlite database, migrates models into it and
// closes it when the test ends. The shared-cache name keeps every pooled
// connection on the same database.
func DB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testkit_%d_%d?mode=memory&cache=shared", dbSeq.Add(1), len(t.Name()))
	db, err := database.Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
