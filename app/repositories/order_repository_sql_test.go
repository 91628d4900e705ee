package repositories_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/repositories"
)

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestUpdateLocationIssuesVersionedUpdate(t *testing.T) {
	db, mock := mockDB(t)
	repo := repositories.NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "o-1", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "orders" WHERE id = $1`)).
		WithArgs("o-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.UpdateLocation(context.Background(), repositories.LocationChange{
		OrderID: "o-1", Version: 4, Lat: 1, Lng: 2, At: time.Now(),
	})
	assert.ErrorIs(t, err, repositories.ErrStaleVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignRiderGuardsNullRider(t *testing.T) {
	db, mock := mockDB(t)
	repo := repositories.NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .+ WHERE \(?id = \$\d+ AND version = \$\d+ AND rider_id IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := repo.AssignRider(context.Background(), repositories.RiderAssignment{
		OrderID: "o-9", Version: 1, Status: models.StatusPending, RiderID: "rider1", At: time.Now(),
	})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
