package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB wires gorm to a sqlmock connection speaking the Postgres dialect,
// for asserting the SQL the store actually sends in production.
func newMockDB(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: conn,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	return NewGormStore(gormDB, testRules()), mock
}

func TestListBuildingsQuery(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT buildings.uuid, buildings.name, buildings.code, count(machines.id) as machine_count FROM "buildings"`)).
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "name", "code", "machine_count"}).
			AddRow("b-1", "Ashoka", "ASH", 2).
			AddRow("b-2", "Rohini", "ROH", 0))

	list, err := s.ListBuildings(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, BuildingSummary{UUID: "b-1", Name: "Ashoka", Code: "ASH", MachineCount: 2}, list[0])
	assert.Equal(t, 0, list[1].MachineCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchLastSeenQuery(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "last_seen"=$1 WHERE id = $2`)).
		WithArgs(Any{}, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s.TouchLastSeen(context.Background(), 7, testNow)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeTokenQuery(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "api_tokens" WHERE uuid = $1`)).
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.RevokeToken(context.Background(), "t-1")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
