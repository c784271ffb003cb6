package database

import (
	"testing"

	"catering/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host: "db", Port: "3306", Username: "app", Password: "pw", DBName: "catering", Charset: "utf8mb4",
	})
	assert.Equal(t, "app:pw@tcp(db:3306)/catering?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
}

func TestSeedTags_EmptyTable(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tags`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `tags`").
		WillReturnResult(sqlmock.NewResult(0, 22))
	mock.ExpectCommit()

	n, err := SeedTags(db, false)
	require.NoError(t, err)
	assert.Equal(t, 22, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedTags_SkipsWhenPresent(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tags`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectCommit()

	n, err := SeedTags(db, false)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedTags_Reset(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `tags`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO `tags`").
		WillReturnResult(sqlmock.NewResult(0, 22))
	mock.ExpectCommit()

	n, err := SeedTags(db, true)
	require.NoError(t, err)
	assert.Equal(t, 22, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
