// Package dbtest provides an in-memory database for package tests.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cineverse-captions/cineverse/internal/db/models"
)

// Open creates a migrated in-memory SQLite database that lives for the duration of the test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := conn.DB()
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.AutoMigrate(models.All()...), "failed to migrate test database")

	return conn
}

// User inserts an active user with the given role.
func User(t *testing.T, conn *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	u := &models.User{
		Name:       email,
		Email:      models.NormalizeEmail(email),
		Password:   models.HashPassword("password123"),
		Role:       role,
		Active:     true,
		AuthSource: models.AuthSourceLocal,
	}
	require.NoError(t, conn.Create(u).Error)

	return u
}
