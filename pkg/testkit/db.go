// Package testkit holds helpers shared by package tests: a migrated
// in-memory database and a cookie-keeping HTTP client.
package testkit

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/shashiranjanraj/heartscript/database/migrations"
	"github.com/shashiranjanraj/heartscript/pkg/database"
	"github.com/shashiranjanraj/heartscript/pkg/migration"
)

// DB returns a fresh, fully migrated SQLite database that lives for the
// test.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err, "testkit: open sqlite")
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, migration.New(db).WithOutput(io.Discard).Run(), "testkit: migrate")
	return db
}
