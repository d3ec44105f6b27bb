package seeders_test

import (
	"io"
	"testing"

	"github.com/shashiranjanraj/heartscript/app/models"
	_ "github.com/shashiranjanraj/heartscript/database/migrations"
	"github.com/shashiranjanraj/heartscript/database/seeders"
	"github.com/shashiranjanraj/heartscript/pkg/database"
	"github.com/shashiranjanraj/heartscript/pkg/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalogIsIdempotent(t *testing.T) {
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, migration.New(db).WithOutput(io.Discard).Run())

	require.NoError(t, seeders.RunAll(db, io.Discard))
	require.NoError(t, seeders.RunAll(db, io.Discard))

	var categories, products int64
	db.Model(&models.Category{}).Count(&categories)
	db.Model(&models.Product{}).Count(&products)
	assert.EqualValues(t, 3, categories)
	assert.EqualValues(t, 5, products)
}
