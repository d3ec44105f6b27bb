package graphql_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appgraphql "github.com/shashiranjanraj/heartscript/app/graphql"
	"github.com/shashiranjanraj/heartscript/app/repositories"
	"github.com/shashiranjanraj/heartscript/app/services"
	"github.com/shashiranjanraj/heartscript/database/seeders"
	"github.com/shashiranjanraj/heartscript/pkg/testkit"
)

func schema(t *testing.T) graphql.Schema {
	t.Helper()
	db := testkit.DB(t)
	require.NoError(t, seeders.SeedCatalog(db))

	s, err := appgraphql.NewCatalogSchema(services.NewCatalogService(repositories.NewCatalogRepository(db), nil))
	require.NoError(t, err)
	return s
}

func query(t *testing.T, s graphql.Schema, q string) string {
	t.Helper()
	res := graphql.Do(graphql.Params{Schema: s, RequestString: q, Context: context.Background()})
	require.Empty(t, res.Errors)
	out, err := json.Marshal(res.Data)
	require.NoError(t, err)
	return string(out)
}

func TestCategories(t *testing.T) {
	s := schema(t)
	assert.JSONEq(t,
		`{"categories":[{"id":1,"name":"Cards"},{"id":2,"name":"Frames"},{"id":3,"name":"Hampers"}]}`,
		query(t, s, `{ categories { id name } }`))
}

func TestProductsByCategory(t *testing.T) {
	s := schema(t)
	assert.JSONEq(t,
		`{"products":[{"name":"Chocolate Memory Box","price":1199,"category":{"name":"Hampers"}}]}`,
		query(t, s, `{ products(category: "3") { name price category { name } } }`))
}

func TestProductWithRelated(t *testing.T) {
	s := schema(t)
	assert.JSONEq(t,
		`{"product":{"name":"Polaroid Wall Frame","related":[{"name":"Song Lyrics Frame"}]}}`,
		query(t, s, `{ product(id: 3) { name related { name } } }`))

	assert.JSONEq(t, `{"product":null}`, query(t, s, `{ product(id: 999) { name } }`))
}

func TestInvalidFilterIsAnError(t *testing.T) {
	s := schema(t)
	res := graphql.Do(graphql.Params{Schema: s, RequestString: `{ products(category: "cards") { id } }`, Context: context.Background()})
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "invalid category filter")
}
