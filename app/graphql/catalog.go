// Package graphql exposes the read-only catalog queries:
//
//	{ categories { id name } }
//	{ products(category: "2") { id name price category { name } } }
//	{ product(id: 1) { name related { id name } } }
package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/app/services"
	pkggraphql "github.com/shashiranjanraj/heartscript/pkg/graphql"
)

var errUnavailable = errors.New("catalog unavailable")

// public hides storage failures from clients.
func public(v interface{}, err error) (interface{}, error) {
	var pe *services.PersistenceError
	if errors.As(err, &pe) {
		return nil, errUnavailable
	}
	return v, err
}

// NewCatalogSchema builds the schema served on /graphql.
func NewCatalogSchema(catalog *services.CatalogService) (graphql.Schema, error) {
	category := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	product := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"image_url":   &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"category_id": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"category":    &graphql.Field{Type: category},
		},
	})
	product.AddFieldConfig("related", &graphql.Field{
		Type:        graphql.NewList(product),
		Description: "Up to three other products from the same category.",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			src, _ := p.Source.(models.Product)
			detail, err := catalog.GetProduct(p.Context, src.ID)
			if err != nil {
				return public(nil, err)
			}
			return detail.Related, nil
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"categories": &graphql.Field{
				Type: graphql.NewList(category),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return public(catalog.ListCategories(p.Context))
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(product),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{
						Type:        graphql.String,
						Description: `Category id; "all" or empty lists everything.`,
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter, _ := p.Args["category"].(string)
					return public(catalog.ListProducts(p.Context, filter))
				},
			},
			"product": &graphql.Field{
				Type: product,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					detail, err := catalog.GetProduct(p.Context, uint(id))
					if services.IsNotFound(err) {
						return nil, nil
					}
					if err != nil {
						return public(nil, err)
					}
					return detail.Product, nil
				},
			},
		},
	})

	return pkggraphql.NewSchema(query)
}
