package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/app/services"
	"github.com/shashiranjanraj/heartscript/config"
	"github.com/shashiranjanraj/heartscript/database/seeders"
	"github.com/shashiranjanraj/heartscript/pkg/auth"
	"github.com/shashiranjanraj/heartscript/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *fixture {
	t.Helper()
	f := setup(t)
	require.NoError(t, seeders.SeedCatalog(f.db))
	return f
}

func TestListProductsFilter(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()

	for _, sentinel := range []string{"", "all", "ALL", "0"} {
		all, err := f.catalog.ListProducts(ctx, sentinel)
		require.NoError(t, err)
		assert.Len(t, all, 5, sentinel)
	}

	all, err := f.catalog.ListProducts(ctx, "")
	require.NoError(t, err)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	cards, err := f.catalog.ListProducts(ctx, "1")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	for _, p := range cards {
		assert.EqualValues(t, 1, p.CategoryID)
		require.NotNil(t, p.Category)
		assert.Equal(t, "Cards", p.Category.Name)
	}

	none, err := f.catalog.ListProducts(ctx, "99")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.catalog.ListProducts(ctx, "cards")
	assert.True(t, services.IsValidation(err))
}

func TestGetProductWithRelated(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.catalog.AddProduct(ctx, services.ProductInput{Name: "Extra Card", Price: 99, CategoryID: 1}, nil)
		require.NoError(t, err)
	}

	detail, err := f.catalog.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Handwritten Love Letter", detail.Product.Name)
	assert.Len(t, detail.Related, services.RelatedLimit)
	for _, r := range detail.Related {
		assert.NotEqual(t, detail.Product.ID, r.ID)
		assert.Equal(t, detail.Product.CategoryID, r.CategoryID)
	}

	lonely, err := f.catalog.GetProduct(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, lonely.Related)

	_, err = f.catalog.GetProduct(ctx, 404)
	var nf *services.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestAddCategory(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()

	c, err := f.catalog.AddCategory(ctx, "  Mugs ")
	require.NoError(t, err)
	assert.Equal(t, "Mugs", c.Name)

	_, err = f.catalog.AddCategory(ctx, "mugs")
	assert.True(t, services.IsValidation(err))
	_, err = f.catalog.AddCategory(ctx, "   ")
	assert.True(t, services.IsValidation(err))

	cats, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 4)
}

func TestAddProductUploadsImage(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()

	body := strings.NewReader("png-bytes")
	f.images.On("Upload", mock.Anything, "rose.png", body).Return("/storage/products/abc.png", nil).Once()

	p, err := f.catalog.AddProduct(ctx, services.ProductInput{
		Name:       "Rose Frame",
		Price:      499,
		CategoryID: 2,
		ImageURL:   "https://ignored.example/x.png",
	}, &services.Upload{Filename: "rose.png", Body: body})
	require.NoError(t, err)
	assert.Equal(t, "/storage/products/abc.png", p.ImageURL)
	f.images.AssertExpectations(t)
}

func TestAddProductRejectsBadInput(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()

	cases := map[string]services.ProductInput{
		"name":        {Price: 10, CategoryID: 1},
		"price":       {Name: "Free", Price: 0, CategoryID: 1},
		"category_id": {Name: "Orphan", Price: 10, CategoryID: 42},
	}
	for field, in := range cases {
		_, err := f.catalog.AddProduct(ctx, in, nil)
		var v *services.ValidationError
		require.True(t, errors.As(err, &v), field)
		assert.Equal(t, field, v.Field)
	}

	f.images.On("Upload", mock.Anything, "notes.txt", mock.Anything).Return("", storage.ErrUnsupportedImage).Once()
	_, err := f.catalog.AddProduct(ctx, services.ProductInput{Name: "Card", Price: 10, CategoryID: 1},
		&services.Upload{Filename: "notes.txt", Body: strings.NewReader("text")})
	assert.True(t, services.IsValidation(err))
}

func TestDeleteProduct(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()

	require.NoError(t, f.catalog.DeleteProduct(ctx, 1))
	assert.True(t, services.IsNotFound(f.catalog.DeleteProduct(ctx, 1)))
}

func TestDeleteCategoryLeavesOrdersUntouched(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()

	id, err := f.orders.WithProfile(config.CheckoutBasic).SubmitOrder(ctx, auth.Identity{}, services.OrderPayload{
		Name:    "Asha",
		Phone:   "123",
		Address: "X",
		Total:   []byte(`299`),
		Items:   []byte(`[{"product_id":1,"name":"Handwritten Love Letter","quantity":1,"price":299}]`),
	})
	require.NoError(t, err)
	before, err := f.orders.GetOrder(ctx, id)
	require.NoError(t, err)

	require.NoError(t, f.catalog.DeleteCategory(ctx, 1))

	products, err := f.catalog.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 3)
	var count int64
	f.db.Model(&models.Product{}).Where("category_id = ?", 1).Count(&count)
	assert.Zero(t, count)

	after, err := f.orders.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.Total, after.Total)
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Status, after.Status)

	assert.True(t, services.IsNotFound(f.catalog.DeleteCategory(ctx, 1)))
}
