package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/heartscript/app/services"
	"github.com/shashiranjanraj/heartscript/config"
	"github.com/shashiranjanraj/heartscript/pkg/ctx"
)

// featuredCount is how many products the home page shows.
const featuredCount = 6

type ShopController struct {
	catalog *services.CatalogService
	orders  *services.OrderService
}

func NewShopController(catalog *services.CatalogService, orders *services.OrderService) *ShopController {
	return &ShopController{catalog: catalog, orders: orders}
}

// Index handles GET /.
func (h *ShopController) Index(c *ctx.Context) {
	products, err := h.catalog.ListProducts(c.Context(), "")
	if err != nil {
		renderError(c, err)
		return
	}
	categories, err := h.catalog.ListCategories(c.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	if len(products) > featuredCount {
		products = products[:featuredCount]
	}
	c.HTML(http.StatusOK, "index", flashes(c, ctx.H{
		"Products":   products,
		"Categories": categories,
	}))
}

// Shop handles GET /shop?category=<id>.
func (h *ShopController) Shop(c *ctx.Context) {
	filter := c.Query("category")
	selected, err := services.ParseCategoryFilter(filter)
	if err != nil {
		renderError(c, err)
		return
	}
	products, err := h.catalog.ListProducts(c.Context(), filter)
	if err != nil {
		renderError(c, err)
		return
	}
	categories, err := h.catalog.ListCategories(c.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "shop", ctx.H{
		"Products":   products,
		"Categories": categories,
		"Selected":   selected,
	})
}

// Product handles GET /product/{id}.
func (h *ShopController) Product(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		notFound(c)
		return
	}
	detail, err := h.catalog.GetProduct(c.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "product", ctx.H{
		"Product": detail.Product,
		"Related": detail.Related,
		"Full":    h.orders.Profile() == config.CheckoutFull,
	})
}
