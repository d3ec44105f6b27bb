package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/app/services"
	"github.com/shashiranjanraj/heartscript/pkg/auth"
	"github.com/shashiranjanraj/heartscript/pkg/ctx"
)

// AdminController serves the dashboard and every catalog and order
// mutation. Mutations always end with a redirect to the dashboard and
// report their outcome as a flash message.
type AdminController struct {
	orders  *services.OrderService
	catalog *services.CatalogService
	account *services.AccountService
}

func NewAdminController(orders *services.OrderService, catalog *services.CatalogService, account *services.AccountService) *AdminController {
	return &AdminController{orders: orders, catalog: catalog, account: account}
}

// Login handles GET|POST /admin-login.
func (h *AdminController) Login(c *ctx.Context) {
	if !c.IsPost() {
		c.HTML(http.StatusOK, "admin_login", flashes(c, ctx.H{}))
		return
	}
	if !h.account.AdminLogin(c.PostForm("password")) {
		c.HTML(http.StatusUnauthorized, "admin_login", ctx.H{"Error": "Wrong password."})
		return
	}
	sess := c.Session()
	sess.Regenerate()
	sess.Set(auth.SessionAdmin, true)
	_ = c.SaveSession()
	c.Redirect(adminPath)
}

// Dashboard handles GET /admin.
func (h *AdminController) Dashboard(c *ctx.Context) {
	orders, err := h.orders.ListOrders(c.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	categories, err := h.catalog.ListCategories(c.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	products, err := h.catalog.ListProducts(c.Context(), "")
	if err != nil {
		renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "admin", flashes(c, ctx.H{
		"Orders":     orders,
		"Categories": categories,
		"Products":   products,
		"Statuses":   models.OrderStatuses,
	}))
}

// done redirects to the dashboard with the outcome of a mutation.
func (h *AdminController) done(c *ctx.Context, err error, success string) {
	if err != nil {
		redirectWith(c, adminPath, flashError, publicMessage(c, err))
		return
	}
	redirectWith(c, adminPath, flashNotice, success)
}

// pathID reads {id}; a malformed id is reported like a missing row.
func (h *AdminController) pathID(c *ctx.Context, resource string) (uint, bool) {
	id, ok := c.ParamUint("id")
	if !ok {
		h.done(c, &services.NotFoundError{Resource: resource}, "")
	}
	return id, ok
}

// AddCategory handles POST /add_category.
func (h *AdminController) AddCategory(c *ctx.Context) {
	cat, err := h.catalog.AddCategory(c.Context(), c.PostForm("name"))
	h.done(c, err, "Category "+cat.Name+" added.")
}

// AddProduct handles POST /add_product (multipart, optional image).
func (h *AdminController) AddProduct(c *ctx.Context) {
	var in services.ProductInput
	if _, err := c.Bind(&in); err != nil {
		h.done(c, &services.ValidationError{Field: "form", Message: "The form could not be read."}, "")
		return
	}
	image, closeImage := formImage(c, "image")
	defer closeImage()

	p, err := h.catalog.AddProduct(c.Context(), in, image)
	h.done(c, err, "Product "+p.Name+" added.")
}

// DeleteProduct handles GET /delete_product/{id}.
func (h *AdminController) DeleteProduct(c *ctx.Context) {
	id, ok := h.pathID(c, "product")
	if !ok {
		return
	}
	h.done(c, h.catalog.DeleteProduct(c.Context(), id), "Product deleted.")
}

// DeleteCategory handles GET /delete_category/{id}; its products go too.
func (h *AdminController) DeleteCategory(c *ctx.Context) {
	id, ok := h.pathID(c, "category")
	if !ok {
		return
	}
	h.done(c, h.catalog.DeleteCategory(c.Context(), id), "Category deleted.")
}

// DeleteOrder handles GET /delete_order/{id}.
func (h *AdminController) DeleteOrder(c *ctx.Context) {
	id, ok := h.pathID(c, "order")
	if !ok {
		return
	}
	h.done(c, h.orders.DeleteOrder(c.Context(), id), "Order deleted.")
}

// UpdateStatus handles POST /update_status/{id} with form field status.
func (h *AdminController) UpdateStatus(c *ctx.Context) {
	id, ok := h.pathID(c, "order")
	if !ok {
		return
	}
	status := c.PostForm("status")
	h.done(c, h.orders.UpdateStatus(c.Context(), id, status), "Order status set to "+status+".")
}
