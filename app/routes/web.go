// Package routes maps URLs to controllers.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/heartscript/app/controllers"
	"github.com/shashiranjanraj/heartscript/pkg/ctx"
	"github.com/shashiranjanraj/heartscript/pkg/middleware"
	"github.com/shashiranjanraj/heartscript/pkg/router"
)

// Web holds the controllers behind the browser-facing routes.
type Web struct {
	Shop    *controllers.ShopController
	Orders  *controllers.OrderController
	Account *controllers.AccountController
	Admin   *controllers.AdminController

	// LoginLimiter throttles POSTs to the login forms; nil disables it.
	LoginLimiter *middleware.Limiter
}

// RegisterWeb mounts every page, form and admin action.
func RegisterWeb(r *router.Router, w Web) {
	var throttle []router.Middleware
	if w.LoginLimiter != nil {
		throttle = append(throttle, w.LoginLimiter.Middleware(http.MethodPost))
	}

	r.NotFound(ctx.Wrap(controllers.NotFound))

	// Catalog
	r.Get("/", "home", ctx.Wrap(w.Shop.Index))
	r.Get("/shop", "shop", ctx.Wrap(w.Shop.Shop))
	r.Get("/product/{id}", "product.show", ctx.Wrap(w.Shop.Product))

	// Checkout
	r.Post("/submit_order", "order.submit", ctx.Wrap(w.Orders.Submit))
	r.Get("/thank_you/{id}", "order.thank_you", ctx.Wrap(w.Orders.ThankYou))
	r.Get("/thank-you/{id}", "order.thank_you.alias", ctx.Wrap(w.Orders.ThankYou))
	r.Get("/download_invoice/{id}", "order.invoice", ctx.Wrap(w.Orders.Invoice))

	// Accounts
	r.Form("/login", "login", ctx.Wrap(w.Account.Login), throttle...)
	r.Form("/user_login", "login.alias", ctx.Wrap(w.Account.Login), throttle...)
	r.Form("/register", "register", ctx.Wrap(w.Account.Register))
	r.Form("/forgot_password", "password.forgot", ctx.Wrap(w.Account.ForgotPassword), throttle...)
	r.Get("/logout", "logout", ctx.Wrap(w.Account.Logout))
	r.Form("/profile", "profile", ctx.Wrap(w.Account.Profile), middleware.RequireUser("/login"))

	// Admin
	r.Form("/admin-login", "admin.login", ctx.Wrap(w.Admin.Login), throttle...)

	admin := r.Group("", middleware.RequireAdmin("/admin-login"))
	admin.Get("/admin", "admin.dashboard", ctx.Wrap(w.Admin.Dashboard))
	admin.Post("/add_category", "admin.category.add", ctx.Wrap(w.Admin.AddCategory))
	admin.Post("/add_product", "admin.product.add", ctx.Wrap(w.Admin.AddProduct))
	admin.Get("/delete_product/{id}", "admin.product.delete", ctx.Wrap(w.Admin.DeleteProduct))
	admin.Get("/delete_category/{id}", "admin.category.delete", ctx.Wrap(w.Admin.DeleteCategory))
	admin.Get("/delete_order/{id}", "admin.order.delete", ctx.Wrap(w.Admin.DeleteOrder))
	admin.Post("/update_status/{id}", "admin.order.status", ctx.Wrap(w.Admin.UpdateStatus))
}
