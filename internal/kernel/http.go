// Package kernel assembles the HTTP application: services, controllers,
// global middleware and every route.
package kernel

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/heartscript/app/controllers"
	appgraphql "github.com/shashiranjanraj/heartscript/app/graphql"
	"github.com/shashiranjanraj/heartscript/app/listeners"
	"github.com/shashiranjanraj/heartscript/app/repositories"
	"github.com/shashiranjanraj/heartscript/app/routes"
	"github.com/shashiranjanraj/heartscript/app/services"
	"github.com/shashiranjanraj/heartscript/pkg/ctx"
	"github.com/shashiranjanraj/heartscript/pkg/event"
	"github.com/shashiranjanraj/heartscript/pkg/graphql"
	"github.com/shashiranjanraj/heartscript/pkg/metrics"
	"github.com/shashiranjanraj/heartscript/pkg/middleware"
	"github.com/shashiranjanraj/heartscript/pkg/reqid"
	"github.com/shashiranjanraj/heartscript/pkg/response"
	"github.com/shashiranjanraj/heartscript/pkg/router"
	"github.com/shashiranjanraj/heartscript/pkg/session"
	"github.com/shashiranjanraj/heartscript/pkg/storage"
	"github.com/shashiranjanraj/heartscript/pkg/view"
	"github.com/shashiranjanraj/heartscript/pkg/ws"
	"github.com/shashiranjanraj/heartscript/resources/views"
)

// Deps are the long-lived resources the kernel is built from.
type Deps struct {
	DB       *gorm.DB
	Sessions session.Store
	// SessionSecret signs the session cookie.
	SessionSecret string
	AdminPassword string
	SecureCookies bool

	Disk   storage.Disk
	Bus    *event.Bus
	Hub    *ws.Hub
	Mailer listeners.Sender

	// CheckoutProfile overrides ORDER_CHECKOUT_FIELDS when set.
	CheckoutProfile string

	// LoginAttempts per minute and client IP on the login forms; 0 means
	// no limit.
	LoginAttempts int

	// TrustedProxies may set the client IP through X-Forwarded-For.
	TrustedProxies []string
}

// Kernel is the assembled application.
type Kernel struct {
	Router  *router.Router
	Catalog *services.CatalogService
	Orders  *services.OrderService
	Account *services.AccountService
}

// Handler returns the root http.Handler.
func (k *Kernel) Handler() http.Handler { return k.Router.Handler() }

// New wires services, listeners and routes.
func New(d Deps) (*Kernel, error) {
	if d.DB == nil {
		return nil, errors.New("kernel: database is required")
	}
	if d.Sessions == nil {
		d.Sessions = session.NewMemoryStore()
	}
	if d.Bus == nil {
		d.Bus = event.New()
	}
	if err := middleware.TrustProxies(d.TrustedProxies...); err != nil {
		return nil, err
	}

	engine, err := view.New(views.FS)
	if err != nil {
		return nil, err
	}
	ctx.UseRenderer(engine)

	var images services.ImageUploader
	if d.Disk != nil {
		images = storage.NewImages(d.Disk, "images")
	}

	k := &Kernel{
		Catalog: services.NewCatalogService(repositories.NewCatalogRepository(d.DB), images),
		Orders:  services.NewOrderService(repositories.NewOrderRepository(d.DB), d.Bus),
		Account: services.NewAccountService(repositories.NewUserRepository(d.DB), images, d.AdminPassword),
	}
	if d.CheckoutProfile != "" {
		k.Orders.WithProfile(d.CheckoutProfile)
	}

	var hub listeners.Publisher
	if d.Hub != nil {
		hub = d.Hub
	}
	listeners.Register(d.Bus, hub, d.Mailer, k.Orders)

	schema, err := appgraphql.NewCatalogSchema(k.Catalog)
	if err != nil {
		return nil, err
	}

	opts := session.DefaultOptions(d.SessionSecret)
	opts.Secure = d.SecureCookies

	r := router.New()
	// Outermost first: metrics see the full latency, recovery catches
	// panics before anything logs, the identity needs the session.
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		session.Middleware(d.Sessions, opts),
		middleware.Identify(k.Account.UserExists),
	)

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", healthz(d.DB))
	r.Post("/graphql", "graphql", graphql.Handler(schema))
	if local, ok := d.Disk.(*storage.Local); ok {
		r.Prefix("/storage", "storage", local.Handler("/storage"))
	}
	if d.Hub != nil {
		r.Handle(http.MethodGet, "/admin/orders/live", "admin.orders.live", d.Hub, middleware.RequireAdmin("/admin-login"))
	}

	web := routes.Web{
		Shop:    controllers.NewShopController(k.Catalog, k.Orders),
		Orders:  controllers.NewOrderController(k.Orders),
		Account: controllers.NewAccountController(k.Account),
		Admin:   controllers.NewAdminController(k.Orders, k.Catalog, k.Account),
	}
	if d.LoginAttempts > 0 {
		web.LoginLimiter = middleware.NewLimiter(d.LoginAttempts, time.Minute)
	}
	routes.RegisterWeb(r, web)

	k.Router = r
	return k, nil
}

// healthz pings the database.
func healthz(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := Ping(r.Context(), db); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		response.JSON(w, http.StatusOK, response.Body{Status: "ok"})
	}
}

// Ping checks the database within two seconds.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
