package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/detailshop-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/detailshop-backend/api/controllers/orders"
	webhookcontrollers "github.com/angelmondragon/detailshop-backend/api/controllers/webhooks"
	"github.com/angelmondragon/detailshop-backend/api/middleware"
	"github.com/angelmondragon/detailshop-backend/internal/appointments"
	"github.com/angelmondragon/detailshop-backend/internal/auth"
	checkoutsvc "github.com/angelmondragon/detailshop-backend/internal/checkout"
	"github.com/angelmondragon/detailshop-backend/internal/customers"
	"github.com/angelmondragon/detailshop-backend/internal/gallery"
	"github.com/angelmondragon/detailshop-backend/internal/orders"
	products "github.com/angelmondragon/detailshop-backend/internal/products"
	"github.com/angelmondragon/detailshop-backend/internal/reviews"
	"github.com/angelmondragon/detailshop-backend/internal/services"
	"github.com/angelmondragon/detailshop-backend/internal/settings"
	"github.com/angelmondragon/detailshop-backend/internal/users"
	"github.com/angelmondragon/detailshop-backend/pkg/auth/session"
	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/detailshop-backend/pkg/redis"
)

// Store is the redis surface the HTTP layer needs for idempotency replay and
// login throttling.
type Store interface {
	pkgredis.IdempotencyStore
	pkgredis.Pinger
	pkgredis.RateLimitStore
}

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Store    Store
	Sessions session.Checker
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTPMetrics

	Auth         auth.Service
	Checkout     checkoutsvc.Service
	Orders       orders.Service
	Appointments appointments.Service
	Customers    customers.Service
	Products     products.Service
	Reviews      reviews.Service
	Services     services.Service
	Gallery      gallery.Service
	Settings     settings.Service
	Users        users.Service

	StripeWebhook  webhookcontrollers.StripeWebhookService
	StripeVerifier webhookcontrollers.EventVerifier
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.CORS),
		middleware.LoadPrincipal(cfg.JWT, deps.Sessions, logg),
	)
	// Idempotency runs before routing so it keys on the raw request path.
	if deps.Store != nil {
		r.Use(middleware.Idempotency(deps.Store, logg))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	rateLimited := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if deps.Store == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, deps.Store, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Store))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhook, deps.StripeVerifier, logg))

		r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))
		r.Post("/checkout/create-session", controllers.CreateCheckoutSession(deps.Checkout, logg))
		r.Get("/orders/{orderId}/payment-status", controllers.PaymentStatus(deps.Checkout, logg))

		r.Post("/appointments", controllers.CreateAppointment(deps.Appointments, logg))

		r.Route("/customers", func(r chi.Router) {
			r.With(rateLimited(registerPolicy)).Post("/register", controllers.CustomerRegister(deps.Auth, cfg.JWT, logg))
			r.With(rateLimited(loginPolicy)).Post("/login", controllers.CustomerLogin(deps.Auth, cfg.JWT, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCustomer(logg))
				r.Get("/me", controllers.CustomerMe(deps.Customers, logg))
				r.Put("/me", controllers.CustomerUpdateMe(deps.Customers, logg))
				r.Get("/me/orders", controllers.CustomerOrders(deps.Orders, logg))
				r.Get("/me/appointments", controllers.CustomerAppointments(deps.Appointments, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, false, logg))
			r.Get("/{productId}", controllers.GetProduct(deps.Products, false, logg))
			r.Get("/{productId}/reviews", controllers.ProductReviews(deps.Reviews, logg))
			r.With(middleware.RequireCustomer(logg)).Post("/{productId}/reviews", controllers.CreateReview(deps.Reviews, logg))
		})

		r.Get("/services", controllers.ListServices(deps.Services, false, logg))
		r.Get("/gallery", controllers.ListPosts(deps.Gallery, false, logg))
		r.Get("/gallery/{postId}", controllers.GetPost(deps.Gallery, false, logg))
		r.Get("/settings/{key}", controllers.GetSetting(deps.Settings, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimited(loginPolicy)).Post("/login", controllers.AdminAuthLogin(deps.Auth, cfg.JWT, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
			r.With(middleware.RequireAdmin(logg)).Get("/me", controllers.AdminAuthMe(deps.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))

			r.Route("/appointments", func(r chi.Router) {
				r.Get("/", controllers.AdminListAppointments(deps.Appointments, logg))
				r.Get("/{appointmentId}", controllers.AdminGetAppointment(deps.Appointments, logg))
				r.Patch("/{appointmentId}", controllers.AdminUpdateAppointment(deps.Appointments, logg))
				r.Delete("/{appointmentId}", controllers.AdminDeleteAppointment(deps.Appointments, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(deps.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
				r.Patch("/{orderId}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", controllers.AdminListCustomers(deps.Customers, logg))
				r.Post("/", controllers.AdminCreateCustomer(deps.Customers, logg))
				r.Get("/{customerId}", controllers.AdminGetCustomer(deps.Customers, logg))
				r.Put("/{customerId}", controllers.AdminUpdateCustomer(deps.Customers, logg))
				r.Delete("/{customerId}", controllers.AdminDeleteCustomer(deps.Customers, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(deps.Products, true, logg))
				r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
				r.Get("/{productId}", controllers.GetProduct(deps.Products, true, logg))
				r.Put("/{productId}", controllers.AdminUpdateProduct(deps.Products, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.Products, logg))
				r.Post("/{productId}/variations", controllers.AdminCreateVariation(deps.Products, logg))
				r.Put("/{productId}/variations/{variationId}", controllers.AdminUpdateVariation(deps.Products, logg))
				r.Delete("/{productId}/variations/{variationId}", controllers.AdminDeleteVariation(deps.Products, logg))
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", controllers.AdminListReviews(deps.Reviews, logg))
				r.Post("/{reviewId}/approve", controllers.AdminApproveReview(deps.Reviews, logg))
				r.Delete("/{reviewId}", controllers.AdminDeleteReview(deps.Reviews, logg))
			})

			r.Route("/services", func(r chi.Router) {
				r.Get("/", controllers.ListServices(deps.Services, true, logg))
				r.Post("/", controllers.AdminCreateService(deps.Services, logg))
				r.Get("/{serviceId}", controllers.AdminGetService(deps.Services, logg))
				r.Put("/{serviceId}", controllers.AdminUpdateService(deps.Services, logg))
				r.Delete("/{serviceId}", controllers.AdminDeleteService(deps.Services, logg))
			})

			r.Route("/gallery", func(r chi.Router) {
				r.Get("/", controllers.ListPosts(deps.Gallery, true, logg))
				r.Post("/", controllers.AdminCreatePost(deps.Gallery, logg))
				r.Get("/{postId}", controllers.GetPost(deps.Gallery, true, logg))
				r.Put("/{postId}", controllers.AdminUpdatePost(deps.Gallery, logg))
				r.Delete("/{postId}", controllers.AdminDeletePost(deps.Gallery, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdminRole(enums.AdminRoleAdmin, logg))
				r.Put("/settings/{key}", controllers.AdminPutSetting(deps.Settings, logg))
				r.Get("/users", controllers.AdminListUsers(deps.Users, logg))
				r.Post("/users", controllers.AdminCreateUser(deps.Users, logg))
				r.Delete("/users/{userId}", controllers.AdminDeleteUser(deps.Users, logg))
			})
		})
	})

	return r
}
