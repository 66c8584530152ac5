package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenbasket/greenbasket-backend/api/controllers"
	"github.com/greenbasket/greenbasket-backend/api/middleware"
	agentsvc "github.com/greenbasket/greenbasket-backend/internal/agents"
	areasvc "github.com/greenbasket/greenbasket-backend/internal/areas"
	authsvc "github.com/greenbasket/greenbasket-backend/internal/auth"
	cartsvc "github.com/greenbasket/greenbasket-backend/internal/cart"
	fulfillmentsvc "github.com/greenbasket/greenbasket-backend/internal/fulfillment"
	notificationsvc "github.com/greenbasket/greenbasket-backend/internal/notifications"
	orderssvc "github.com/greenbasket/greenbasket-backend/internal/orders"
	productsvc "github.com/greenbasket/greenbasket-backend/internal/products"
	settingssvc "github.com/greenbasket/greenbasket-backend/internal/settings"
	userssvc "github.com/greenbasket/greenbasket-backend/internal/users"
	"github.com/greenbasket/greenbasket-backend/pkg/auth/session"
	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/payments"
	pkgredis "github.com/greenbasket/greenbasket-backend/pkg/redis"
)

// Services bundles everything the router hands to controllers.
type Services struct {
	Auth          authsvc.Service
	Users         userssvc.Service
	Products      productsvc.Service
	Cart          cartsvc.Service
	Areas         areasvc.Service
	Settings      settingssvc.Service
	Fulfillment   fulfillmentsvc.Service
	Orders        orderssvc.Service
	Agents        agentsvc.Service
	Notifications notificationsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	sessions session.AccessSessionChecker,
	upiLink *payments.UPILink,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRL.LoginWindow,
		cfg.AuthRL.LoginIPLimit,
		cfg.AuthRL.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRL.RegisterWindow,
		cfg.AuthRL.RegisterIPLimit,
		cfg.AuthRL.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})
	r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
		Post("/v1/admin/auth/login", controllers.AdminLogin(svcs.Auth, logg))

	// Storefront browsing stays public so the catalog renders before login.
	r.Route("/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(svcs.Products, logg))
		r.Get("/{productID}", controllers.ProductGet(svcs.Products, logg))
	})
	r.Get("/v1/areas", controllers.CheckoutAreas(svcs.Areas, logg))
	r.With(
		middleware.AuthRateLimit(registerPolicy, redisClient, logg),
		middleware.Idempotency(redisClient, logg),
	).Post("/v1/agent/signup", controllers.AgentSignup(svcs.Agents, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/v1/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(svcs.Users, logg))
			r.Put("/", controllers.ProfileUpdate(svcs.Users, logg))
			r.Post("/device", controllers.ProfileRegisterDevice(svcs.Users, logg))
		})

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Put("/items/{itemID}", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(svcs.Cart, logg))
		})

		r.Get("/v1/checkout/quote", controllers.CheckoutQuote(svcs.Settings, logg))
		r.Post("/v1/checkout", controllers.CheckoutPlaceOrder(svcs.Fulfillment, svcs.Users, upiLink, logg))

		r.Route("/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.Get("/calendar", controllers.OrderCalendar(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.OrderGet(svcs.Orders, logg))
			r.Get("/{orderID}/payment-link", controllers.CheckoutPaymentLink(svcs.Orders, upiLink, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationInbox(svcs.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.NotificationMarkRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.NotificationMarkAllRead(svcs.Notifications, logg))
		})

		r.Route("/v1/agent", func(r chi.Router) {
			r.Use(middleware.RequireRole("agent", logg))
			r.Get("/profile", controllers.AgentProfile(svcs.Agents, logg))
			r.Post("/photo/presign", controllers.AgentPhotoPresign(svcs.Agents, logg))
			r.Put("/photo", controllers.AgentSetPhoto(svcs.Agents, logg))
			r.Put("/capacity", controllers.AgentUpdateCapacity(svcs.Agents, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AgentOrders(svcs.Orders, logg))
				r.Get("/route", controllers.AgentRoute(svcs.Orders, logg))
				r.Post("/complete", controllers.AgentCompleteDeliveries(svcs.Fulfillment, logg))
				r.Post("/{orderID}/status", controllers.AgentUpdateOrderStatus(svcs.Fulfillment, logg))
			})
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Get("/dashboard", controllers.AdminDashboardStats(svcs.Orders, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(svcs.Orders, logg))
				r.Post("/reconcile", controllers.AdminReconcileOrders(svcs.Fulfillment, logg))
				r.Get("/{orderID}", controllers.AdminOrderGet(svcs.Orders, logg))
			})
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductList(svcs.Products, logg))
				r.Post("/", controllers.AdminProductCreate(svcs.Products, logg))
				r.Patch("/{productID}", controllers.AdminProductUpdate(svcs.Products, logg))
				r.Delete("/{productID}", controllers.AdminProductDeactivate(svcs.Products, logg))
			})
			r.Route("/areas", func(r chi.Router) {
				r.Get("/", controllers.AdminAreaList(svcs.Areas, logg))
				r.Post("/", controllers.AdminAreaCreate(svcs.Areas, logg))
				r.Patch("/{areaID}", controllers.AdminAreaUpdate(svcs.Areas, logg))
				r.Delete("/{areaID}", controllers.AdminAreaDeactivate(svcs.Areas, logg))
				r.Post("/{areaID}/agents/{agentID}", controllers.AdminAreaAssignAgent(svcs.Areas, logg))
				r.Delete("/{areaID}/agents/{agentID}", controllers.AdminAreaUnassignAgent(svcs.Areas, logg))
			})
			r.Route("/agents", func(r chi.Router) {
				r.Get("/", controllers.AdminAgentList(svcs.Agents, logg))
				r.Get("/{agentID}", controllers.AdminAgentGet(svcs.Agents, logg))
				r.Post("/{agentID}/approve", controllers.AdminAgentApprove(svcs.Agents, logg))
				r.Post("/{agentID}/reject", controllers.AdminAgentReject(svcs.Agents, logg))
			})
			r.Route("/settings", func(r chi.Router) {
				r.Get("/shipping-charge", controllers.AdminShippingChargeGet(svcs.Settings, logg))
				r.Put("/shipping-charge", controllers.AdminShippingChargeSet(svcs.Settings, logg))
			})
		})
	})

	return r
}
