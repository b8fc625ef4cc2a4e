package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/controllers"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/middleware"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/address"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/cart"
	checkoutsvc "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/checkout"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/orders"
	products "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/products"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/promo"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/config"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/redis"
)

// NewRouter assembles the HTTP surface: the storefront API under /api/v1,
// the back-office API under /api/admin/v1, and the ops endpoints.
//
// addressService may be nil when no Maps credential is configured; the
// autocomplete routes are simply not mounted in that case.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	promoService promo.Service,
	productsService products.Service,
	addressService address.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	promoPolicy := middleware.NewRateLimitPolicy(
		"promo",
		cfg.Promo.RateLimitWindow,
		cfg.Promo.RateLimitIPAttempts,
		cfg.Promo.RateLimitAttempts,
	)

	// A typed-nil *redis.Client would defeat the middleware's nil check.
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Guest order lookup proves ownership with contact details, not a token,
	// so it sits outside the identity gate.
	r.Post("/api/v1/orders/guest-lookup", controllers.OrderGuestLookup(ordersService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(cartService, logg))
			r.With(middleware.RateLimit(promoPolicy, redisClient, logg)).
				Post("/promo", controllers.CartApplyPromo(cartService, logg))
			r.Delete("/promo", controllers.CartRemovePromo(cartService, logg))
			r.With(middleware.RequireUser(logg)).Post("/merge", controllers.CartMerge(cartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireUser(logg)).Get("/", controllers.OrdersList(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(ordersService, logg))
			r.Post("/{orderId}/receipt", controllers.OrderReceipt(ordersService, logg))
		})

		if addressService != nil {
			r.Route("/address", func(r chi.Router) {
				r.Post("/autocomplete", controllers.AddressAutocomplete(addressService, logg))
				r.Post("/resolve", controllers.AddressResolve(addressService, logg))
			})
		}
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(ordersService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(ordersService, logg))
			r.Post("/{orderId}/verify-payment", controllers.AdminVerifyPayment(ordersService, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderStatus(ordersService, logg))
			r.Post("/{orderId}/tracking", controllers.AdminOrderTracking(ordersService, logg))
			r.Post("/{orderId}/refund", controllers.AdminOrderRefund(ordersService, logg))
		})

		r.Route("/promos", func(r chi.Router) {
			r.Post("/", controllers.AdminPromoCreate(promoService, logg))
			r.Get("/", controllers.AdminPromoList(promoService, logg))
			r.Post("/{promoId}/deactivate", controllers.AdminPromoDeactivate(promoService, logg))
		})

		r.Post("/inventory", controllers.AdminInventorySet(productsService, logg))
	})

	return r
}
