package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khatmdev/quadramall-sub001/api/controllers"
	cartcontrollers "github.com/khatmdev/quadramall-sub001/api/controllers/cart"
	"github.com/khatmdev/quadramall-sub001/api/middleware"
	"github.com/khatmdev/quadramall-sub001/internal/cart"
	"github.com/khatmdev/quadramall-sub001/pkg/config"
	"github.com/khatmdev/quadramall-sub001/pkg/enums"
	"github.com/khatmdev/quadramall-sub001/pkg/logger"
	"github.com/khatmdev/quadramall-sub001/pkg/redis"
)

// Deps holds what the HTTP surface needs. Idempotency and Gatherer are optional.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	Cart         cart.Service
	Idempotency  redis.IdempotencyStore
	Gatherer     prometheus.Gatherer
	Dependencies []controllers.Dependency
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Dependencies...))
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/cart", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleBuyer, enums.UserRoleAdmin))

			r.Get("/", cartcontrollers.CartFetch(d.Cart, logg))
			r.With(middleware.Idempotency(d.Idempotency, cfg.Cart.IdempotencyTTL, logg)).
				Post("/items", cartcontrollers.CartAddItem(d.Cart, logg))
			r.Route("/items/{itemId}", func(r chi.Router) {
				r.Delete("/", cartcontrollers.CartDeleteItem(d.Cart, logg))
				r.Put("/quantity", cartcontrollers.CartUpdateQuantity(d.Cart, logg))
				r.Put("/variant", cartcontrollers.CartUpdateVariant(d.Cart, logg))
				r.Delete("/addons/{addonId}", cartcontrollers.CartDeleteAddon(d.Cart, logg))
			})
			r.Delete("/stores/{storeId}", cartcontrollers.CartDeleteStore(d.Cart, logg))
		})
	})

	return r
}
