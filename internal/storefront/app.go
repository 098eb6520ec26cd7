package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"RocketShoes/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// SessionRatePerMin caps session creation per client IP; zero disables.
	SessionRatePerMin int
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Logging(deps.Log))

	if deps.Registry != nil {
		metrics := kit.NewMetrics(deps.Registry)
		r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

		if deps.MetricsEnabled {
			r.With(kit.MetricsAuth(deps.MetricsToken)).
				Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Sessions.Ping(ctx); err != nil {
			deps.Log.Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if deps.SessionRatePerMin > 0 {
		limiter := kit.NewIPRateLimiter(deps.SessionRatePerMin, time.Minute)
		r.With(limiter.Middleware).Post("/session", s.createSession)
	} else {
		r.Post("/session", s.createSession)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(RequireSession(s.Tokens))
		pr.Get("/cart", s.getCart)
		pr.Get("/cart/summary", s.getSummary)
		pr.Get("/cart/notifications", s.notifications)
		pr.Post("/cart/items", s.addItem)
		pr.Put("/cart/items/{id}", s.updateItem)
		pr.Delete("/cart/items/{id}", s.removeItem)
	})

	return r
}
