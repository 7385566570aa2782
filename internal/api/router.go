package api

import (
	"net/http"

	"github.com/plate-notify/internal/middleware"
	"github.com/plate-notify/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates a new HTTP router with all routes
func NewRouter(
	h *Handler,
	auth *middleware.AuthMiddleware,
	metrics *obs.Metrics,
	gatherer prometheus.Gatherer,
	log logrus.FieldLogger,
) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Public routes
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/health", h.Health)

	// Protected routes. The gate runs before any body parsing.
	protected := func(fn http.HandlerFunc) http.Handler {
		return auth.Authenticate(fn)
	}

	mux.Handle("GET /api/users/{id}", protected(h.GetUser))
	mux.Handle("PUT /api/users/{id}", protected(h.UpdateUser))

	mux.Handle("POST /api/notifications", protected(h.CreateNotification))
	mux.Handle("GET /api/notifications", protected(h.ListSent))
	mux.Handle("GET /api/notifications/sent", protected(h.ListSent))
	mux.Handle("GET /api/notifications/received", protected(h.ListReceived))

	// Apply global middleware
	var handler http.Handler = metrics.Instrument(mux)
	handler = middleware.Recoverer(log)(handler)
	handler = middleware.Logger(log)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.CORS(handler)

	return handler
}
