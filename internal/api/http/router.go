package apihttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"grid-atlas/internal/auth"
)

// RouterConfig carries the router's cross-cutting settings.
type RouterConfig struct {
	// JWTSecret signs the API tokens.
	JWTSecret []byte
	// CORSOrigins lists the allowed origins; empty means allow all.
	CORSOrigins []string
}

// NewRouter mounts the REST API, health, and metrics endpoints.
func NewRouter(handlers *Handlers, cfg RouterConfig, logger *zap.SugaredLogger) http.Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	authMW := auth.NewMiddleware(cfg.JWTSecret, auth.NewDefaultPolicy(
		[]string{"/healthz", "/metrics"}, nil,
	))
	r.Use(authMW.Wrap)

	r.Get("/healthz", handlers.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/districts/capacity", handlers.districtCapacity)
		r.Get("/grid/load", handlers.gridLoad)
		r.Get("/grid/plants", handlers.plants)
		r.Get("/catalog/windparks", handlers.windparks)
		r.Get("/catalog/stations", handlers.stations)
		r.Get("/siting/check", handlers.sitingCheck)

		r.Route("/exports", func(r chi.Router) {
			r.Get("/districts.xlsx", handlers.exportDistrictsXLSX)
			r.Get("/districts.pdf", handlers.exportDistrictsPDF)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/runs", handlers.listRuns)
			r.Post("/cache/invalidate", handlers.invalidateCache)
		})
	})

	return r
}

// requestLogger logs one line per request with latency and status.
func requestLogger(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Infow("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
