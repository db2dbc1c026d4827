package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// RouterConfig holds the cross-cutting HTTP options.
type RouterConfig struct {
	// CORSOrigins lists allowed origins; "*" allows all.
	CORSOrigins []string
	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int
}

// NewRouter wires the middleware stack and mounts the directory API.
// metrics may be nil.
//
// Middleware order (outermost first): request id, real ip, request log,
// recoverer, rate limit, CORS.
func NewRouter(cfg RouterConfig, h *DirectoryHandler, metrics http.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(logger),
		middleware.Recoverer,
	)
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.Get("/healthz", h.Health)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/industries", h.Industries)
		r.Get("/company-names", h.CompanyNames)

		r.Post("/sessions", h.OpenSession)
		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Delete("/", h.CloseSession)
			r.Get("/view", h.View)
			r.Put("/query", h.SetQuery)
			r.Post("/sort/{field}", h.ToggleSort)
			r.Put("/page", h.SetPage)

			r.Post("/form", h.OpenForm)
			r.Put("/form", h.SubmitForm)
			r.Delete("/form", h.CancelForm)

			r.Post("/deletion/{id}", h.RequestDelete)
			r.Put("/deletion", h.ConfirmDelete)
			r.Delete("/deletion", h.CancelDelete)

			r.Get("/export.csv", h.ExportCSV)
			r.Get("/export.xlsx", h.ExportXLSX)
		})
	})
	return r
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// RequestLogger logs each request with its status and latency.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logger.Named("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
