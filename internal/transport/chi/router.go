package chi

import (
	"net/http"
	"time"

	chiv5 "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/paperbase/internal/logger"
	"github.com/kailas-cloud/paperbase/internal/metrics"
)

// NewRouter mounts the API routes with the standard middleware chain.
// An empty apiKeys list disables authentication.
func NewRouter(s *Server, apiKeys []string) http.Handler {
	r := chiv5.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(jsonRecoverer(s.logger))
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chiv5.Router) {
		r.Post("/documents", s.IngestDocuments)
		r.Get("/search", s.Search)
		r.Post("/answer", s.Answer)
		r.Post("/fields", s.RecordField)
		r.Get("/fields", s.ListFields)
		r.Get("/fields/{name}", func(w http.ResponseWriter, req *http.Request) {
			s.ResolveField(w, req, chiv5.URLParam(req, "name"))
		})
		r.Post("/forms/resolve", s.ResolveForm)
	})

	return r
}

// requestLogger emits one wide event per request after it completes, and
// stashes a request-scoped logger in the context for handlers to use.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			requestID := middleware.GetReqID(r.Context())
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)
			ww.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("Request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// jsonRecoverer turns panics into JSON 500 responses instead of dropped
// connections.
func jsonRecoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("Panic in handler",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
					)
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
