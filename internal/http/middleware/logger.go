package middleware

import (
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
)

// RequestLogger logs one line per request and stores a request-scoped logger
// in the request context.
func RequestLogger(logger *applog.Logger) func(http.Handler) http.Handler {
	logger = logger.WithComponent(applog.ComponentHTTP)
	sanitize := strings.NewReplacer("\n", "", "\r", "").Replace

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger := logger.With(applog.FieldRequestID, chimw.GetReqID(r.Context()))
			ctx := applog.NewContext(r.Context(), reqLogger)

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{
				applog.FieldMethod, sanitize(r.Method),
				applog.FieldPath, sanitize(r.URL.Path),
				applog.FieldStatusCode, status,
				applog.FieldDuration, time.Since(start).Milliseconds(),
				applog.FieldClientIP, ClientIP(r),
			}
			if status >= http.StatusInternalServerError {
				reqLogger.Error("request failed", args...)
				return
			}
			reqLogger.Info("request handled", args...)
		})
	}
}
