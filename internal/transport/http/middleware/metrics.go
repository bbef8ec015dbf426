package httpmw

import (
	"net/http"
	"time"

	"github.com/meetgrid/meet-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

// MetricsMiddleware records request count and latency labelled by the
// chi route pattern, so path cardinality stays bounded.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middlewareChi.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}
		metrics.ObserveHTTP(r.Method, path, ww.Status(), time.Since(start))
	})
}
