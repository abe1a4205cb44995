package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/monitoring"
)

// Metrics observes request durations labelled by route pattern. The router
// fills in the pattern once a route matches; unmatched requests are
// labelled "unmatched".
func Metrics(metrics *monitoring.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			route := "unmatched"
			ctx := context.WithValue(r.Context(), request.RoutePatternKey, &route)

			next.ServeHTTP(rec, r.WithContext(ctx))

			metrics.ObserveRequest(r.Method, route, rec.status, time.Since(start))
		})
	}
}
