// -----------------------------------------------------------------------------
// Middleware Package
// -----------------------------------------------------------------------------
// A middleware wraps an http.Handler. Global ones are added with
// router.Use, route ones with route.Middleware:
//
//	r.Use(middleware.Logging(logger))
//	r.POST("/api/gate/validate", gate.Validate).
//	    Middleware(middleware.StaffAuth(staffService)).
//	    Middleware(middleware.Role("gate", "admin"))
// -----------------------------------------------------------------------------

package middleware

import (
	"log"
	"net/http"
	"time"
)

type Middleware func(next http.Handler) http.Handler

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// Logging logs every request with its status and duration.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			logger.Printf("%s %s %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
		})
	}
}
