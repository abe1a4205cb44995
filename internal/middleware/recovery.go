package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/doujindesk/doujindesk-api/internal/http/response"
)

// PanicRecovery turns a handler panic into a JSON 500.
func PanicRecovery(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Printf("❌ PANIC: %v\n%s", err, debug.Stack())
					response.ServerError(w, "")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
