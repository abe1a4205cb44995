package middleware

import (
	"net/http"

	"github.com/doujindesk/doujindesk-api/internal/http/response"
	"github.com/doujindesk/doujindesk-api/internal/models"
)

// Role allows staff with one of roles. Must run after StaffAuth.
//
//	r.GET("/api/finance/summary", finance.Summary).
//	    Middleware(middleware.StaffAuth(staff)).
//	    Middleware(middleware.Role(models.StaffRoleAdmin))
func Role(roles ...models.StaffRole) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := StaffFromContext(r.Context())
			if claims == nil {
				response.Unauthorized(w, "")
				return
			}

			for _, role := range roles {
				if claims.Role == string(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "")
		})
	}
}

// Admin allows administrators only.
func Admin() Middleware {
	return Role(models.StaffRoleAdmin)
}
