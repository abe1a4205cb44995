// -----------------------------------------------------------------------------
// Staff Authentication Middleware
// -----------------------------------------------------------------------------
// Back office and gate endpoints require a staff token:
//
//	Authorization: Bearer <token from POST /api/staff/login>
//
// The claims are stored in the request context (request.StaffClaimsKey).
// -----------------------------------------------------------------------------

package middleware

import (
	"context"
	"net/http"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/http/response"
	"github.com/doujindesk/doujindesk-api/pkg/auth"
)

// Authenticator validates a staff token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.JWTClaims, error)
}

// StaffAuth rejects requests without a valid token of an active staff member.
func StaffAuth(authenticator Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			token := auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
			if token == "" {
				response.Unauthorized(w, "Invalid Authorization format (expected Bearer token)")
				return
			}

			claims, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), request.StaffClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffFromContext returns the authenticated staff claims, or nil.
func StaffFromContext(ctx context.Context) *auth.JWTClaims {
	claims, _ := ctx.Value(request.StaffClaimsKey).(*auth.JWTClaims)
	return claims
}
