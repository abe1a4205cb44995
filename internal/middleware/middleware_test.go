package middleware

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/monitoring"
	"github.com/doujindesk/doujindesk-api/pkg/auth"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

type stubAuthenticator map[string]*auth.JWTClaims

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*auth.JWTClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return claims, nil
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStaffAuth(t *testing.T) {
	authenticator := stubAuthenticator{
		"gate-token": {StaffID: "STF-1", Role: string(models.StaffRoleGate), Gate: "gate-a"},
	}

	var seen *auth.JWTClaims
	h := StaffAuth(authenticator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = StaffFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/staff/me", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)

	req.Header.Set("Authorization", "Token gate-token")
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)

	req.Header.Set("Authorization", "Bearer stale")
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)

	req.Header.Set("Authorization", "Bearer gate-token")
	assert.Equal(t, http.StatusOK, serve(h, req).Code)
	require.NotNil(t, seen)
	assert.Equal(t, "STF-1", seen.StaffID)

	claims, err := request.New(req.WithContext(context.WithValue(req.Context(), request.StaffClaimsKey, seen))).Staff()
	require.NoError(t, err)
	assert.Equal(t, "gate-a", claims.Gate)
}

func TestRole(t *testing.T) {
	h := Role(models.StaffRoleAdmin, models.StaffRoleCoordinator)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/purchases", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)

	withRole := func(role models.StaffRole) *http.Request {
		claims := &auth.JWTClaims{StaffID: "STF-1", Role: string(role)}
		return req.WithContext(context.WithValue(req.Context(), request.StaffClaimsKey, claims))
	}
	assert.Equal(t, http.StatusForbidden, serve(h, withRole(models.StaffRoleGate)).Code)
	assert.Equal(t, http.StatusOK, serve(h, withRole(models.StaffRoleCoordinator)).Code)
	assert.Equal(t, http.StatusForbidden, serve(Admin()(okHandler), withRole(models.StaffRoleCoordinator)).Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://doujindesk.id"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/ticket-types", nil)
	req.Header.Set("Origin", "https://doujindesk.id")
	rec := serve(h, req)
	assert.Equal(t, "https://doujindesk.id", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://elsewhere.example")
	rec = serve(h, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/purchases", nil)
	rec = serve(CORS([]string{"*"})(okHandler), preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Stop()
	h := rl.Middleware()(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/purchases", nil)
	req.RemoteAddr = "10.0.0.1:5123"

	assert.Equal(t, http.StatusOK, serve(h, req).Code)
	assert.Equal(t, http.StatusOK, serve(h, req).Code)

	rec := serve(h, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// other clients have their own bucket
	other := httptest.NewRequest(http.MethodPost, "/api/purchases", nil)
	other.RemoteAddr = "10.0.0.2:5123"
	assert.Equal(t, http.StatusOK, serve(h, other).Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	defer rl.Stop()

	allowed, _ := rl.Allow("10.0.0.1")
	assert.True(t, allowed)
	assert.Equal(t, 0, rl.cleanup(time.Now()))
	assert.Equal(t, 1, rl.cleanup(time.Now().Add(2*limiterIdleTTL)))
}

func TestPanicRecovery(t *testing.T) {
	var logs bytes.Buffer
	h := PanicRecovery(log.New(&logs, "", 0))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/purchases/PUR-1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "boom")
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	m := monitoring.NewMetrics()
	h := Metrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pattern, ok := r.Context().Value(request.RoutePatternKey).(*string); ok {
			*pattern = "/api/purchases/{id}"
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	serve(h, httptest.NewRequest(http.MethodGet, "/api/purchases/PUR-1", nil))
	serve(h, httptest.NewRequest(http.MethodGet, "/api/purchases/PUR-2", nil))

	count, err := testutil.GatherAndCount(m.Registry(), "doujindesk_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLogging(t *testing.T) {
	var logs bytes.Buffer
	h := Logging(log.New(&logs, "", 0))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	serve(h, httptest.NewRequest(http.MethodPost, "/api/circles", nil))
	assert.Contains(t, logs.String(), "POST /api/circles 201")
}
