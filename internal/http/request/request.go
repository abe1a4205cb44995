// Package request wraps *http.Request with the helpers the controllers use:
// route params, query values, JSON bodies and the authenticated staff member.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/doujindesk/doujindesk-api/pkg/auth"
)

// MaxBodySize caps JSON request bodies.
const MaxBodySize = 1 << 20

type contextKey string

const (
	// RequestParamsKey holds the matched route params.
	RequestParamsKey contextKey = "route_params"

	// StaffClaimsKey holds the *auth.JWTClaims of the authenticated staff
	// member.
	StaffClaimsKey contextKey = "staff_claims"

	// RoutePatternKey holds a *string the router sets to the matched route
	// pattern.
	RoutePatternKey contextKey = "route_pattern"
)

// ErrUnauthenticated is returned when no staff member is in the context.
var ErrUnauthenticated = errors.New("unauthorized: no staff member in context")

// Request wraps *http.Request.
type Request struct {
	*http.Request
}

func New(r *http.Request) *Request {
	return &Request{Request: r}
}

// IsJSON reports whether the body is declared as JSON.
func (r *Request) IsJSON() bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func (r *Request) BearerToken() string {
	return auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
}

// Query returns a query value or defaultValue.
func (r *Request) Query(key string, defaultValue string) string {
	vals, exists := r.URL.Query()[key]
	if !exists || len(vals) == 0 {
		return defaultValue
	}
	return vals[0]
}

// QueryBool parses a boolean query value. Unparseable values give
// defaultValue.
func (r *Request) QueryBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(r.Query(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// RouteParam returns a {param} of the matched route.
func (r *Request) RouteParam(key string) string {
	params, ok := r.Context().Value(RequestParamsKey).(map[string]string)
	if !ok {
		return ""
	}
	return params[key]
}

// ParseJSON decodes the body into dest.
//
//	var input services.PurchaseInput
//	if err := r.ParseJSON(&input); err != nil {
//	    response.BadRequest(w, "Invalid JSON body")
//	    return
//	}
func (r *Request) ParseJSON(dest interface{}) error {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil {
		return err
	}
	if len(body) > MaxBodySize {
		return fmt.Errorf("request body exceeds %d bytes", MaxBodySize)
	}
	if len(body) == 0 {
		return errors.New("request body is empty")
	}

	return json.Unmarshal(body, dest)
}

// GetIP returns the client address. X-Forwarded-For is trusted, so run the
// API behind a proxy that sets it.
func (r *Request) GetIP() string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Staff returns the claims set by the staff auth middleware.
func (r *Request) Staff() (*auth.JWTClaims, error) {
	claims, ok := r.Context().Value(StaffClaimsKey).(*auth.JWTClaims)
	if !ok || claims == nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
