package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func TestMatchRoute(t *testing.T) {
	params, ok := matchRoute("/api/purchases/{id}/refund", "/api/purchases/PUR-1/refund")
	assert.True(t, ok)
	assert.Equal(t, "PUR-1", params["id"])

	_, ok = matchRoute("/api/purchases/{id}", "/api/purchases/PUR-1/refund")
	assert.False(t, ok)

	_, ok = matchRoute("/api/purchases/{id}/refund", "/api/purchases//refund")
	assert.False(t, ok)

	_, ok = matchRoute("/api/staff/login", "/api/staff/logout")
	assert.False(t, ok)
}

func TestRouter_DispatchesWithParams(t *testing.T) {
	r := New()
	r.GET("/api/circles/{id}", func(w http.ResponseWriter, req *request.Request) {
		w.Write([]byte(req.RouteParam("id")))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/circles/c-42", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c-42", rec.Body.String())
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	r := New()
	r.POST("/api/purchases", func(w http.ResponseWriter, req *request.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/purchases", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	var trail []string
	mark := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trail = append(trail, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := New()
	r.Use(mark("global"))
	g := r.Group("/api/admin")
	g.Use(mark("group"))
	g.GET("/sales", func(w http.ResponseWriter, req *request.Request) {
		trail = append(trail, "handler")
	}).Middleware(mark("route"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/admin/sales", nil))

	assert.Equal(t, []string{"global", "group", "route", "handler"}, trail)
}

func TestRouter_Mounts(t *testing.T) {
	r := New()
	r.Handle("/files/", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/circle-files/c-1/a.png", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRouter_RecordsRoutePattern(t *testing.T) {
	r := New()
	r.GET("/api/purchases/{id}", func(w http.ResponseWriter, req *request.Request) {})

	pattern := "unmatched"
	req := httptest.NewRequest(http.MethodGet, "/api/purchases/PUR-9", nil)
	req = req.WithContext(contextWithPattern(req, &pattern))
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "/api/purchases/{id}", pattern)
}

func contextWithPattern(req *http.Request, pattern *string) context.Context {
	return context.WithValue(req.Context(), request.RoutePatternKey, pattern)
}
