// Package router maps method + path patterns to handlers. Patterns use
// {name} segments:
//
//	/api/purchases/{id}/refund
//	/api/circles/{id}/sample
package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/http/response"
	"github.com/doujindesk/doujindesk-api/internal/middleware"
)

// HandlerFunc receives the wrapped request with route params.
type HandlerFunc func(http.ResponseWriter, *request.Request)

type Router struct {
	routes      []*Route
	middlewares []middleware.Middleware
	mounts      []mount
}

type Route struct {
	method      string
	path        string
	handler     HandlerFunc
	middlewares []middleware.Middleware
}

type RouteGroup struct {
	prefix      string
	middlewares []middleware.Middleware
	router      *Router
}

// mount serves a plain http.Handler below a path prefix (file server,
// prometheus handler).
type mount struct {
	prefix  string
	handler http.Handler
}

func New() *Router {
	return &Router{}
}

// Use adds a global middleware. Global middlewares run before matching.
func (r *Router) Use(m middleware.Middleware) {
	r.middlewares = append(r.middlewares, m)
}

func (r *Router) GET(path string, handler HandlerFunc) *Route {
	return r.addRoute(http.MethodGet, path, handler)
}

func (r *Router) POST(path string, handler HandlerFunc) *Route {
	return r.addRoute(http.MethodPost, path, handler)
}

func (r *Router) PUT(path string, handler HandlerFunc) *Route {
	return r.addRoute(http.MethodPut, path, handler)
}

func (r *Router) DELETE(path string, handler HandlerFunc) *Route {
	return r.addRoute(http.MethodDelete, path, handler)
}

func (r *Router) PATCH(path string, handler HandlerFunc) *Route {
	return r.addRoute(http.MethodPatch, path, handler)
}

// Handle mounts handler for every path below prefix.
func (r *Router) Handle(prefix string, handler http.Handler) {
	r.mounts = append(r.mounts, mount{prefix: prefix, handler: handler})
}

func (r *Router) addRoute(method, path string, handler HandlerFunc) *Route {
	route := &Route{
		method:  method,
		path:    path,
		handler: handler,
	}
	r.routes = append(r.routes, route)
	return route
}

// Middleware adds a route middleware (chainable).
//
//	r.POST("/api/gate/validate", gate.Validate).
//	    Middleware(middleware.StaffAuth(staff)).
//	    Middleware(middleware.Role(models.StaffRoleGate, models.StaffRoleAdmin))
func (route *Route) Middleware(m middleware.Middleware) *Route {
	route.middlewares = append(route.middlewares, m)
	return route
}

// Group creates a route group sharing prefix and middlewares. Group
// middlewares must be added before the group's routes.
//
//	admin := r.Group("/api/admin")
//	admin.Use(middleware.StaffAuth(staff))
//	admin.GET("/sales", finance.Sales)
func (r *Router) Group(prefix string) *RouteGroup {
	return &RouteGroup{prefix: prefix, router: r}
}

func (g *RouteGroup) Use(m middleware.Middleware) {
	g.middlewares = append(g.middlewares, m)
}

func (g *RouteGroup) add(method, path string, handler HandlerFunc) *Route {
	route := g.router.addRoute(method, g.prefix+path, handler)
	route.middlewares = append(append([]middleware.Middleware{}, g.middlewares...), route.middlewares...)
	return route
}

func (g *RouteGroup) GET(path string, handler HandlerFunc) *Route {
	return g.add(http.MethodGet, path, handler)
}

func (g *RouteGroup) POST(path string, handler HandlerFunc) *Route {
	return g.add(http.MethodPost, path, handler)
}

func (g *RouteGroup) PUT(path string, handler HandlerFunc) *Route {
	return g.add(http.MethodPut, path, handler)
}

func (g *RouteGroup) DELETE(path string, handler HandlerFunc) *Route {
	return g.add(http.MethodDelete, path, handler)
}

func (g *RouteGroup) PATCH(path string, handler HandlerFunc) *Route {
	return g.add(http.MethodPatch, path, handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var handler http.Handler = http.HandlerFunc(r.handleRequest)

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	handler.ServeHTTP(w, req)
}

func (r *Router) handleRequest(w http.ResponseWriter, req *http.Request) {
	methodMismatch := false

	for _, route := range r.routes {
		params, matched := matchRoute(route.path, req.URL.Path)
		if !matched {
			continue
		}
		if route.method != req.Method {
			methodMismatch = true
			continue
		}

		if pattern, ok := req.Context().Value(request.RoutePatternKey).(*string); ok {
			*pattern = route.path
		}

		ctx := context.WithValue(req.Context(), request.RequestParamsKey, params)
		req = req.WithContext(ctx)

		var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			route.handler(w, request.New(req))
		})

		for i := len(route.middlewares) - 1; i >= 0; i-- {
			handler = route.middlewares[i](handler)
		}

		handler.ServeHTTP(w, req)
		return
	}

	for _, m := range r.mounts {
		if strings.HasPrefix(req.URL.Path, m.prefix) {
			if pattern, ok := req.Context().Value(request.RoutePatternKey).(*string); ok {
				*pattern = m.prefix
			}
			m.handler.ServeHTTP(w, req)
			return
		}
	}

	if methodMismatch {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	response.NotFound(w, "Route not found")
}

// matchRoute compares pattern with path and extracts the {param} segments.
func matchRoute(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := make(map[string]string)

	for i, part := range patternParts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			if pathParts[i] == "" {
				return nil, false
			}
			params[strings.Trim(part, "{}")] = pathParts[i]
			continue
		}

		if part != pathParts[i] {
			return nil, false
		}
	}

	return params, true
}
