// Package router composes the fixed request pipeline in front of a single
// handler. It does not match routes, every request reaches the same handler.
package router

import "net/http"

// Middleware wraps a handler
type Middleware = func(http.Handler) http.Handler

// Router serves every request through the same chain of middlewares
type Router struct {
	handler http.Handler
}

// NewRouter creates a Router for handler. The given middlewares are executed
// in the given order, the first one sees the request first.
func NewRouter(handler http.Handler, middlewares ...Middleware) Router {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}

		handler = middlewares[i](handler)
	}

	return Router{handler: handler}
}

func (s Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
