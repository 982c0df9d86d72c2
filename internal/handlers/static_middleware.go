package handlers

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
)

// StaticMiddleware wraps the response of a static file
type StaticMiddleware = func(http.Handler) http.Handler

type staticServerWithMiddlewares struct {
	static      StaticServer
	middlewares []StaticMiddleware
}

// WithMiddlewares returns a StaticServer running middlewares, in the given
// order, around static. Responses of the fallback handler are never wrapped.
func WithMiddlewares(static StaticServer, middlewares ...StaticMiddleware) StaticServer {
	var mws []StaticMiddleware
	for _, mw := range middlewares {
		if mw != nil {
			mws = append(mws, mw)
		}
	}

	if len(mws) == 0 {
		return static
	}

	return &staticServerWithMiddlewares{static: static, middlewares: mws}
}

func (s *staticServerWithMiddlewares) ServeFile(w http.ResponseWriter, r *http.Request, fullPath string) {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.static.ServeFile(w, r, fullPath)
	})

	for i := len(s.middlewares) - 1; i >= 0; i-- {
		handler = s.middlewares[i](handler)
	}

	handler.ServeHTTP(w, r)
}

// CompressMiddleware gzip or deflate encodes responses for clients accepting
// it. Range requests are left alone since Content-Range refers to the
// identity encoding. Returns nil when disabled.
func CompressMiddleware(enabled bool) StaticMiddleware {
	if !enabled {
		return nil
	}

	return func(handler http.Handler) http.Handler {
		compressed := gorillahandlers.CompressHandler(handler)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Range") != "" {
				handler.ServeHTTP(w, r)
				return
			}

			compressed.ServeHTTP(w, r)
		})
	}
}

// CorsMiddleware allows cross origin GET and HEAD requests. Returns nil when
// disabled.
func CorsMiddleware(disabled bool) StaticMiddleware {
	if disabled {
		return nil
	}

	return func(handler http.Handler) http.Handler {
		return CorsHandler(handler, false)
	}
}
