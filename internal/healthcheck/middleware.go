package healthcheck

import (
	"net/http"

	"gitlab.com/gitlab-org/pages-fallback/internal/logging"
)

// CheckFunc reports whether the server is able to serve requests
type CheckFunc func() error

// Handler is serving the application status check
func Handler(check CheckFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		if check != nil {
			if err := check(); err != nil {
				logging.LogRequest(r).WithError(err).Warn("status check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("failure\n"))
				return
			}
		}

		w.Write([]byte("success\n"))
	})
}

// NewMiddleware is serving the application status check on statusPath,
// before the request reaches the resolver
func NewMiddleware(handler http.Handler, statusPath string, check CheckFunc) http.Handler {
	if statusPath == "" {
		return handler
	}

	status := Handler(check)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == statusPath {
			status.ServeHTTP(w, r)
			return
		}

		handler.ServeHTTP(w, r)
	})
}
