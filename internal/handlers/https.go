package handlers

import (
	"net/http"

	"gitlab.com/gitlab-org/pages-fallback/internal/request"
)

// HTTPSRedirectMiddleware sends every plain HTTP request to the same URL on
// HTTPS when redirect is set
func HTTPSRedirectMiddleware(handler http.Handler, redirect bool) http.Handler {
	if !redirect {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !request.IsHTTPS(r) {
			redirectToHTTPS(w, r, http.StatusTemporaryRedirect)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

// redirectToHTTPS drops the port, the HTTPS listener is assumed to be on the
// default one
func redirectToHTTPS(w http.ResponseWriter, r *http.Request, statusCode int) {
	u := *r.URL
	u.Scheme = request.SchemeHTTPS
	u.Host = request.GetHostWithoutPort(r)
	u.User = nil

	http.Redirect(w, r, u.String(), statusCode)
}
