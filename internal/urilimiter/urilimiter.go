// Package urilimiter rejects requests with overly long URIs before they reach
// the resolver.
package urilimiter

import (
	"net/http"

	"gitlab.com/gitlab-org/pages-fallback/internal/httperrors"
	"gitlab.com/gitlab-org/pages-fallback/internal/logging"
)

// NewMiddleware answers requests whose raw request URI, query included, is
// longer than limit bytes with 414. A limit of 0 or less disables the check.
func NewMiddleware(handler http.Handler, limit int) http.Handler {
	if limit <= 0 {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if length := len(r.RequestURI); length > limit {
			logging.LogRequest(r).WithField("uri_length", length).Debug("request URI exceeds the limit")
			httperrors.Serve414(w)
			return
		}

		handler.ServeHTTP(w, r)
	})
}
