package handlers

import (
	"net/http"

	"gitlab.com/gitlab-org/pages-fallback/internal/logging"
	"gitlab.com/gitlab-org/pages-fallback/internal/request"
)

// NewStaticOrFallback returns the handler at the core of the server. Every
// request is either answered with a file under the root or handed, untouched,
// to fallback. Exactly one of them is invoked per request.
func NewStaticOrFallback(res Resolver, static StaticServer, fallback http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := res.Resolve(r.URL.Path)
		request.SetResolution(r, result)

		if result.IsStatic() {
			static.ServeFile(w, r, result.Path)
			return
		}

		logging.LogRequest(r).Debug("no static file, delegating to fallback")
		fallback.ServeHTTP(w, r)
	})
}
