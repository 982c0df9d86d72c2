package rejectmethods

import (
	"net/http"

	"gitlab.com/gitlab-org/pages-fallback/internal/httperrors"
	"gitlab.com/gitlab-org/pages-fallback/internal/logging"
)

// knownMethods are the methods of RFC 7231 and RFC 5789. Anything else never
// reaches the resolver or the fallback.
var knownMethods = map[string]struct{}{}

func init() {
	for _, method := range []string{
		http.MethodGet, http.MethodHead, http.MethodPost,
		http.MethodPut, http.MethodPatch, http.MethodDelete,
		http.MethodConnect, http.MethodOptions, http.MethodTrace,
	} {
		knownMethods[method] = struct{}{}
	}
}

// NewMiddleware answers requests with an unknown method with 405
func NewMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := knownMethods[r.Method]; !ok {
			logging.LogRequest(r).WithField("method", r.Method).Debug("rejected unknown request method")
			httperrors.Serve405(w)
			return
		}

		handler.ServeHTTP(w, r)
	})
}
