package request

import (
	"context"
	"net"
	"net/http"

	"gitlab.com/gitlab-org/pages-fallback/internal/resolver"
)

type ctxKey string

const (
	ctxHTTPSKey      ctxKey = "https"
	ctxResolutionKey ctxKey = "resolution"

	// SchemeHTTP name for the HTTP scheme
	SchemeHTTP = "http"
	// SchemeHTTPS name for the HTTPS scheme
	SchemeHTTPS = "https"
)

// WithHTTPSFlag saves https flag in request's context
func WithHTTPSFlag(r *http.Request, https bool) *http.Request {
	ctx := context.WithValue(r.Context(), ctxHTTPSKey, https)

	return r.WithContext(ctx)
}

// IsHTTPS checks whether the request originated from HTTP or HTTPS.
// It reads the ctxHTTPSKey from the context and returns its value
// or false when the flag was never set.
func IsHTTPS(r *http.Request) bool {
	https, _ := r.Context().Value(ctxHTTPSKey).(bool)

	return https
}

// GetHostWithoutPort returns a host without the port. The host(:port) comes
// from a Host: header if it is provided, otherwise it is a server name.
func GetHostWithoutPort(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		return r.Host
	}

	return host
}

// GetRemoteAddrWithoutPort strips the port from r.RemoteAddr
func GetRemoteAddrWithoutPort(r *http.Request) string {
	addr, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return addr
}

// Resolution is a mutable slot stored in the request context so that
// the outer access logger can see the decision taken by an inner handler
type Resolution struct {
	Result resolver.Result
	set    bool
}

// WithResolutionSlot prepares the request context to carry a resolution
func WithResolutionSlot(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), ctxResolutionKey, &Resolution{})

	return r.WithContext(ctx)
}

// SetResolution records the result for the request, if a slot was prepared
func SetResolution(r *http.Request, result resolver.Result) {
	if slot, ok := r.Context().Value(ctxResolutionKey).(*Resolution); ok {
		slot.Result = result
		slot.set = true
	}
}

// GetResolution returns the recorded result and whether one was recorded
func GetResolution(r *http.Request) (resolver.Result, bool) {
	slot, ok := r.Context().Value(ctxResolutionKey).(*Resolution)
	if !ok || !slot.set {
		return resolver.Result{}, false
	}

	return slot.Result, true
}
