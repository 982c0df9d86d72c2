package fallback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"gitlab.com/gitlab-org/pages-fallback/internal/errortracking"
	"gitlab.com/gitlab-org/pages-fallback/internal/httperrors"
	"gitlab.com/gitlab-org/pages-fallback/internal/httptransport"
	"gitlab.com/gitlab-org/pages-fallback/internal/logging"
	"gitlab.com/gitlab-org/pages-fallback/internal/request"
	"gitlab.com/gitlab-org/pages-fallback/metrics"
)

const upstreamClientName = "fallback_upstream"

var errInvalidUpstream = errors.New("upstream needs an http or https scheme and a host")

// Proxy forwards fallback requests to a front controller application
type Proxy struct {
	// logURL is the upstream without user info, query or fragment
	logURL string
	proxy  *httputil.ReverseProxy
}

// NewProxy returns a Proxy for upstream. timeout bounds both connecting to
// the upstream and waiting for its response headers.
func NewProxy(upstream string, timeout time.Duration) (*Proxy, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream: %w", withoutURL(err))
	}

	logURL := logging.CleanURL(upstream)

	if (u.Scheme != request.SchemeHTTP && u.Scheme != request.SchemeHTTPS) || u.Host == "" {
		return nil, fmt.Errorf("%q: %w", logURL, errInvalidUpstream)
	}

	p := &Proxy{logURL: logURL}

	rp := httputil.NewSingleHostReverseProxy(u)
	director := rp.Director
	rp.Director = func(r *http.Request) {
		director(r)
		setForwardedHeaders(r)
	}
	rp.Transport = httptransport.NewMeteredRoundTripper(
		httptransport.NewTransport(timeout),
		upstreamClientName,
		metrics.FallbackUpstreamLatency,
		timeout,
	)
	rp.ErrorHandler = p.handleError

	p.proxy = rp

	return p, nil
}

// Upstream returns the URL requests are forwarded to, safe for logging
func (p *Proxy) Upstream() string {
	return p.logURL
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveCounted(w, r, metrics.FallbackRequests, typeProxy, p.proxy.ServeHTTP)
}

// setForwardedHeaders runs on the outgoing request. Host still holds the
// value the client sent.
func setForwardedHeaders(r *http.Request) {
	scheme := request.SchemeHTTP
	if request.IsHTTPS(r) {
		scheme = request.SchemeHTTPS
	}

	r.Header.Set("X-Forwarded-Host", r.Host)
	r.Header.Set("X-Forwarded-Proto", scheme)
}

func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		logging.LogRequest(r).WithError(err).Debug("client went away before the upstream responded")
		return
	}

	l := logging.LogRequest(r).WithError(err).WithField("upstream", p.logURL)

	if isTimeout(err) {
		l.Warn("fallback upstream timed out")
		httperrors.Serve504(w)
		return
	}

	l.Error("fallback upstream request failed")
	errortracking.CaptureRequest(err, r, errortracking.Field("upstream", p.logURL))
	httperrors.Serve502(w)
}

// withoutURL drops the raw URL, which may carry credentials, from the
// errors of url.Parse
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}

	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
