package httptransport

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

type meteredRoundTripper struct {
	next        http.RoundTripper
	name        string
	durations   prometheus.Observer
	ttfbTimeout time.Duration
}

// NewMeteredRoundTripper wraps next and observes the duration of every round
// trip that produced a response. A round trip that does not receive response
// headers within ttfbTimeout is cancelled.
func NewMeteredRoundTripper(next http.RoundTripper, name string, durations prometheus.Observer, ttfbTimeout time.Duration) http.RoundTripper {
	return &meteredRoundTripper{
		next:        next,
		name:        name,
		durations:   durations,
		ttfbTimeout: ttfbTimeout,
	}
}

func (mrt *meteredRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx, cancel := context.WithCancel(r.Context())
	timer := time.AfterFunc(mrt.ttfbTimeout, cancel)

	resp, err := mrt.next.RoundTrip(r.WithContext(ctx))
	if !timer.Stop() {
		// headers did not arrive in time, and a response that raced the timer
		// can not be read anymore since ctx is cancelled
		if err == nil {
			resp.Body.Close()
			err = ctx.Err()
		}

		cancel()
		return nil, &TimeoutError{Name: mrt.name, After: mrt.ttfbTimeout, Err: err}
	}

	if err != nil {
		cancel()
		return nil, err
	}

	mrt.durations.Observe(time.Since(start).Seconds())
	mrt.logResponse(r, resp)

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}

	return resp, nil
}

func (mrt *meteredRoundTripper) logResponse(req *http.Request, resp *http.Response) {
	if log.GetLevel() == log.TraceLevel {
		l := log.WithFields(log.Fields{
			"client_name":     mrt.name,
			"req_url":         req.URL.String(),
			"res_status_code": resp.StatusCode,
		})

		for header, value := range resp.Header {
			l = l.WithField(strings.ToLower(header), strings.Join(value, ";"))
		}

		l.Traceln("response")
	}
}
