package httptransport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestHistogram() prometheus.Histogram {
	return prometheus.NewHistogram(prometheus.HistogramOpts{Name: "upstream_latency"})
}

func TestMeteredRoundTripper(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "hello")
	}))
	defer upstream.Close()

	hist := newTestHistogram()
	mrt := NewMeteredRoundTripper(NewTransport(time.Second), t.Name(), hist, time.Second)

	req, err := http.NewRequest(http.MethodGet, upstream.URL, nil)
	require.NoError(t, err)

	res, err := mrt.RoundTrip(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusTeapot, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, "hello", string(body))

	require.Equal(t, 1, testutil.CollectAndCount(hist))
}

func TestMeteredRoundTripperTimeout(t *testing.T) {
	block := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer upstream.Close()
	defer close(block)

	mrt := NewMeteredRoundTripper(NewTransport(time.Second), t.Name(), newTestHistogram(), 10*time.Millisecond)

	req, err := http.NewRequest(http.MethodGet, upstream.URL, nil)
	require.NoError(t, err)

	res, err := mrt.RoundTrip(req)
	require.Nil(t, res)

	var timeoutErr *TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	require.True(t, timeoutErr.Timeout())
	require.Equal(t, 10*time.Millisecond, timeoutErr.After)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestMeteredRoundTripperResponseAfterTimeout(t *testing.T) {
	body := &closeRecorder{Reader: strings.NewReader("late")}

	// answers after the timeout fired, without looking at the context
	next := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()
		return &http.Response{StatusCode: http.StatusOK, Body: body}, nil
	})

	mrt := NewMeteredRoundTripper(next, t.Name(), newTestHistogram(), 10*time.Millisecond)

	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1/", nil)
	require.NoError(t, err)

	res, err := mrt.RoundTrip(req)
	require.Nil(t, res)

	var timeoutErr *TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, body.closed)
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestMeteredRoundTripperConnectionError(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	upstream.Close()

	mrt := NewMeteredRoundTripper(NewTransport(time.Second), t.Name(), newTestHistogram(), time.Second)

	req, err := http.NewRequest(http.MethodGet, upstream.URL, nil)
	require.NoError(t, err)

	_, err = mrt.RoundTrip(req)
	require.Error(t, err)

	var timeoutErr *TimeoutError
	require.False(t, errors.As(err, &timeoutErr))
}
