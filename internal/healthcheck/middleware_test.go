package healthcheck_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/pages-fallback/internal/healthcheck"
)

func TestHealthCheckMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		check  healthcheck.CheckFunc
		status int
		body   string
	}{
		{
			name:   "Not a healthcheck request",
			path:   "/foo/bar",
			status: http.StatusOK,
			body:   "Hello from inner handler",
		},
		{
			name:   "Healthcheck request",
			path:   "/-/healthcheck",
			status: http.StatusOK,
			body:   "success\n",
		},
		{
			name:   "Healthcheck request with passing check",
			path:   "/-/healthcheck",
			check:  func() error { return nil },
			status: http.StatusOK,
			body:   "success\n",
		},
		{
			name:   "Healthcheck request with failing check",
			path:   "/-/healthcheck",
			check:  func() error { return errors.New("root directory is gone") },
			status: http.StatusServiceUnavailable,
			body:   "failure\n",
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "Hello from inner handler")
	})

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rr := httptest.NewRecorder()

			middleware := healthcheck.NewMiddleware(handler, "/-/healthcheck", tc.check)
			middleware.ServeHTTP(rr, r)

			require.Equal(t, tc.status, rr.Code)
			require.Equal(t, tc.body, rr.Body.String())
		})
	}
}

func TestHealthCheckMiddlewareDisabled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "Hello from inner handler")
	})

	middleware := healthcheck.NewMiddleware(handler, "", nil)

	require.HTTPBodyContains(t, middleware.ServeHTTP, http.MethodGet, "/-/healthcheck", nil, "Hello from inner handler")
}

func TestHealthCheckHandler(t *testing.T) {
	u := "https://example.com/-/healthcheck"

	require.HTTPStatusCode(t, healthcheck.Handler(nil).ServeHTTP, http.MethodGet, u, nil, http.StatusOK)
	require.HTTPBodyContains(t, healthcheck.Handler(nil).ServeHTTP, http.MethodGet, u, nil, "success\n")
}
