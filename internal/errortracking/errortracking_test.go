package errortracking

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCaptureWithoutInitialize(t *testing.T) {
	err := errors.New("upstream unreachable")
	r := httptest.NewRequest(http.MethodGet, "/users/1", nil)

	require.NotPanics(t, func() {
		Capture(err, Field("listener", "http"))
		CaptureRequest(err, r, Field("fallback", "proxy"))
	})
}

func TestWithOptionsKeepsCallerSlice(t *testing.T) {
	opts := make([]Option, 1, 4)
	opts[0] = Field("a", "b")

	all := withOptions(opts, Field("c", "d"), Field("e", "f"))
	require.Len(t, all, 3)

	other := withOptions(opts, Field("g", "h"))
	require.Len(t, other, 2)
	require.Len(t, all, 3)
	require.Len(t, opts, 1)
}
