package httperrors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderEscapesContent(t *testing.T) {
	body := string(render(page{
		Status:  http.StatusTeapot,
		Title:   "Title <b>",
		Summary: "Summary & more",
		Details: []string{"<script>alert(1)</script>"},
	}))

	require.Contains(t, body, "<title>Title &lt;b&gt; (418)</title>")
	require.Contains(t, body, "<h1>418</h1>")
	require.Contains(t, body, "Summary &amp; more")
	require.Contains(t, body, "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>")
	require.NotContains(t, body, "<script>")
}

func TestServeErrorPages(t *testing.T) {
	tests := map[string]struct {
		serve           func(http.ResponseWriter)
		expectedStatus  int
		expectedSummary string
	}{
		"404": {serve: Serve404, expectedStatus: http.StatusNotFound, expectedSummary: "The page you are looking for could not be found."},
		"405": {serve: Serve405, expectedStatus: http.StatusMethodNotAllowed, expectedSummary: "The request method is not supported by this server."},
		"414": {serve: Serve414, expectedStatus: http.StatusRequestURITooLong, expectedSummary: "The URI provided was too long for the server to process."},
		"429": {serve: Serve429, expectedStatus: http.StatusTooManyRequests, expectedSummary: "Too many requests."},
		"500": {serve: Serve500, expectedStatus: http.StatusInternalServerError, expectedSummary: "Something went wrong on our end."},
		"502": {serve: Serve502, expectedStatus: http.StatusBadGateway, expectedSummary: "The application did not respond."},
		"504": {serve: Serve504, expectedStatus: http.StatusGatewayTimeout, expectedSummary: "The application took too long to respond."},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.serve(w)

			require.Equal(t, tt.expectedStatus, w.Code)
			require.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
			require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			require.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			require.Equal(t, strconv.Itoa(w.Body.Len()), w.Header().Get("Content-Length"))
			require.Contains(t, w.Body.String(), "<h1>"+name+"</h1>")
			require.Contains(t, w.Body.String(), tt.expectedSummary)
		})
	}
}

func TestEveryPageIsRendered(t *testing.T) {
	require.Len(t, rendered, len(pages))

	for status, body := range rendered {
		require.Contains(t, string(body), http.StatusText(status), status)
	}
}

func TestServe500WithRequest(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/style.css", nil)

	Serve500WithRequest(w, r, "could not serve file", errors.New("boom"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "Something went wrong on our end.")
}
