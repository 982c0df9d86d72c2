package fallback

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/pages-fallback/internal/resolver"
	"gitlab.com/gitlab-org/pages-fallback/internal/serving/disk"
	"gitlab.com/gitlab-org/pages-fallback/internal/testhelpers"
	"gitlab.com/gitlab-org/pages-fallback/metrics"
)

func newTestResolver(t *testing.T) (*resolver.Resolver, string) {
	t.Helper()

	tmpDir := testhelpers.TmpDir(t)
	root := filepath.Join(tmpDir, "public")

	testhelpers.Files(t, tmpDir, map[string]string{
		"outside.html":      "outside",
		"public/index.html": "<html>app</html>",
		"public/docs/":      "",
	})
	testhelpers.Symlink(t, tmpDir, "../outside.html", "public/escape.html")

	res, err := resolver.New(root)
	require.NoError(t, err)

	return res, root
}

func newTestReader() *disk.Reader {
	return disk.New(0, prometheus.NewHistogram(prometheus.HistogramOpts{Name: "file_size"}))
}

func TestNewFile(t *testing.T) {
	res, root := newTestResolver(t)

	tests := map[string]struct {
		name         string
		expectedPath string
		expectedErr  bool
	}{
		"index.html":             {name: "index.html", expectedPath: filepath.Join(root, "index.html")},
		"with leading slash":     {name: "/index.html", expectedPath: filepath.Join(root, "index.html")},
		"missing":                {name: "missing.html", expectedErr: true},
		"directory":              {name: "docs", expectedErr: true},
		"empty":                  {name: "", expectedErr: true},
		"symlink outside root":   {name: "escape.html", expectedErr: true},
		"traversal outside root": {name: "../outside.html", expectedErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f, err := NewFile(res, tt.name, http.StatusOK, newTestReader())
			if tt.expectedErr {
				require.ErrorIs(t, err, ErrMissingFallbackFile)
				require.Nil(t, f)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.expectedPath, f.Path())
		})
	}
}

func TestFileServeHTTP(t *testing.T) {
	res, root := newTestResolver(t)

	f, err := NewFile(res, "index.html", http.StatusOK, newTestReader())
	require.NoError(t, err)

	served := testutil.ToFloat64(metrics.FallbackRequests.WithLabelValues(typeFile, "200"))

	for _, path := range []string{"/", "/users/1", "/docs/"} {
		w := httptest.NewRecorder()
		f.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		require.Equal(t, http.StatusOK, w.Code, path)
		require.Equal(t, "<html>app</html>", w.Body.String(), path)
	}

	require.Equal(t, served+3, testutil.ToFloat64(metrics.FallbackRequests.WithLabelValues(typeFile, "200")))

	t.Run("removed after startup", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(root, "index.html")))

		testhelpers.AssertHTMLError(t, f, http.MethodGet, "/users/1", http.StatusNotFound, "The page you are looking for could not be found")
	})
}

func TestFileServeHTTPWithStatus(t *testing.T) {
	res, _ := newTestResolver(t)

	f, err := NewFile(res, "index.html", http.StatusNotFound, newTestReader())
	require.NoError(t, err)

	served := testutil.ToFloat64(metrics.FallbackRequests.WithLabelValues(typeFile, "404"))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/missing/page", nil)
	r.Header.Set("Range", "bytes=0-3")
	f.ServeHTTP(w, r)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "<html>app</html>", w.Body.String())
	require.Empty(t, w.Header().Get("Content-Range"))
	require.Equal(t, served+1, testutil.ToFloat64(metrics.FallbackRequests.WithLabelValues(typeFile, "404")))
}

func TestNewFileIsNotCountedAsResolution(t *testing.T) {
	res, _ := newTestResolver(t)

	before := testutil.ToFloat64(metrics.Resolutions.WithLabelValues(resolver.ServeStatic.String()))

	_, err := NewFile(res, "index.html", http.StatusOK, newTestReader())
	require.NoError(t, err)

	require.Equal(t, before, testutil.ToFloat64(metrics.Resolutions.WithLabelValues(resolver.ServeStatic.String())))
}
