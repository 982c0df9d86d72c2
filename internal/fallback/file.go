package fallback

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gitlab.com/gitlab-org/pages-fallback/internal/resolver"
	"gitlab.com/gitlab-org/pages-fallback/metrics"
)

// ErrMissingFallbackFile is returned when the fallback document is not a
// regular file inside of the root directory
var ErrMissingFallbackFile = errors.New("fallback file is not a regular file inside of the root directory")

// Resolver maps a path to a static file without counting it as a request
type Resolver interface {
	Lookup(requestPath string) resolver.Result
}

// FileServer writes a resolved file to the response
type FileServer interface {
	ServeFile(w http.ResponseWriter, r *http.Request, fullPath string)
	ServeFileWithStatus(w http.ResponseWriter, r *http.Request, code int, fullPath string)
}

// File answers every fallback request with the same document from the root
// directory, typically the index.html of a single page application
type File struct {
	fullPath string
	status   int
	static   FileServer
}

// NewFile looks name up with the same rules that apply to requests. It fails
// when name does not resolve to a regular file. The document is served with
// status; 200 keeps conditional and range requests working.
func NewFile(res Resolver, name string, status int, static FileServer) (*File, error) {
	result := res.Lookup("/" + strings.TrimPrefix(name, "/"))
	if !result.IsStatic() {
		return nil, fmt.Errorf("%q: %w", name, ErrMissingFallbackFile)
	}

	return &File{fullPath: result.Path, status: status, static: static}, nil
}

// Path returns the canonical path of the fallback document
func (f *File) Path() string {
	return f.fullPath
}

func (f *File) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveCounted(w, r, metrics.FallbackRequests, typeFile, func(w http.ResponseWriter, r *http.Request) {
		if f.status == http.StatusOK {
			f.static.ServeFile(w, r, f.fullPath)
			return
		}

		f.static.ServeFileWithStatus(w, r, f.status, f.fullPath)
	})
}
