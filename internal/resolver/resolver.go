// Package resolver decides whether a request path maps to a static file
// under a fixed root directory or has to be handed to the fallback handler.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/gitlab-org/pages-fallback/internal/lru"
	"gitlab.com/gitlab-org/pages-fallback/metrics"
)

// Kind tags a Result
type Kind int

const (
	// Fallback means the request must be delegated to the fallback handler
	Fallback Kind = iota
	// ServeStatic means the request maps to a regular file under the root
	ServeStatic
)

func (k Kind) String() string {
	if k == ServeStatic {
		return "static"
	}

	return "fallback"
}

// Result of resolving a request path. Path is the canonical absolute path
// of the file and is only set when Kind is ServeStatic.
type Result struct {
	Kind Kind
	Path string
}

// IsStatic reports whether the result points to a file to be served
func (r Result) IsStatic() bool {
	return r.Kind == ServeStatic
}

var fallbackResult = Result{Kind: Fallback}

// Option configures a Resolver
type Option func(*Resolver)

// WithCache keeps results in c. Results are then only refreshed once the
// cached entry expires.
func WithCache(c *lru.Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// Resolver maps request paths onto files under a root directory. It holds no
// mutable state of its own and is safe for concurrent use.
type Resolver struct {
	root  string
	cache *lru.Cache
}

// New creates a Resolver for root. The root is made absolute and all of its
// symlinks are evaluated once, here. A root that is missing, unreadable or not
// a directory results in a *ConfigurationError.
func New(root string, opts ...Option) (*Resolver, error) {
	rootPath, err := canonicalRoot(root)
	if err != nil {
		return nil, &ConfigurationError{Root: root, Err: err}
	}

	r := &Resolver{root: rootPath}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

func canonicalRoot(root string) (string, error) {
	if root == "" {
		return "", errEmptyRoot
	}

	rootPath, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	rootPath, err = filepath.EvalSymlinks(rootPath)
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(rootPath)
	if err != nil {
		return "", err
	}

	if !fi.IsDir() {
		return "", errNotDirectory
	}

	// Stat succeeding on a directory does not mean we can list it
	dir, err := os.Open(rootPath)
	if err != nil {
		return "", err
	}
	defer dir.Close()

	if _, err := dir.Readdirnames(1); err != nil && !isEOF(err) {
		return "", err
	}

	return rootPath, nil
}

// Root returns the canonical root directory
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps requestPath, the decoded path component of a request URI, to a
// Result. It never returns ServeStatic for a path outside of the root.
// Every call is counted as a routing decision.
func (r *Resolver) Resolve(requestPath string) Result {
	var result Result
	if r.cache != nil {
		result = r.cache.FindOrFetch(requestPath, func() interface{} {
			return r.Lookup(requestPath)
		}).(Result)
	} else {
		result = r.Lookup(requestPath)
	}

	metrics.Resolutions.WithLabelValues(result.Kind.String()).Inc()

	return result
}

// Lookup applies the same rules as Resolve but bypasses the cache and the
// metrics. It is meant for lookups that no request caused.
func (r *Resolver) Lookup(requestPath string) Result {
	// The index route is always delegated
	if requestPath == "/" {
		return fallbackResult
	}

	if !strings.HasPrefix(requestPath, "/") || strings.IndexByte(requestPath, 0) >= 0 {
		return fallbackResult
	}

	if namesDirectory(requestPath) {
		return fallbackResult
	}

	fullPath, err := r.canonicalPath(requestPath)
	if err != nil {
		return fallbackResult
	}

	fi, err := os.Stat(fullPath)
	if err != nil || !fi.Mode().IsRegular() {
		return fallbackResult
	}

	return Result{Kind: ServeStatic, Path: fullPath}
}

// namesDirectory reports whether the last segment of requestPath can only
// be a directory: it is empty, "." or "..". Dot segments in the middle of
// the path are cleaned lexically.
func namesDirectory(requestPath string) bool {
	last := requestPath[strings.LastIndexByte(requestPath, '/')+1:]

	return last == "" || last == "." || last == ".."
}

// canonicalPath joins requestPath to the root, evaluates every symlink and
// verifies that the result is still inside of the root
func (r *Resolver) canonicalPath(requestPath string) (string, error) {
	joined := filepath.Join(r.root, filepath.FromSlash(requestPath))
	if _, err := r.validateFullPath(joined); err != nil {
		return "", err
	}

	fullPath, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", err
	}

	return r.validateFullPath(fullPath)
}

func (r *Resolver) validateFullPath(fullPath string) (string, error) {
	if r.root == fullPath {
		return fullPath, nil
	}

	prefix := r.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	// The requested path resolved to somewhere outside of the root directory
	if !strings.HasPrefix(fullPath, prefix) {
		return "", &outsideRootError{fullPath: fullPath, root: r.root}
	}

	return fullPath, nil
}
