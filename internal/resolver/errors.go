package resolver

import (
	"errors"
	"fmt"
	"io"
)

var (
	errEmptyRoot    = errors.New("root directory is not set")
	errNotDirectory = errors.New("path needs to be a directory")
)

// ConfigurationError is returned by New when the root directory cannot be
// used. It is fatal: no request should be served with such a root.
type ConfigurationError struct {
	Root string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid root directory %q: %v", e.Root, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type outsideRootError struct {
	fullPath string
	root     string
}

func (e *outsideRootError) Error() string {
	return fmt.Sprintf("%q should be in %q", e.fullPath, e.root)
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
