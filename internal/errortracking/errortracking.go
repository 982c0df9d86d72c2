// Package errortracking reports errors to Sentry through labkit. Reports are
// dropped until Initialize succeeds.
package errortracking

import (
	"net/http"

	"gitlab.com/gitlab-org/labkit/errortracking"
)

const loggerName = "pages-fallback"

// Option adds data to a report
type Option = errortracking.CaptureOption

// Initialize starts reporting to the Sentry project behind dsn
func Initialize(dsn, environment, version string) error {
	return errortracking.Initialize(
		errortracking.WithSentryDSN(dsn),
		errortracking.WithSentryEnvironment(environment),
		errortracking.WithVersion(version),
		errortracking.WithLoggerName(loggerName),
	)
}

// Field tags a report with key
func Field(key, value string) Option {
	return errortracking.WithField(key, value)
}

// Capture reports err together with the current stack trace
func Capture(err error, opts ...Option) {
	errortracking.Capture(err, withOptions(opts, errortracking.WithStackTrace())...)
}

// CaptureRequest reports err together with the request it failed and the
// current stack trace
func CaptureRequest(err error, r *http.Request, opts ...Option) {
	errortracking.Capture(err, withOptions(opts,
		errortracking.WithContext(r.Context()),
		errortracking.WithRequest(r),
		errortracking.WithStackTrace(),
	)...)
}

// withOptions never appends to the slice of the caller
func withOptions(opts []Option, extra ...Option) []Option {
	all := make([]Option, 0, len(opts)+len(extra))
	all = append(all, opts...)

	return append(all, extra...)
}
