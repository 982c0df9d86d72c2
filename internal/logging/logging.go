package logging

import (
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	"gitlab.com/gitlab-org/labkit/log"

	"gitlab.com/gitlab-org/pages-fallback/internal/request"
)

const (
	formatJSON = "json"
	formatText = "text"
)

func formatOrDefault(format string) string {
	if format == "" {
		return formatJSON
	}

	return format
}

// ConfigureLogging sets up the standard logger. Verbose logging includes the
// trace entries of the upstream round trips.
func ConfigureLogging(format string, verbose bool) error {
	level := "info"
	if verbose {
		level = "trace"
	}

	_, err := log.Initialize(
		log.WithFormatter(formatOrDefault(format)),
		log.WithLogLevel(level),
	)

	return err
}

// accessLogger returns the standard logger for structured formats. Text logs
// get a dedicated logger writing the combined log format.
func accessLogger(format string) (*logrus.Logger, error) {
	if formatOrDefault(format) != formatText {
		return logrus.StandardLogger(), nil
	}

	logger := log.New()
	if _, err := log.Initialize(log.WithLogger(logger), log.WithFormatter("combined")); err != nil {
		return nil, err
	}

	return logger, nil
}

// BasicAccessLogger configures the basic HTTP access logger middleware.
// The routing decision is only visible to it when the request carries a
// resolution slot, see request.WithResolutionSlot.
func BasicAccessLogger(handler http.Handler, format string) (http.Handler, error) {
	logger, err := accessLogger(format)
	if err != nil {
		return nil, err
	}

	return log.AccessLogger(handler,
		log.WithExtraFields(extraFields),
		log.WithAccessLogger(logger),
		log.WithXFFAllowed(func(sip string) bool { return false }),
	), nil
}

func extraFields(r *http.Request) log.Fields {
	fields := log.Fields{
		"correlation_id": correlation.ExtractFromContext(r.Context()),
		"pages_https":    request.IsHTTPS(r),
		"pages_host":     r.Host,
	}

	if result, ok := request.GetResolution(r); ok {
		fields["resolution"] = result.Kind.String()
	}

	return fields
}

// LogRequest will inject request host and path to the logged messages
func LogRequest(r *http.Request) *logrus.Entry {
	return log.WithFields(log.Fields{
		"correlation_id": correlation.ExtractFromContext(r.Context()),
		"host":           r.Host,
		"path":           r.URL.Path,
	})
}

// CleanURL removes the user info, query and fragment of a URL so it can be logged
func CleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}
