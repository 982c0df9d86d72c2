package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-multierror"

	"gitlab.com/gitlab-org/pages-fallback/internal/customheaders"
)

var (
	ErrNoListener             = errors.New("no listener defined, please specify at least one --listen-* flag")
	ErrEmptyRootDir           = errors.New("root-dir must be defined")
	ErrHTTPSNoCertificate     = errors.New("root-cert and root-key must be defined when serving HTTPS")
	ErrNoFallback             = errors.New("either fallback-file or fallback-upstream must be defined")
	ErrFallbackUnsupported    = errors.New("fallback-upstream scheme must be either http:// or https://")
	ErrFallbackInvalidTimeout = errors.New("fallback-timeout must be greater than 0")
	ErrFallbackFileStatus     = errors.New("fallback-file-status must be a status code between 200 and 599 that allows a body")
	ErrResolveCacheSize       = errors.New("resolve-cache-size must be greater than 0 when the resolve cache is enabled")
	ErrTLSVersions            = errors.New("tls-max-version should be at least tls-min-version")
	ErrNegativeLimit          = errors.New("max-conns and max-uri-length can not be negative")
	ErrRateLimit              = errors.New("rate-limit-source-ip can not be negative and rate-limit-source-ip-burst must be greater than 0 when it is set")
)

// Validate returns every problem found in config, combined in a single error
func Validate(config *Config) error {
	var result *multierror.Error

	result = multierror.Append(result, validateListeners(config)...)
	result = multierror.Append(result, validateFallback(config.Fallback)...)
	result = multierror.Append(result, validateGeneral(config)...)

	return result.ErrorOrNil()
}

func validateListeners(config *Config) []error {
	var errs []error

	if config.ListenHTTPStrings.IsEmpty() &&
		config.ListenHTTPSStrings.IsEmpty() &&
		config.ListenProxyStrings.IsEmpty() &&
		config.ListenHTTPSProxyv2Strings.IsEmpty() {
		errs = append(errs, ErrNoListener)
	}

	servesTLS := !config.ListenHTTPSStrings.IsEmpty() || !config.ListenHTTPSProxyv2Strings.IsEmpty()
	if servesTLS && (len(config.General.RootCertificate) == 0 || len(config.General.RootKey) == 0) {
		errs = append(errs, ErrHTTPSNoCertificate)
	}

	if config.TLS.MaxVersion > 0 && config.TLS.MinVersion > config.TLS.MaxVersion {
		errs = append(errs, ErrTLSVersions)
	}

	return errs
}

func validateFallback(fallback Fallback) []error {
	if fallback.Upstream == "" {
		if fallback.File == "" {
			return []error{ErrNoFallback}
		}

		if !validFileStatus(fallback.FileStatus) {
			return []error{ErrFallbackFileStatus}
		}

		return nil
	}

	var errs []error

	u, err := url.Parse(fallback.Upstream)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// the raw URL may carry credentials
			err = urlErr.Err
		}

		errs = append(errs, fmt.Errorf("parsing fallback-upstream: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		// url.Parse ensures that the Scheme attribute is always lower case.
		errs = append(errs, ErrFallbackUnsupported)
	}

	if fallback.Timeout <= 0 {
		errs = append(errs, ErrFallbackInvalidTimeout)
	}

	return errs
}

// validFileStatus rejects codes that can not carry the document as body
func validFileStatus(code int) bool {
	if code == http.StatusNoContent || code == http.StatusResetContent || code == http.StatusNotModified {
		return false
	}

	return code >= http.StatusOK && code <= 599
}

func validateGeneral(config *Config) []error {
	var errs []error

	if config.General.RootDir == "" {
		errs = append(errs, ErrEmptyRootDir)
	}

	if config.General.MaxConns < 0 || config.General.MaxURILength < 0 {
		errs = append(errs, ErrNegativeLimit)
	}

	if config.RateLimit.SourceIPLimitPerSecond < 0 || (config.RateLimit.Enabled() && config.RateLimit.SourceIPBurst < 1) {
		errs = append(errs, ErrRateLimit)
	}

	if config.Cache.Enabled() && config.Cache.ResolveSize < 1 {
		errs = append(errs, ErrResolveCacheSize)
	}

	if len(config.General.CustomHeaders) > 0 {
		if _, err := customheaders.Parse(config.General.CustomHeaders); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}
