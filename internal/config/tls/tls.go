// Package tls builds the server side TLS configuration for the HTTPS
// listeners.
package tls

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingKeyPair is returned when only one of certificate and key is set
var ErrMissingKeyPair = errors.New("both a certificate and a key are required")

// cipherSuites used for TLS 1.2 unless insecure ciphers are allowed
var cipherSuites = []uint16{
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
}

// versions accepted by -tls-min-version and -tls-max-version, oldest first
var versions = []struct {
	name    string
	version uint16
}{
	{"tls1.2", tls.VersionTLS12},
	{"tls1.3", tls.VersionTLS13},
}

// Options of a server side TLS configuration. Zero versions leave the
// crypto/tls defaults in place.
type Options struct {
	Certificate     []byte
	Key             []byte
	InsecureCiphers bool
	MinVersion      uint16
	MaxVersion      uint16
}

// FlagUsage describes the values of the -tls-<bound>-version flag
func FlagUsage(bound string) string {
	names := make([]string, 0, len(versions))
	for _, v := range versions {
		names = append(names, fmt.Sprintf("%q", v.name))
	}

	return fmt.Sprintf("Specifies the %simum SSL/TLS version, supported values are %s", bound, strings.Join(names, ", "))
}

// ParseVersion returns the version named name. The empty name is the zero
// version.
func ParseVersion(name string) (uint16, bool) {
	if name == "" {
		return 0, true
	}

	for _, v := range versions {
		if v.name == name {
			return v.version, true
		}
	}

	return 0, false
}

// ParseVersionRange parses the flag values of both bounds and checks that
// they form a range
func ParseVersionRange(min, max string) (uint16, uint16, error) {
	minVersion, ok := ParseVersion(min)
	if !ok {
		return 0, 0, fmt.Errorf("invalid minimum TLS version: %s", min)
	}

	maxVersion, ok := ParseVersion(max)
	if !ok {
		return 0, 0, fmt.Errorf("invalid maximum TLS version: %s", max)
	}

	if maxVersion != 0 && minVersion > maxVersion {
		return 0, 0, fmt.Errorf("invalid maximum TLS version: %s; should be at least %s", max, min)
	}

	return minVersion, maxVersion, nil
}

// Create returns a tls.Config serving the PEM encoded key pair of opts
func Create(opts Options) (*tls.Config, error) {
	if len(opts.Certificate) == 0 || len(opts.Key) == 0 {
		return nil, ErrMissingKeyPair
	}

	certificate, err := tls.X509KeyPair(opts.Certificate, opts.Key)
	if err != nil {
		return nil, err
	}

	config := &tls.Config{
		Certificates: []tls.Certificate{certificate},
		MinVersion:   opts.MinVersion,
		MaxVersion:   opts.MaxVersion,
	}

	// TLS 1.3 suites are not configurable and always enabled
	if !opts.InsecureCiphers {
		config.PreferServerCipherSuites = true
		config.CipherSuites = cipherSuites
	}

	return config, nil
}
