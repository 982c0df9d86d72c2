package httptransport

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// certFileEnv is the environment variable which identifies where to locate
// an additional SSL certificate file
const certFileEnv = "SSL_CERT_FILE"

var (
	sysPoolOnce = &sync.Once{}
	sysPool     *x509.CertPool
)

// NewTransport returns an http.Transport used to reach the fallback upstream.
// dialTimeout bounds establishing the connection and the TLS handshake.
func NewTransport(dialTimeout time.Duration) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		DialContext:     dialer.DialContext,
		TLSClientConfig: &tls.Config{RootCAs: pool()},
		Proxy:           http.ProxyFromEnvironment,
		// overrides the DefaultMaxIdleConnsPerHost = 2
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   dialTimeout,
		ExpectContinueTimeout: time.Second,
	}
}

// This is here because macOS does not support the SSL_CERT_FILE
// environment variable. It is read as late as possible so that it never
// conflicts with file descriptor passing at startup.
func pool() *x509.CertPool {
	sysPoolOnce.Do(loadPool)
	return sysPool
}

func loadPool() {
	var err error

	sysPool, err = x509.SystemCertPool()
	if err != nil {
		log.WithError(err).Error("failed to load system cert pool for http client")
		sysPool = x509.NewCertPool()
	}

	sslCertFile := os.Getenv(certFileEnv)
	if sslCertFile == "" {
		return
	}

	certPem, err := os.ReadFile(sslCertFile)
	if err != nil {
		log.WithError(err).Error("failed to read SSL_CERT_FILE")
		return
	}

	if !sysPool.AppendCertsFromPEM(certPem) {
		log.WithField("path", sslCertFile).Warn("no certificates appended from SSL_CERT_FILE")
	}
}
