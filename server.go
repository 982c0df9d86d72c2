package main

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	proxyproto "github.com/pires/go-proxyproto"
	"golang.org/x/net/http2"

	"gitlab.com/gitlab-org/pages-fallback/internal/config"
	"gitlab.com/gitlab-org/pages-fallback/internal/netutil"
)

type listenerConfig struct {
	isProxyV2 bool
	tlsConfig *tls.Config
	limiter   *netutil.Limiter
}

// newServer returns an http.Server for handler. HTTP/2 is always enabled,
// over TLS it is negotiated with ALPN.
func newServer(handler http.Handler, tlsConfig *tls.Config, cfg config.Server) (*http.Server, error) {
	server := &http.Server{
		Handler:           handler,
		TLSConfig:         tlsConfig,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	if err := http2.ConfigureServer(server, &http2.Server{}); err != nil {
		return nil, err
	}

	return server, nil
}

// fdListener wraps the socket behind fd with the keep-alive settings, the
// connection limit, PROXY protocol and TLS, in that order
func fdListener(fd uintptr, keepAlive time.Duration, lc listenerConfig) (net.Listener, error) {
	l, err := net.FileListener(os.NewFile(fd, "[socket]"))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on FD %d: %w", fd, err)
	}

	l = lc.limiter.Listen(netutil.KeepAlive(l, keepAlive))

	if lc.isProxyV2 {
		l = &proxyproto.Listener{
			Listener: l,
			Policy: func(upstream net.Addr) (proxyproto.Policy, error) {
				return proxyproto.REQUIRE, nil
			},
		}
	}

	if lc.tlsConfig != nil {
		l = tls.NewListener(l, lc.tlsConfig)
	}

	return l, nil
}
