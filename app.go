package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	labmetrics "gitlab.com/gitlab-org/labkit/metrics"
	"golang.org/x/sync/errgroup"

	"gitlab.com/gitlab-org/pages-fallback/internal/config"
	tlsconfig "gitlab.com/gitlab-org/pages-fallback/internal/config/tls"
	"gitlab.com/gitlab-org/pages-fallback/internal/customheaders"
	"gitlab.com/gitlab-org/pages-fallback/internal/fallback"
	"gitlab.com/gitlab-org/pages-fallback/internal/handlers"
	"gitlab.com/gitlab-org/pages-fallback/internal/healthcheck"
	"gitlab.com/gitlab-org/pages-fallback/internal/logging"
	"gitlab.com/gitlab-org/pages-fallback/internal/lru"
	"gitlab.com/gitlab-org/pages-fallback/internal/netutil"
	"gitlab.com/gitlab-org/pages-fallback/internal/ratelimiter"
	"gitlab.com/gitlab-org/pages-fallback/internal/rejectmethods"
	"gitlab.com/gitlab-org/pages-fallback/internal/request"
	"gitlab.com/gitlab-org/pages-fallback/internal/resolver"
	"gitlab.com/gitlab-org/pages-fallback/internal/router"
	"gitlab.com/gitlab-org/pages-fallback/internal/serving/disk"
	"gitlab.com/gitlab-org/pages-fallback/internal/urilimiter"
	"gitlab.com/gitlab-org/pages-fallback/metrics"
)

const (
	xForwardedProto      = "X-Forwarded-Proto"
	xForwardedProtoHTTPS = "https"

	resolveCacheOp = "resolve"
)

// registered once, the factory creates its collectors on the default registry
var metricsMiddleware = labmetrics.NewHandlerFactory(labmetrics.WithNamespace("pages_fallback"))

type theApp struct {
	config      *config.Config
	resolver    *resolver.Resolver
	cache       *lru.Cache
	rateLimiter *ratelimiter.RateLimiter
	handler     http.Handler
	stopOnce    sync.Once
}

func newApp(cfg *config.Config) (*theApp, error) {
	a := &theApp{config: cfg}

	var opts []resolver.Option
	if cfg.Cache.Enabled() {
		a.cache = lru.New(
			resolveCacheOp,
			cfg.Cache.ResolveSize,
			cfg.Cache.ResolveExpiry,
			metrics.ResolveCachedEntries,
			metrics.ResolveCacheRequests,
		)
		opts = append(opts, resolver.WithCache(a.cache))
	}

	if cfg.RateLimit.Enabled() {
		a.rateLimiter = ratelimiter.New(cfg.RateLimit.SourceIPLimitPerSecond, cfg.RateLimit.SourceIPBurst)
	}

	res, err := resolver.New(cfg.General.RootDir, opts...)
	if err != nil {
		a.stop()
		return nil, err
	}
	a.resolver = res

	reader := disk.New(cfg.General.CacheMaxAge, metrics.ServedFileSize)

	fallbackHandler, err := a.buildFallback(reader)
	if err != nil {
		a.stop()
		return nil, err
	}

	static := handlers.WithMiddlewares(
		reader,
		handlers.CorsMiddleware(cfg.General.DisableCrossOriginRequests),
		handlers.CompressMiddleware(cfg.General.Compress),
	)

	a.handler, err = a.buildHandlerPipeline(handlers.NewStaticOrFallback(res, static, fallbackHandler))
	if err != nil {
		a.stop()
		return nil, err
	}

	return a, nil
}

func (a *theApp) buildFallback(reader *disk.Reader) (http.Handler, error) {
	if a.config.Fallback.Upstream != "" {
		proxy, err := fallback.NewProxy(a.config.Fallback.Upstream, a.config.Fallback.Timeout)
		if err != nil {
			return nil, err
		}

		log.WithField("upstream", proxy.Upstream()).Info("proxying requests without a static file")

		return proxy, nil
	}

	file, err := fallback.NewFile(a.resolver, a.config.Fallback.File, a.config.Fallback.FileStatus, reader)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"fallback_file":        file.Path(),
		"fallback_file_status": a.config.Fallback.FileStatus,
	}).Info("serving a single document for requests without a static file")

	return file, nil
}

// buildHandlerPipeline returns the handler serving every listener. The
// request passes the middlewares from top to bottom before it reaches
// dispatcher.
func (a *theApp) buildHandlerPipeline(dispatcher http.Handler) (http.Handler, error) {
	customHeaders, err := customheaders.Parse(a.config.General.CustomHeaders)
	if err != nil {
		return nil, err
	}

	accessLogger := func(handler http.Handler) http.Handler {
		logged, logErr := logging.BasicAccessLogger(handler, a.config.Log.Format)
		if logErr != nil {
			err = logErr
			return handler
		}

		return logged
	}

	correlationOpts := []correlation.InboundHandlerOption{correlation.WithSetResponseHeader()}
	if a.config.General.PropagateCorrelationID {
		correlationOpts = append(correlationOpts, correlation.WithPropagation())
	}

	r := router.NewRouter(
		dispatcher,
		ghandlers.RecoveryHandler(ghandlers.RecoveryLogger(log.StandardLogger()), ghandlers.PrintRecoveryStack(true)),
		func(handler http.Handler) http.Handler {
			return correlation.InjectCorrelationID(handler, correlationOpts...)
		},
		resolutionSlot,
		accessLogger,
		func(handler http.Handler) http.Handler {
			return metricsMiddleware(handler)
		},
		rejectmethods.NewMiddleware,
		func(handler http.Handler) http.Handler {
			return urilimiter.NewMiddleware(handler, a.config.General.MaxURILength)
		},
		func(handler http.Handler) http.Handler {
			return healthcheck.NewMiddleware(handler, a.config.General.StatusPath, a.checkRoot)
		},
		a.rateLimitMiddleware(),
		func(handler http.Handler) http.Handler {
			return handlers.HTTPSRedirectMiddleware(handler, a.config.General.RedirectHTTP)
		},
		func(handler http.Handler) http.Handler {
			return customheaders.NewMiddleware(handler, customHeaders)
		},
	)

	if err != nil {
		return nil, err
	}

	return r, nil
}

// rateLimitMiddleware is nil, and skipped by the router, unless rate
// limiting is enabled
func (a *theApp) rateLimitMiddleware() router.Middleware {
	if a.rateLimiter == nil {
		return nil
	}

	return a.rateLimiter.Middleware
}

func resolutionSlot(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, request.WithResolutionSlot(r))
	})
}

// checkRoot reports whether the root directory can still be served from
func (a *theApp) checkRoot() error {
	fi, err := os.Stat(a.resolver.Root())
	if err != nil {
		return err
	}

	if !fi.IsDir() {
		return fmt.Errorf("%q is not a directory", a.resolver.Root())
	}

	return nil
}

func (a *theApp) httpHandler(https bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.handler.ServeHTTP(w, request.WithHTTPSFlag(r, https))
	})
}

// proxyHandler trusts the scheme and client address reported by the load
// balancer in front
func (a *theApp) proxyHandler() http.Handler {
	return ghandlers.ProxyHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		https := strings.EqualFold(r.Header.Get(xForwardedProto), xForwardedProtoHTTPS)
		a.handler.ServeHTTP(w, request.WithHTTPSFlag(r, https))
	}))
}

func (a *theApp) tlsConfig() (*tls.Config, error) {
	return tlsconfig.Create(tlsconfig.Options{
		Certificate:     a.config.General.RootCertificate,
		Key:             a.config.General.RootKey,
		InsecureCiphers: a.config.General.InsecureCiphers,
		MinVersion:      a.config.TLS.MinVersion,
		MaxVersion:      a.config.TLS.MaxVersion,
	})
}

type boundServer struct {
	name     string
	server   *http.Server
	listener net.Listener
}

func (a *theApp) listeners(limiter *netutil.Limiter) ([]boundServer, error) {
	var tlsConfig *tls.Config
	if len(a.config.Listeners.HTTPS) > 0 || len(a.config.Listeners.HTTPSProxyv2) > 0 {
		var err error
		if tlsConfig, err = a.tlsConfig(); err != nil {
			return nil, err
		}
	}

	groups := []struct {
		name    string
		fds     []uintptr
		handler http.Handler
		lc      listenerConfig
	}{
		{name: "http", fds: a.config.Listeners.HTTP, handler: a.httpHandler(false), lc: listenerConfig{limiter: limiter}},
		{name: "https", fds: a.config.Listeners.HTTPS, handler: a.httpHandler(true), lc: listenerConfig{limiter: limiter, tlsConfig: tlsConfig}},
		{name: "proxy", fds: a.config.Listeners.Proxy, handler: a.proxyHandler(), lc: listenerConfig{limiter: limiter}},
		{name: "https-proxyv2", fds: a.config.Listeners.HTTPSProxyv2, handler: a.httpHandler(true), lc: listenerConfig{limiter: limiter, tlsConfig: tlsConfig, isProxyV2: true}},
	}

	var servers []boundServer

	for _, group := range groups {
		for _, fd := range group.fds {
			server, err := newServer(group.handler, group.lc.tlsConfig, a.config.Server)
			if err != nil {
				return nil, err
			}

			l, err := fdListener(fd, a.config.Server.ListenKeepAlive, group.lc)
			if err != nil {
				return nil, err
			}

			servers = append(servers, boundServer{name: group.name, server: server, listener: l})
		}
	}

	if a.config.Listeners.Metrics != nil {
		l, err := fdListener(*a.config.Listeners.Metrics, 0, listenerConfig{})
		if err != nil {
			return nil, err
		}

		server, err := newServer(a.metricsHandler(), nil, a.config.Server)
		if err != nil {
			return nil, err
		}

		servers = append(servers, boundServer{name: "metrics", server: server, listener: l})
	}

	return servers, nil
}

func (a *theApp) metricsHandler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.Handle("/-/readiness", healthcheck.Handler(a.checkRoot)).Methods(http.MethodGet)

	return r
}

// Run serves every listener until ctx is cancelled or one of them fails,
// then shuts all servers down gracefully
func (a *theApp) Run(ctx context.Context) error {
	defer a.stop()

	limiter := netutil.NewLimiter(
		a.config.General.MaxConns,
		metrics.LimitListenerMaxConns,
		metrics.LimitListenerConcurrentConns,
		metrics.LimitListenerWaitingConns,
	)

	servers, err := a.listeners(limiter)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, s := range servers {
		s := s
		g.Go(func() error {
			log.WithField("listener", s.name).WithField("address", s.listener.Addr().String()).Info("serving requests")

			if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s listener: %w", s.name, err)
			}

			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		log.Info("shutting down servers")

		var shutdownErr error
		for _, s := range servers {
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).WithField("listener", s.name).Error("graceful shutdown failed")
				shutdownErr = err
			}
		}

		return shutdownErr
	})

	return g.Wait()
}

func (a *theApp) stop() {
	a.stopOnce.Do(func() {
		if a.cache != nil {
			a.cache.Stop()
		}

		if a.rateLimiter != nil {
			a.rateLimiter.Stop()
		}
	})
}

func runApp(cfg *config.Config) {
	a, err := newApp(cfg)
	if err != nil {
		var cfgErr *resolver.ConfigurationError
		if errors.As(err, &cfgErr) {
			fatal(err, "invalid root directory")
		}

		capturingFatal(err, "could not initialize the server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		capturingFatal(err, "server failed")
	}
}
