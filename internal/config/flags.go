package config

import (
	"net/http"
	"time"

	"github.com/namsral/flag"

	"gitlab.com/gitlab-org/pages-fallback/internal/config/tls"
)

var (
	rootDir            = flag.String("root-dir", "public", "The directory static files are served from")
	fallbackFile       = flag.String("fallback-file", "index.html", "The document, relative to root-dir, served for every request that does not match a static file")
	fallbackFileStatus = flag.Int("fallback-file-status", http.StatusOK, "Status code the fallback-file is served with. Only 200 supports conditional and range requests")
	fallbackURL        = flag.String("fallback-upstream", "", "URL of a front controller application every request that does not match a static file is proxied to, e.g.: 'http://127.0.0.1:9000'. Takes precedence over fallback-file")
	fallbackTime       = flag.Duration("fallback-timeout", 30*time.Second, "Timeout for connecting to the fallback upstream and receiving its response headers")

	rootCert      = flag.String("root-cert", "", "The path to the certificate file used by the HTTPS listeners")
	rootKey       = flag.String("root-key", "", "The path to the key file used by the HTTPS listeners")
	redirectHTTP  = flag.Bool("redirect-http", false, "Redirect requests from HTTP to HTTPS")
	statusPath    = flag.String("status-path", "", "The url path for a status page, e.g., /@status")
	cacheMaxAge   = flag.Duration("cache-control", 0, "How long clients may cache static files before revalidating them, 0 to always revalidate")
	compress      = flag.Bool("compress", false, "Compress responses with gzip or deflate when the client accepts it")
	maxConns      = flag.Int("max-conns", 0, "Limit on the number of concurrent connections to the HTTP, HTTPS or proxy listeners, 0 for no limit")
	maxURILength  = flag.Int("max-uri-length", 2048, "Limit the length of URI, 0 for unlimited.")
	resolveExpiry = flag.Duration("resolve-cache-expiry", 0, "How long the resolution of a request path is cached, 0 disables the cache")
	resolveSize   = flag.Int64("resolve-cache-size", 10000, "The maximum number of cached resolutions")

	rateLimitSourceIP      = flag.Float64("rate-limit-source-ip", 0.0, "Rate limit HTTP requests per second from a single IP, 0 disables the limit")
	rateLimitSourceIPBurst = flag.Int("rate-limit-source-ip-burst", 100, "Rate limit HTTP requests from a single IP, maximum burst allowed per second")

	metricsAddress         = flag.String("metrics-address", "", "The address to listen on for metrics requests")
	sentryDSN              = flag.String("sentry-dsn", "", "The address for sending sentry crash reporting to")
	sentryEnvironment      = flag.String("sentry-environment", "", "The environment for sentry crash reporting")
	propagateCorrelationID = flag.Bool("propagate-correlation-id", false, "Reuse existing Correlation-ID from the incoming request header `X-Request-ID` if present")
	logFormat              = flag.String("log-format", "json", "The log output format: 'text' or 'json'")
	logVerbose             = flag.Bool("log-verbose", false, "Verbose logging")

	insecureCiphers = flag.Bool("insecure-ciphers", false, "Use default list of cipher suites, may contain insecure ones like 3DES and RC4")
	tlsMinVersion   = flag.String("tls-min-version", "tls1.2", tls.FlagUsage("min"))
	tlsMaxVersion   = flag.String("tls-max-version", "", tls.FlagUsage("max"))

	// HTTP server timeouts
	serverReadTimeout       = flag.Duration("server-read-timeout", 5*time.Second, "ReadTimeout is the maximum duration for reading the entire request, including the body. A zero or negative value means there will be no timeout.")
	serverReadHeaderTimeout = flag.Duration("server-read-header-timeout", time.Second, "ReadHeaderTimeout is the amount of time allowed to read request headers. A zero or negative value means there will be no timeout.")
	serverWriteTimeout      = flag.Duration("server-write-timeout", 0, "WriteTimeout is the maximum duration before timing out writes of the response. A zero or negative value means there will be no timeout.")
	serverKeepAlive         = flag.Duration("server-keep-alive", 15*time.Second, "KeepAlive specifies the keep-alive period for network connections accepted by this listener. If zero, keep-alives are enabled if supported by the protocol and operating system. If negative, keep-alives are disabled.")
	serverShutdownTimeout   = flag.Duration("server-shutdown-timeout", 30*time.Second, "Server shutdown timeout")

	disableCrossOriginRequests = flag.Bool("disable-cross-origin-requests", false, "Disable cross-origin requests")

	showVersion = flag.Bool("version", false, "Show version")

	// See initFlags()
	listenHTTP         = newListFlag(",")
	listenHTTPS        = newListFlag(",")
	listenProxy        = newListFlag(",")
	listenHTTPSProxyv2 = newListFlag(",")

	header = newListFlag(";;")
)

// initFlags will be called from LoadConfig
func initFlags() {
	flag.Var(&listenHTTP, "listen-http", "The address(es) to listen on for HTTP requests")
	flag.Var(&listenHTTPS, "listen-https", "The address(es) to listen on for HTTPS requests")
	flag.Var(&listenProxy, "listen-proxy", "The address(es) to listen on for proxy requests")
	flag.Var(&listenHTTPSProxyv2, "listen-https-proxyv2", "The address(es) to listen on for HTTPS PROXYv2 requests (https://www.haproxy.org/download/1.8/doc/proxy-protocol.txt)")
	flag.Var(&header, "header", "The additional http header(s) that should be send to the client, separated by ';;'")

	// read from -config=/path/to/pages-fallback-config
	flag.String(flag.DefaultConfigFlagname, "", "path to config file")

	flag.Parse()
}
