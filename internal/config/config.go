package config

import (
	"os"
	"time"

	"github.com/namsral/flag"
	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/pages-fallback/internal/config/tls"
	"gitlab.com/gitlab-org/pages-fallback/internal/logging"
)

// Config stores all the config options of the server
type Config struct {
	General   General
	Fallback  Fallback
	Cache     Cache
	RateLimit RateLimit
	Listeners Listeners
	Log       Log
	Sentry    Sentry
	Server    Server
	TLS       TLS

	// These fields contain the raw strings passed for listen-http,
	// listen-https, listen-proxy and listen-https-proxyv2 settings. They are
	// used by appMain() to create listeners, whose file descriptors get
	// assigned to Config.Listeners.* fields
	ListenHTTPStrings         ListFlag
	ListenHTTPSStrings        ListFlag
	ListenProxyStrings        ListFlag
	ListenHTTPSProxyv2Strings ListFlag
}

// General groups settings that can not be categorized under another head
type General struct {
	RootDir         string
	RootCertificate []byte
	RootKey         []byte
	StatusPath      string
	MetricsAddress  string
	RedirectHTTP    bool
	CacheMaxAge     time.Duration
	Compress        bool
	MaxConns        int
	MaxURILength    int

	DisableCrossOriginRequests bool
	InsecureCiphers            bool
	PropagateCorrelationID     bool

	ShowVersion bool

	CustomHeaders []string
}

// Fallback groups settings of the handler taking every request that does not
// match a static file. Upstream takes precedence over File.
type Fallback struct {
	File       string
	FileStatus int
	Upstream   string
	Timeout    time.Duration
}

// Cache groups settings of the resolution cache
type Cache struct {
	ResolveExpiry time.Duration
	ResolveSize   int64
}

// Enabled reports whether resolutions should be cached at all
func (c Cache) Enabled() bool {
	return c.ResolveExpiry > 0
}

// RateLimit groups settings of the per client request rate limit
type RateLimit struct {
	SourceIPLimitPerSecond float64
	SourceIPBurst          int
}

// Enabled reports whether requests should be rate limited at all
func (r RateLimit) Enabled() bool {
	return r.SourceIPLimitPerSecond > 0
}

// Listeners groups the file descriptors of the sockets created by appMain
type Listeners struct {
	HTTP         []uintptr
	HTTPS        []uintptr
	Proxy        []uintptr
	HTTPSProxyv2 []uintptr

	// Metrics is nil unless metrics-address is set
	Metrics *uintptr
}

// Log groups settings related to configuring logging
type Log struct {
	Format  string
	Verbose bool
}

// Sentry groups settings related to configuring Sentry
type Sentry struct {
	DSN         string
	Environment string
}

// Server groups settings of the http.Server serving the listeners
type Server struct {
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	ListenKeepAlive   time.Duration
	ShutdownTimeout   time.Duration
}

// TLS groups settings related to configuring TLS
type TLS struct {
	MinVersion uint16
	MaxVersion uint16
}

func loadConfig() (*Config, error) {
	tlsMin, tlsMax, err := tls.ParseVersionRange(*tlsMinVersion, *tlsMaxVersion)
	if err != nil {
		return nil, err
	}

	config := &Config{
		General: General{
			RootDir:                    *rootDir,
			StatusPath:                 *statusPath,
			MetricsAddress:             *metricsAddress,
			RedirectHTTP:               *redirectHTTP,
			CacheMaxAge:                *cacheMaxAge,
			Compress:                   *compress,
			MaxConns:                   *maxConns,
			MaxURILength:               *maxURILength,
			DisableCrossOriginRequests: *disableCrossOriginRequests,
			InsecureCiphers:            *insecureCiphers,
			PropagateCorrelationID:     *propagateCorrelationID,
			CustomHeaders:              header.Values(),
			ShowVersion:                *showVersion,
		},
		Fallback: Fallback{
			File:       *fallbackFile,
			FileStatus: *fallbackFileStatus,
			Upstream:   *fallbackURL,
			Timeout:    *fallbackTime,
		},
		Cache: Cache{
			ResolveExpiry: *resolveExpiry,
			ResolveSize:   *resolveSize,
		},
		RateLimit: RateLimit{
			SourceIPLimitPerSecond: *rateLimitSourceIP,
			SourceIPBurst:          *rateLimitSourceIPBurst,
		},
		Log: Log{
			Format:  *logFormat,
			Verbose: *logVerbose,
		},
		Sentry: Sentry{
			DSN:         *sentryDSN,
			Environment: *sentryEnvironment,
		},
		Server: Server{
			ReadTimeout:       *serverReadTimeout,
			ReadHeaderTimeout: *serverReadHeaderTimeout,
			WriteTimeout:      *serverWriteTimeout,
			ListenKeepAlive:   *serverKeepAlive,
			ShutdownTimeout:   *serverShutdownTimeout,
		},
		TLS: TLS{
			MinVersion: tlsMin,
			MaxVersion: tlsMax,
		},

		// Actual listener file descriptors will be populated in appMain. We
		// populate the raw strings here so that they are available in appMain
		ListenHTTPStrings:         listenHTTP,
		ListenHTTPSStrings:        listenHTTPS,
		ListenProxyStrings:        listenProxy,
		ListenHTTPSProxyv2Strings: listenHTTPSProxyv2,
	}

	// -version needs nothing else to be valid
	if config.General.ShowVersion {
		return config, nil
	}

	if err := loadCertificates(&config.General, *rootCert, *rootKey); err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

func loadCertificates(general *General, certPath, keyPath string) error {
	for _, file := range []struct {
		contents *[]byte
		path     string
	}{
		{&general.RootCertificate, certPath},
		{&general.RootKey, keyPath},
	} {
		if file.path == "" {
			continue
		}

		contents, err := os.ReadFile(file.path)
		if err != nil {
			return err
		}

		*file.contents = contents
	}

	return nil
}

// LogConfig prints the effective configuration at debug level
func LogConfig(config *Config) {
	log.WithFields(log.Fields{
		"cache-control":                 config.General.CacheMaxAge,
		"compress":                      config.General.Compress,
		"default-config-filename":       flag.DefaultConfigFlagname,
		"disable-cross-origin-requests": config.General.DisableCrossOriginRequests,
		"fallback-file":                 config.Fallback.File,
		"fallback-file-status":          config.Fallback.FileStatus,
		"fallback-upstream":             logging.CleanURL(config.Fallback.Upstream),
		"fallback-timeout":              config.Fallback.Timeout,
		"header":                        config.General.CustomHeaders,
		"insecure-ciphers":              config.General.InsecureCiphers,
		"listen-http":                   config.ListenHTTPStrings.Values(),
		"listen-https":                  config.ListenHTTPSStrings.Values(),
		"listen-proxy":                  config.ListenProxyStrings.Values(),
		"listen-https-proxyv2":          config.ListenHTTPSProxyv2Strings.Values(),
		"log-format":                    config.Log.Format,
		"max-conns":                     config.General.MaxConns,
		"max-uri-length":                config.General.MaxURILength,
		"metrics-address":               config.General.MetricsAddress,
		"propagate-correlation-id":      config.General.PropagateCorrelationID,
		"rate-limit-source-ip":          config.RateLimit.SourceIPLimitPerSecond,
		"rate-limit-source-ip-burst":    config.RateLimit.SourceIPBurst,
		"redirect-http":                 config.General.RedirectHTTP,
		"resolve-cache-expiry":          config.Cache.ResolveExpiry,
		"resolve-cache-size":            config.Cache.ResolveSize,
		"root-cert":                     *rootCert,
		"root-dir":                      config.General.RootDir,
		"root-key":                      *rootKey,
		"server-shutdown-timeout":       config.Server.ShutdownTimeout,
		"status-path":                   config.General.StatusPath,
		"tls-min-version":               *tlsMinVersion,
		"tls-max-version":               *tlsMaxVersion,
	}).Debug("Start server with configuration")
}

// LoadConfig parses configuration settings passed as command line arguments or
// via config file, and populates a Config object with those values
func LoadConfig() (*Config, error) {
	initFlags()

	return loadConfig()
}
