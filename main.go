package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/pages-fallback/internal/config"
	"gitlab.com/gitlab-org/pages-fallback/internal/errortracking"
	"gitlab.com/gitlab-org/pages-fallback/internal/logging"
	"gitlab.com/gitlab-org/pages-fallback/internal/validateargs"
	"gitlab.com/gitlab-org/pages-fallback/metrics"
)

// VERSION stores the information about the semantic version of application
var VERSION = "dev"

// REVISION stores the information about the git revision of application
var REVISION = "HEAD"

func initErrorReporting(sentryDSN, sentryEnvironment string) error {
	return errortracking.Initialize(sentryDSN, sentryEnvironment, fmt.Sprintf("%s-%s", VERSION, REVISION))
}

func appMain() {
	if err := validateargs.Sensitive(os.Args[1:]); err != nil {
		log.WithError(err).Warn("Using sensitive arguments, use -config=pages-fallback-config file instead")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	printVersion(cfg.General.ShowVersion, VERSION)

	if err := logging.ConfigureLogging(cfg.Log.Format, cfg.Log.Verbose); err != nil {
		log.WithError(err).Fatal("Failed to initialize logging")
	}

	if cfg.Sentry.DSN != "" {
		if err := initErrorReporting(cfg.Sentry.DSN, cfg.Sentry.Environment); err != nil {
			log.WithError(err).Error("Failed to initialize error reporting")
		}
	}

	log.WithFields(log.Fields{
		"version":  VERSION,
		"revision": REVISION,
	}).Print("Static file server with fallback")

	config.LogConfig(cfg)

	if err := loadMIMETypes(); err != nil {
		log.WithError(err).Warn("Failed to load extra MIME types")
	}

	metrics.MustRegister()

	for _, cs := range [][]io.Closer{
		createAppListeners(cfg),
		createMetricsListener(cfg),
	} {
		defer closeAll(cs)
	}

	runApp(cfg)
}

func closeAll(cs []io.Closer) {
	for _, c := range cs {
		if err := c.Close(); err != nil {
			log.WithError(err).Debug("closing listener")
		}
	}
}

// createAppListeners returns net.Listener and *os.File instances. The
// caller must ensure they don't get closed or garbage-collected (which
// implies closing) too soon.
func createAppListeners(cfg *config.Config) []io.Closer {
	var closers []io.Closer

	for _, spec := range []struct {
		name  string
		addrs []string
		fds   *[]uintptr
	}{
		{"HTTP", cfg.ListenHTTPStrings.Values(), &cfg.Listeners.HTTP},
		{"HTTPS", cfg.ListenHTTPSStrings.Values(), &cfg.Listeners.HTTPS},
		{"proxy", cfg.ListenProxyStrings.Values(), &cfg.Listeners.Proxy},
		{"HTTPS PROXYv2", cfg.ListenHTTPSProxyv2Strings.Values(), &cfg.Listeners.HTTPSProxyv2},
	} {
		for _, addr := range spec.addrs {
			l, f := createSocket(addr)
			closers = append(closers, l, f)

			log.WithFields(log.Fields{
				"listener": addr,
			}).Debugf("Set up %s listener", spec.name)

			*spec.fds = append(*spec.fds, f.Fd())
		}
	}

	return closers
}

// createMetricsListener returns net.Listener and *os.File instances. The
// caller must ensure they don't get closed or garbage-collected (which
// implies closing) too soon.
func createMetricsListener(cfg *config.Config) []io.Closer {
	addr := cfg.General.MetricsAddress
	if addr == "" {
		return nil
	}

	l, f := createSocket(addr)
	fd := f.Fd()
	cfg.Listeners.Metrics = &fd

	log.WithFields(log.Fields{
		"listener": addr,
	}).Debug("Set up metrics listener")

	return []io.Closer{l, f}
}

func printVersion(showVersion bool, version string) {
	if showVersion {
		fmt.Fprintf(os.Stdout, "%s\n", version)
		os.Exit(0)
	}
}

func main() {
	log.SetOutput(os.Stderr)

	appMain()
}
