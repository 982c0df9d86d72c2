package main

import (
	"net"
	"os"

	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/pages-fallback/internal/errortracking"
)

func fatal(err error, message string) {
	log.WithError(err).Fatal(message)
}

func capturingFatal(err error, message string, fields ...errortracking.Option) {
	errortracking.Capture(err, fields...)
	fatal(err, message)
}

// createSocket returns the listener together with a duplicate of its file
// descriptor, the latter is handed to the server
func createSocket(addr string) (net.Listener, *os.File) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(err, "could not create socket")
	}

	f, err := l.(*net.TCPListener).File()
	if err != nil {
		fatal(err, "could not obtain socket file descriptor")
	}

	return l, f
}
