package netutil

import (
	"net"
	"time"
)

// KeepAlive enables TCP keep-alives with period on every connection accepted
// from l. A period of 0 or less returns l unchanged.
func KeepAlive(l net.Listener, period time.Duration) net.Listener {
	if period <= 0 {
		return l
	}

	return &keepAliveListener{Listener: l, period: period}
}

type keepAliveListener struct {
	net.Listener
	period time.Duration
}

func (l *keepAliveListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		// best effort, a failure leaves the system defaults
		_ = tcpConn.SetKeepAlive(true)
		_ = tcpConn.SetKeepAlivePeriod(l.period)
	}

	return conn, nil
}
