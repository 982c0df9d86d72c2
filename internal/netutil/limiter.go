package netutil

import (
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Limiter bounds the number of open connections across every listener it
// wraps
type Limiter struct {
	slots   chan struct{}
	active  prometheus.Gauge
	waiting prometheus.Gauge
}

// NewLimiter creates a Limiter allowing n concurrent connections.
// It returns nil for n <= 0, meaning no limit.
func NewLimiter(n int, maxConns, activeConns, waitingConns prometheus.Gauge) *Limiter {
	if n <= 0 {
		return nil
	}

	maxConns.Set(float64(n))

	return &Limiter{
		slots:   make(chan struct{}, n),
		active:  activeConns,
		waiting: waitingConns,
	}
}

// Listen returns a listener whose Accept blocks while every slot is taken.
// A slot is given back when the accepted connection is closed. A nil Limiter
// returns l unchanged.
func (lim *Limiter) Listen(l net.Listener) net.Listener {
	if lim == nil {
		return l
	}

	return &limitedListener{Listener: l, limiter: lim, closed: make(chan struct{})}
}

// take blocks until a slot is free or closed is closed
func (lim *Limiter) take(closed <-chan struct{}) bool {
	lim.waiting.Inc()
	defer lim.waiting.Dec()

	select {
	case lim.slots <- struct{}{}:
		lim.active.Inc()
		return true
	case <-closed:
		return false
	}
}

func (lim *Limiter) give() {
	<-lim.slots
	lim.active.Dec()
}

type limitedListener struct {
	net.Listener
	limiter   *Limiter
	closed    chan struct{}
	closeOnce sync.Once
}

func (l *limitedListener) Accept() (net.Conn, error) {
	took := l.limiter.take(l.closed)

	// after Close this returns the listener's own error
	conn, err := l.Listener.Accept()
	if err != nil {
		if took {
			l.limiter.give()
		}

		return nil, err
	}

	return &limitedConn{Conn: conn, give: l.limiter.give}, nil
}

func (l *limitedListener) Close() error {
	err := l.Listener.Close()
	l.closeOnce.Do(func() { close(l.closed) })

	return err
}

type limitedConn struct {
	net.Conn
	once sync.Once
	give func()
}

func (c *limitedConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(c.give)

	return err
}
