package httptransport

import (
	"fmt"
	"io"
	"time"
)

// TimeoutError is returned when the upstream did not send response headers
// in time
type TimeoutError struct {
	Name  string
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no response within %s: %v", e.Name, e.After, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Timeout implements net.Error
func (e *TimeoutError) Timeout() bool {
	return true
}

// Temporary implements net.Error
func (e *TimeoutError) Temporary() bool {
	return true
}

type cancelOnClose struct {
	io.ReadCloser
	cancel func()
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()

	return err
}
