package customheaders

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"net/textproto"
	"strings"
)

// ErrInvalidHeader is returned by Parse for values that are not "Key: Value"
var ErrInvalidHeader = errors.New("invalid syntax specified as header parameter")

// Parse turns a list of "Key: Value" strings into a header map with
// canonical keys
func Parse(customHeaders []string) (http.Header, error) {
	headers := http.Header{}

	for _, keyValueString := range customHeaders {
		tp := textproto.NewReader(bufio.NewReader(strings.NewReader(strings.TrimSpace(keyValueString) + "\n\n")))
		keyValue, err := tp.ReadMIMEHeader()
		if err != nil || len(keyValue) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, keyValueString)
		}

		for k, v := range keyValue {
			k = textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(k))
			headers[k] = append(headers[k], v...)
		}
	}

	return headers, nil
}

// NewMiddleware returns middleware which inject custom headers into every
// response, static or not
func NewMiddleware(handler http.Handler, headers http.Header) http.Handler {
	if len(headers) == 0 {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range headers {
			for _, value := range v {
				w.Header().Add(k, value)
			}
		}

		handler.ServeHTTP(w, r)
	})
}
