package testhelpers

import (
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// AssertHTMLError serves a request to handler and checks that it is answered
// with one of the HTML error pages
func AssertHTMLError(t *testing.T, handler http.Handler, method, url string, status int, contains string) {
	t.Helper()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(method, url, nil))

	require.Equal(t, status, w.Code, "HTTP status")

	contentType, _, err := mime.ParseMediaType(w.Header().Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "text/html", contentType, "Content-Type")
	require.Contains(t, w.Body.String(), contains)
}

// LogHook captures the entries of the standard logger at level or above until
// the test finishes
func LogHook(t *testing.T, level logrus.Level) *test.Hook {
	t.Helper()

	previous := logrus.GetLevel()
	logrus.SetLevel(level)

	hook := test.NewGlobal()
	t.Cleanup(func() {
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
		logrus.SetLevel(previous)
	})

	return hook
}

// AssertLogContains checks that one of the captured entries has message
func AssertLogContains(t *testing.T, hook *test.Hook, message string) {
	t.Helper()

	messages := make([]string, 0, len(hook.AllEntries()))
	for _, entry := range hook.AllEntries() {
		messages = append(messages, entry.Message)
	}

	require.Contains(t, messages, message)
}

// AssertLogNeverContains checks that secret shows up neither in the message
// nor in any field of the captured entries
func AssertLogNeverContains(t *testing.T, hook *test.Hook, secret string) {
	t.Helper()

	require.NotEmpty(t, hook.AllEntries(), "no log entries captured")

	for _, entry := range hook.AllEntries() {
		require.NotContains(t, entry.Message, secret)

		for key, value := range entry.Data {
			require.NotContains(t, fmt.Sprint(value), secret, "field %q", key)
		}
	}
}
