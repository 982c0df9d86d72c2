package config

import (
	"errors"
	"strings"
)

var errEmptyListValue = errors.New("value cannot be empty")

// ListFlag is a flag.Value collecting every occurrence of a flag. Each
// occurrence may hold several entries joined by separator.
//
//	-listen-http 127.0.0.1:80 -listen-http "[::1]:80, 10.0.0.1:80"
type ListFlag struct {
	raw       []string
	separator string
}

func newListFlag(separator string) ListFlag {
	return ListFlag{separator: separator}
}

func (l *ListFlag) String() string {
	return strings.Join(l.raw, l.separator)
}

// Set records one occurrence of the flag
func (l *ListFlag) Set(value string) error {
	if strings.TrimSpace(value) == "" {
		return errEmptyListValue
	}

	l.raw = append(l.raw, value)

	return nil
}

// Values returns every entry with surrounding spaces trimmed. Blank entries
// left by a doubled separator are dropped.
func (l *ListFlag) Values() []string {
	var values []string

	for _, occurrence := range l.raw {
		for _, entry := range strings.Split(occurrence, l.separator) {
			if entry = strings.TrimSpace(entry); entry != "" {
				values = append(values, entry)
			}
		}
	}

	return values
}

// IsEmpty reports whether the flag was never given
func (l *ListFlag) IsEmpty() bool {
	return len(l.raw) == 0
}
