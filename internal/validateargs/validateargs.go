// Package validateargs inspects the raw command line before flags are parsed.
package validateargs

import (
	"fmt"
	"strings"
)

// sensitiveArgs carry credentials, they belong in the -config file or the
// environment where they do not show up in the process list
var sensitiveArgs = []string{"sentry-dsn"}

// Sensitive returns an error naming every sensitive flag found in args
func Sensitive(args []string) error {
	var found []string

	for _, arg := range args {
		name, ok := flagName(arg)
		if !ok {
			continue
		}

		for _, sensitive := range sensitiveArgs {
			if name == sensitive {
				found = append(found, "-"+sensitive)
			}
		}
	}

	if len(found) > 0 {
		return fmt.Errorf("%s should not be passed as a command line argument", strings.Join(found, ", "))
	}

	return nil
}

// flagName returns the name of a "-name", "--name" or "-name=value" argument
func flagName(arg string) (string, bool) {
	if !strings.HasPrefix(arg, "-") {
		return "", false
	}

	name := strings.TrimLeft(arg, "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}

	return name, name != ""
}
