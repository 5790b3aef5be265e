package logging

import (
	"fmt"
	"os"
)

// DebugEnabled returns true if debug mode is enabled via LOIPEN_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("LOIPEN_DEBUG") != ""
}

// Debugf prints a formatted debug message to stderr only if debug mode is enabled.
// Used before the structured logger exists (config loading, flag parsing).
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
