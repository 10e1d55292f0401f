package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted message to stderr and exits with status 1.
// Command entry points use it for configuration failures that happen before
// logging is set up.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
