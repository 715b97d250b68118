package placecraft

import (
	"fmt"
	"io"
	"log"
)

// Must unwraps the value `val` if `err` is nil.
// If `err` is non-nil, it panics. This is useful for simplifying code where
// errors are unexpected or should be fatal (e.g., parsing constants or test setup).
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// Must0 panics if the provided error is non-nil.
// This is useful for simplifying code where only an error is returned
// and failures should be considered fatal.
func Must0(err error) {
	if err != nil {
		panic(err)
	}
}

// MustFprintln writes a newline-terminated string of arguments to the given writer,
// logging and exiting on error. It simplifies error handling for fmt.Fprintln calls
// where failures are critical and should halt execution.
func MustFprintln(w io.Writer, args ...interface{}) {
	if _, err := fmt.Fprintln(w, args...); err != nil {
		log.Fatalf("Fprintln failed: %v", err)
	}
}

// MustFprintf writes a formatted string to the given writer, logging and exiting
// on error. It simplifies error handling for fmt.Fprintf calls where failures
// are critical and should halt execution.
func MustFprintf(w io.Writer, format string, args ...interface{}) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		log.Fatalf("Fprintf failed: %v", err)
	}
}
