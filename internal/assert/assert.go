// Package assert provides runtime assertion checking for invariants of the scanner.
package assert

import "fmt"

// That panics if condition is false. The message is formatted using args if any are given.
func That(condition bool, msg string, args ...any) {
	if condition {
		return
	}

	if len(args) > 0 {
		panic(fmt.Sprintf(msg, args...))
	}
	panic(msg)
}

// Unreachable panics as the code calling it must not be reached.
func Unreachable(msg string, args ...any) {
	That(false, "unreachable: "+msg, args...)
}
