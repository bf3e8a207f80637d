/*
Package shared - stack-capture helper shared by every aggregate's own
domain error type.

Design:
1. Stack capture happens at error-construction time (inside each domain
   package's own NewXxxError), formatting happens lazily, only when a
   caller actually asks for Stack().
2. Domain errors carry no HTTP status code or other transport concept.
3. Standard library errors only; no third-party error package.
*/
package shared

import (
	"fmt"
	"runtime"
	"strings"
)

// CaptureStack captures the current call stack for later formatting.
// skip is the number of frames to skip (typically 3: Callers,
// CaptureStack, the caller's NewXxxError).
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders stack into one string per frame, dropping runtime-
// internal frames and capping at 10.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) >= 10 {
			break
		}
	}
	return result
}

// Stacker is implemented by an error that can report the call stack
// captured when it was constructed, so api/response can extract it
// uniformly regardless of which aggregate raised the error.
type Stacker interface {
	Stack() []string
}
