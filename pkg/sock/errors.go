package sock

import (
	"errors"
	"fmt"
)

// errMsgLen caps the length of a formatted error message. Longer messages
// are truncated rather than propagated in full.
const errMsgLen = 256

// ErrNoAddress is returned when the resolver produced no usable candidate,
// or when every candidate was tried and none succeeded without recording a
// more specific failure.
var ErrNoAddress = errors.New("no candidate address")

// Error is a single formatted failure from a socket helper call. The
// message carries the failing operation and the OS error description,
// e.g. "connect: connection refused".
type Error struct {
	msg   string
	cause error
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.cause }

// errorf builds an *Error wrapping cause, truncating the formatted
// message to errMsgLen bytes.
func errorf(cause error, format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	if len(msg) > errMsgLen {
		msg = msg[:errMsgLen]
	}
	return &Error{msg: msg, cause: cause}
}
