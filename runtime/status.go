package runtime

import (
	stderrors "errors"

	"github.com/go-errors/errors"

	"github.com/silonet/silorun/node"
)

// Code and NodeMessage are aliases of the node package's Code/Message:
// the canonical definitions live there so that node.RuntimeProxy (the
// Node capability's façade) never needs to import runtime. Spelling them
// out under these names keeps every runtime.* signature reading the way
// spec.md §4.5/§4.6 does.
type Code = node.Code
type NodeMessage = node.Message

const (
	Ok               = node.Ok
	BadHandle        = node.BadHandle
	InvalidArgs      = node.InvalidArgs
	ChannelClosed    = node.ChannelClosed
	PermissionDenied = node.PermissionDenied
	Terminated       = node.Terminated
	Internal         = node.Internal
	ReadReady        = node.ReadReady
	NotReady         = node.NotReady
	Orphaned         = node.Orphaned
	InvalidChannel   = node.InvalidChannel
)

// StatusError pairs a Code with a stack-traced error, the way the
// teacher wraps every returned error with go-errors/errors so a later
// log line can print where it originated, not just what happened.
type StatusError struct {
	Code Code
	err  *errors.Error
}

func newStatus(code Code, msg string) *StatusError {
	return &StatusError{Code: code, err: errors.New(msg)}
}

func newStatusf(code Code, format string, args ...interface{}) *StatusError {
	return &StatusError{Code: code, err: errors.Errorf(format, args...)}
}

func (s *StatusError) Error() string {
	return s.err.Error()
}

// Unwrap exposes the underlying go-errors/errors value so callers may
// still use errors.As/errors.Is against it.
func (s *StatusError) Unwrap() error {
	return s.err.Err
}

// StatusCode extracts the Code from err if it is (or wraps) a
// *StatusError, and Internal otherwise. A nil err is never passed to
// this function by runtime code; callers check err == nil first.
func StatusCode(err error) Code {
	var se *StatusError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return Internal
}

var (
	errBadHandle        = newStatus(BadHandle, "invalid or wrong-direction handle")
	errInvalidArgs      = newStatus(InvalidArgs, "invalid arguments")
	errChannelClosed    = newStatus(ChannelClosed, "channel closed")
	errPermissionDenied = newStatus(PermissionDenied, "permission denied")
	errTerminated       = newStatus(Terminated, "runtime terminated")
)
