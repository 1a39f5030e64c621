// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"errors"
	"fmt"
)

// Code classifies a Status. The taxonomy is deliberately small: it is
// just enough for callers to distinguish "this will never work"
// (Unimplemented), "you asked for the impossible" (InvalidArgument,
// ResourceExhausted), "something downstream changed under us"
// (DataLoss), and "ask the OS" (Unknown, carrying an *os.SyscallError
// or similar as its cause).
type Code int

const (
	// CodeOK is never attached to a non-nil Status.
	CodeOK Code = iota
	CodeInvalidArgument
	CodeDataLoss
	CodeUnimplemented
	CodeResourceExhausted
	CodeInternal
	// CodeUnknown covers OS-mapped and otherwise unclassified errors.
	CodeUnknown
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeInvalidArgument:
		return "InvalidArgument"
	case CodeDataLoss:
		return "DataLoss"
	case CodeUnimplemented:
		return "Unimplemented"
	case CodeResourceExhausted:
		return "ResourceExhausted"
	case CodeInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Status is an error carrying a Code and an append-only chain of
// byte-position context. Each layer that forwards a failing Status
// prepends its own context via Annotate without discarding the
// original cause, so the bottommost error is always reachable through
// errors.Unwrap / errors.As.
type Status struct {
	code Code
	msg  string
	err  error
}

func (s *Status) Error() string {
	if s.err != nil {
		return s.msg + ": " + s.err.Error()
	}
	return s.msg
}

func (s *Status) Unwrap() error { return s.err }

// Code reports the classification of the status.
func (s *Status) Code() Code { return s.code }

func newStatus(code Code, format string, args ...any) *Status {
	return &Status{code: code, msg: fmt.Sprintf(format, args...)}
}

// InvalidArgument reports a truncated stream, malformed frame, or
// incompatible combination of options.
func InvalidArgument(format string, args ...any) *Status { return newStatus(CodeInvalidArgument, format, args...) }

// DataLoss reports that a source changed or shrank under a seek-back.
func DataLoss(format string, args ...any) *Status { return newStatus(CodeDataLoss, format, args...) }

// Unimplemented reports that a queried capability is absent for this
// instance (no random access, no known size, ...).
func Unimplemented(format string, args ...any) *Status { return newStatus(CodeUnimplemented, format, args...) }

// ResourceExhausted reports that a position counter would overflow.
func ResourceExhausted(format string, args ...any) *Status { return newStatus(CodeResourceExhausted, format, args...) }

// Internal reports an unexpected failure inside a third-party
// dependency, such as failing to allocate or configure a Zstd context.
func Internal(format string, args ...any) *Status { return newStatus(CodeInternal, format, args...) }

// FromOSError wraps a system-call error as a Status without losing it
// as the Unwrap cause. Returns nil for a nil err.
func FromOSError(err error) error {
	if err == nil {
		return nil
	}
	return &Status{code: CodeUnknown, msg: err.Error(), err: err}
}

// Annotate wraps err with a position-describing prefix, preserving the
// original Status's Code (if any) and its cause chain. Annotating nil
// returns nil.
func Annotate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	code := CodeUnknown
	var st *Status
	if errors.As(err, &st) {
		code = st.code
	}
	return &Status{code: code, msg: fmt.Sprintf(format, args...), err: err}
}

// CodeOf reports the Code of err, or CodeUnknown if err does not carry
// one (including err == nil, for which CodeUnknown is also returned;
// callers should check err != nil first).
func CodeOf(err error) Code {
	var st *Status
	if errors.As(err, &st) {
		return st.code
	}
	return CodeUnknown
}

// IsUnimplemented reports whether err (or a cause in its chain) is a
// Status with CodeUnimplemented.
func IsUnimplemented(err error) bool { return CodeOf(err) == CodeUnimplemented }
