// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"errors"
	"io"
	"testing"
)

func TestStatusCodeAndUnwrap(t *testing.T) {
	err := InvalidArgument("bad %s", "input")
	if CodeOf(err) != CodeInvalidArgument {
		t.Fatalf("CodeOf = %v, want CodeInvalidArgument", CodeOf(err))
	}
	if err.Error() != "bad input" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if errors.Unwrap(err) != nil {
		t.Fatalf("bare Status should unwrap to nil")
	}
}

func TestAnnotatePreservesCodeAndCause(t *testing.T) {
	base := ResourceExhausted("overflow at %d", 42)
	wrapped := Annotate(base, "at byte %d", 100)
	wrapped = Annotate(wrapped, "reading foo.txt")

	if CodeOf(wrapped) != CodeResourceExhausted {
		t.Fatalf("CodeOf(wrapped) = %v, want CodeResourceExhausted", CodeOf(wrapped))
	}
	var st *Status
	if !errors.As(wrapped, &st) {
		t.Fatalf("expected wrapped to be a *Status")
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("wrapped should chain back to base via Is")
	}
	want := "reading foo.txt: at byte 100: overflow at 42"
	if wrapped.Error() != want {
		t.Fatalf("Error() = %q, want %q", wrapped.Error(), want)
	}
}

func TestAnnotateNil(t *testing.T) {
	if Annotate(nil, "x") != nil {
		t.Fatalf("Annotate(nil, ...) must return nil")
	}
}

func TestFromOSError(t *testing.T) {
	if FromOSError(nil) != nil {
		t.Fatalf("FromOSError(nil) must return nil")
	}
	wrapped := FromOSError(io.ErrClosedPipe)
	if !errors.Is(wrapped, io.ErrClosedPipe) {
		t.Fatalf("FromOSError must preserve the cause for errors.Is")
	}
	if CodeOf(wrapped) != CodeUnknown {
		t.Fatalf("CodeOf(FromOSError(...)) = %v, want CodeUnknown", CodeOf(wrapped))
	}
}

func TestIsUnimplemented(t *testing.T) {
	if !IsUnimplemented(Unimplemented("nope")) {
		t.Fatalf("expected IsUnimplemented true")
	}
	if IsUnimplemented(InvalidArgument("nope")) {
		t.Fatalf("expected IsUnimplemented false for a different code")
	}
	if IsUnimplemented(nil) {
		t.Fatalf("IsUnimplemented(nil) should be false")
	}
}

func TestCodeString(t *testing.T) {
	cases := map[Code]string{
		CodeOK:                "OK",
		CodeInvalidArgument:    "InvalidArgument",
		CodeDataLoss:           "DataLoss",
		CodeUnimplemented:      "Unimplemented",
		CodeResourceExhausted:  "ResourceExhausted",
		CodeInternal:           "Internal",
		CodeUnknown:            "Unknown",
		Code(99):                "Unknown",
	}
	for code, want := range cases {
		if got := code.String(); got != want {
			t.Errorf("Code(%d).String() = %q, want %q", code, got, want)
		}
	}
}
