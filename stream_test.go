// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"errors"
	"testing"
)

func TestStreamBaseLifecycle(t *testing.T) {
	var b StreamBase
	if !b.IsOK() || !b.IsOpen() {
		t.Fatalf("a fresh StreamBase must be open and ok")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close on a healthy stream: %v", err)
	}
	if !b.IsOK() || b.IsOpen() {
		t.Fatalf("after Close, expected ok but not open")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close must be idempotent: %v", err)
	}
}

func TestStreamBaseFailLatchesFirstError(t *testing.T) {
	var b StreamBase
	first := errors.New("first failure")
	second := errors.New("second failure")

	if got := b.Fail(first); got != first {
		t.Fatalf("Fail must return the newly latched error")
	}
	if got := b.Fail(second); got != first {
		t.Fatalf("Fail must keep the first error, got %v", got)
	}
	if b.IsOK() {
		t.Fatalf("a failed stream must never be ok again")
	}
	if err := b.Close(); err != first {
		t.Fatalf("Close on a failed stream must return the latched error, got %v", err)
	}
	if b.IsOpen() {
		t.Fatalf("a closed-failed stream must not be open")
	}
}

func TestStreamBaseFailNilIsNoOp(t *testing.T) {
	var b StreamBase
	if b.Fail(nil) != nil {
		t.Fatalf("Fail(nil) on a healthy stream must return nil")
	}
	if !b.IsOK() {
		t.Fatalf("Fail(nil) must not fail the stream")
	}
}
