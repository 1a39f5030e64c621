// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"bytes"
	"io"
	"testing"
)

func TestChainAppendAndBytes(t *testing.T) {
	var c Chain
	c.Append([]byte("foo"))
	c.Append([]byte("bar"))
	c.Append([]byte("baz"))

	if c.Size() != 9 {
		t.Fatalf("Size() = %d, want 9", c.Size())
	}
	if got := string(c.Bytes()); got != "foobarbaz" {
		t.Fatalf("Bytes() = %q", got)
	}
}

func TestChainAppendEmptyIsNoOp(t *testing.T) {
	var c Chain
	c.Append(nil)
	c.Append([]byte{})
	if c.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", c.Size())
	}
}

func TestCordSnapshotIsIndependentOfLaterAppends(t *testing.T) {
	var c Chain
	c.Append([]byte("a"))
	snap := c.Cord()
	c.Append([]byte("b"))

	if snap.Len() != 1 {
		t.Fatalf("Cord snapshot length = %d, want 1", snap.Len())
	}
	if c.Size() != 2 {
		t.Fatalf("Chain size after further append = %d, want 2", c.Size())
	}
}

func TestCordReader(t *testing.T) {
	var c Chain
	c.Append([]byte("hello "))
	c.Append([]byte("world"))
	cord := c.Cord()

	got, err := io.ReadAll(cord.Reader())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestReadIntoPreservesBlockBoundaries(t *testing.T) {
	data := bytes.Repeat([]byte("Q"), 100*1024)
	r := newSliceSourceReader(data, BufferOptions{MinBufferSize: 4096})

	var dst Chain
	n, err := ReadInto(r, &dst, -1)
	if err != nil {
		t.Fatalf("ReadInto: %v", err)
	}
	if n != int64(len(data)) {
		t.Fatalf("ReadInto n = %d, want %d", n, len(data))
	}
	if !bytes.Equal(dst.Bytes(), data) {
		t.Fatalf("ReadInto content mismatch")
	}
	if len(dst.blocks) < 2 {
		t.Fatalf("expected ReadInto to preserve multiple 32KB-ish blocks, got %d", len(dst.blocks))
	}
}

func TestWriteFromRoundTrip(t *testing.T) {
	var c Chain
	c.Append([]byte("one"))
	c.Append([]byte("two"))
	cord := c.Cord()

	w := newSliceSinkWriter(BufferOptions{})
	n, err := WriteFrom(w, cord)
	if err != nil {
		t.Fatalf("WriteFrom: %v", err)
	}
	if n != cord.Len() {
		t.Fatalf("WriteFrom n = %d, want %d", n, cord.Len())
	}
	w.Flush(FlushFromProcess)
	if w.out.String() != "onetwo" {
		t.Fatalf("got %q", w.out.String())
	}
}

func TestNullWriterDiscardsAndTracksPosition(t *testing.T) {
	w := NullWriter()
	n, err := w.Write([]byte("abcdef"))
	if err != nil || n != 6 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if w.Pos() != 6 {
		t.Fatalf("Pos() = %d, want 6", w.Pos())
	}
	if err := w.WriteZeros(4); err != nil {
		t.Fatalf("WriteZeros: %v", err)
	}
	if w.Pos() != 10 {
		t.Fatalf("Pos() after WriteZeros = %d, want 10", w.Pos())
	}
}

func TestDiscardReaderIsPermanentlyAtEOF(t *testing.T) {
	r := DiscardReader()
	n, err := r.Read(make([]byte, 10))
	if n != 0 || err != io.EOF {
		t.Fatalf("Read = %d, %v, want 0, io.EOF", n, err)
	}
	if err := r.Seek(0); err != nil {
		t.Fatalf("Seek(0) on DiscardReader must succeed: %v", err)
	}
	if err := r.Seek(5); err == nil {
		t.Fatalf("Seek(5) on DiscardReader must fail")
	}
}
