// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

// sliceSinkWriter is a minimal Writer over a growable in-memory
// buffer, built directly from writeFunc to exercise bufferedWriter.
type sliceSinkWriter struct {
	bufferedWriter
	out bytes.Buffer
}

func newSliceSinkWriter(opts BufferOptions) *sliceSinkWriter {
	w := &sliceSinkWriter{}
	w.bufferedWriter = newBufferedWriter(opts, w.drain)
	return w
}

func (w *sliceSinkWriter) drain(min int, src []byte) (int, error) {
	n, err := w.out.Write(src)
	return n, err
}

func (w *sliceSinkWriter) Flush(FlushType) error {
	if !w.bufferedWriter.flushBuffered() {
		return w.Err()
	}
	return nil
}

func (w *sliceSinkWriter) SupportsRandomAccess() bool { return false }
func (w *sliceSinkWriter) SupportsTruncate() bool     { return false }
func (w *sliceSinkWriter) SupportsReadMode() bool     { return false }
func (w *sliceSinkWriter) Seek(int64) error {
	return Unimplemented("streamio: sliceSinkWriter does not support Seek")
}
func (w *sliceSinkWriter) Truncate(int64) error {
	return Unimplemented("streamio: sliceSinkWriter does not support Truncate")
}
func (w *sliceSinkWriter) ReadMode(int64) (Reader, error) {
	return nil, Unimplemented("streamio: sliceSinkWriter does not support ReadMode")
}

func TestBufferedWriterRoundTrip(t *testing.T) {
	w := newSliceSinkWriter(BufferOptions{MinBufferSize: 8})
	data := bytes.Repeat([]byte("xyz"), 200)

	n, err := w.Write(data)
	if err != nil || n != len(data) {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if err := w.Flush(FlushFromProcess); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !bytes.Equal(w.out.Bytes(), data) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", w.out.Len(), len(data))
	}
}

func TestBufferedWriterZerosAndChars(t *testing.T) {
	w := newSliceSinkWriter(BufferOptions{MinBufferSize: 4})
	if err := w.WriteZeros(10); err != nil {
		t.Fatalf("WriteZeros: %v", err)
	}
	if err := w.WriteChars(5, 'Z'); err != nil {
		t.Fatalf("WriteChars: %v", err)
	}
	w.Flush(FlushFromProcess)

	want := append(bytes.Repeat([]byte{0}, 10), bytes.Repeat([]byte{'Z'}, 5)...)
	if !bytes.Equal(w.out.Bytes(), want) {
		t.Fatalf("got %q, want %q", w.out.Bytes(), want)
	}
}

func TestBufferedWriterNegativeFillIsInvalidArgument(t *testing.T) {
	w := newSliceSinkWriter(BufferOptions{})
	err := w.WriteZeros(-1)
	if CodeOf(err) != CodeInvalidArgument {
		t.Fatalf("CodeOf(WriteZeros(-1)) = %v, want CodeInvalidArgument", CodeOf(err))
	}
}

func TestBufferedWriterWriteFloat32RoundTrip(t *testing.T) {
	w := newSliceSinkWriter(BufferOptions{})
	if err := w.WriteFloat32(3.5); err != nil {
		t.Fatalf("WriteFloat32: %v", err)
	}
	w.Flush(FlushFromProcess)

	bits := binary.LittleEndian.Uint32(w.out.Bytes())
	got := math.Float32frombits(bits)
	if got != 3.5 {
		t.Fatalf("got %v, want 3.5", got)
	}
}

func TestBufferedWriterWriteFloat64NegativeNaNNormalized(t *testing.T) {
	w := newSliceSinkWriter(BufferOptions{})
	negNaN := math.Float64frombits(math.Float64bits(math.NaN()) | (1 << 63))
	if err := w.WriteFloat64(negNaN); err != nil {
		t.Fatalf("WriteFloat64: %v", err)
	}
	w.Flush(FlushFromProcess)

	bits := binary.LittleEndian.Uint64(w.out.Bytes())
	if bits&(1<<63) != 0 {
		t.Fatalf("negative NaN was not normalized to positive: bits=%#x", bits)
	}
	if !math.IsNaN(math.Float64frombits(bits)) {
		t.Fatalf("normalized value is not NaN")
	}
}

func TestBufferedWriterDirectFastPath(t *testing.T) {
	w := newSliceSinkWriter(BufferOptions{MinBufferSize: 16})
	big := bytes.Repeat([]byte("y"), 1000)
	n, err := w.Write(big)
	if err != nil || n != 1000 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if !bytes.Equal(w.out.Bytes(), big) {
		t.Fatalf("direct fast path mismatch")
	}
}
