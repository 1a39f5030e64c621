// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer is a push-style buffered byte sink, the mirror of Reader.
type Writer interface {
	io.Writer
	io.Closer

	// Push ensures Available() >= min room in the buffer, flushing to
	// the underlying sink as needed.
	Push(min, recommended int) bool

	Available() int
	Pos() int64

	WriteZeros(n int64) error
	WriteChars(n int64, b byte) error

	// WriteFloat32 and WriteFloat64 write a formatted binary float. A
	// negative NaN is normalized to the positive NaN bit pattern first,
	// so the same value always serializes identically.
	WriteFloat32(v float32) error
	WriteFloat64(v float64) error

	// Flush propagates buffered data to the underlying sink at the
	// requested durability. FlushFromObject is a no-op for a
	// non-owning layer.
	Flush(level FlushType) error

	// Seek moves the write position. Requires SupportsRandomAccess,
	// even when pos is within the still-buffered window.
	Seek(pos int64) error

	// Truncate resizes the underlying sink to size. Requires
	// SupportsTruncate.
	Truncate(size int64) error

	SupportsRandomAccess() bool
	SupportsTruncate() bool
	SupportsReadMode() bool

	// ReadMode returns a Reader over bytes already written, for sinks
	// that can expose their own output for reading.
	ReadMode(pos int64) (Reader, error)

	IsOK() bool
	Err() error
}

// writeFunc is the slow-path hook a concrete Writer supplies: consume
// at least min and at most len(src) bytes from src, writing them to
// the underlying sink. err is non-nil only on failure.
type writeFunc func(min int, src []byte) (n int, err error)

// bufferedWriter implements the fast-path cursor arithmetic shared by
// every concrete Writer in this package.
type bufferedWriter struct {
	StreamBase

	buf      []byte
	start    int
	cursor   int
	limit    int // end of space currently reserved for writing
	startPos int64

	opts  BufferOptions
	drain writeFunc
}

func newBufferedWriter(opts BufferOptions, drain writeFunc) bufferedWriter {
	return bufferedWriter{opts: opts.withDefaults(), drain: drain}
}

func (w *bufferedWriter) Available() int { return w.limit - w.cursor }

func (w *bufferedWriter) Pos() int64 { return w.startPos + int64(w.cursor-w.start) }

func (w *bufferedWriter) Push(min, recommended int) bool {
	if min <= 0 {
		return w.IsOK()
	}
	if w.Available() >= min {
		return true
	}
	return w.pushSlow(min, recommended)
}

func (w *bufferedWriter) pushSlow(min, recommended int) bool {
	if !w.IsOpen() {
		return false
	}
	if !w.flushBuffered() {
		return false
	}
	if recommended < min {
		recommended = min
	}
	if recommended > w.opts.MaxBufferSize {
		recommended = w.opts.MaxBufferSize
	}
	needed := recommended
	if needed < w.opts.initialSize() {
		needed = w.opts.initialSize()
	}
	if needed < min {
		needed = min
	}
	if len(w.buf) < needed {
		w.buf = make([]byte, needed)
	}
	w.start, w.cursor, w.limit = 0, 0, len(w.buf)
	return true
}

// flushBuffered drains everything written into buf[start:cursor] to
// the sink via drain, retrying until it is all consumed or a failure
// occurs.
func (w *bufferedWriter) flushBuffered() bool {
	for w.cursor > w.start {
		n, err := w.drain(w.cursor-w.start, w.buf[w.start:w.cursor])
		w.start += n
		w.startPos += int64(n)
		if err != nil {
			w.Fail(err)
			return false
		}
		if n == 0 {
			w.Fail(io.ErrNoProgress)
			return false
		}
	}
	w.start, w.cursor, w.limit = 0, 0, 0
	return true
}

// Write implements io.Writer: fast path copies into the cursor window,
// with a direct-to-sink path for writes of at least the initial buffer
// size (BufferOptions.initialSize) while no buffer window is open.
func (w *bufferedWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if !w.IsOpen() {
		return 0, w.Err()
	}
	if w.Available() == 0 && w.cursor == w.start && len(p) >= w.opts.initialSize() {
		if !w.flushBuffered() {
			return 0, w.Err()
		}
		total := 0
		for total < len(p) {
			n, err := w.drain(len(p)-total, p[total:])
			total += n
			w.startPos += int64(n)
			if err != nil {
				w.Fail(err)
				return total, err
			}
			if n == 0 {
				w.Fail(io.ErrNoProgress)
				return total, io.ErrNoProgress
			}
		}
		return total, nil
	}
	written := 0
	for written < len(p) {
		if w.Available() == 0 {
			if !w.pushSlow(1, w.opts.MaxBufferSize) {
				return written, w.Err()
			}
		}
		n := copy(w.buf[w.cursor:w.limit], p[written:])
		w.cursor += n
		written += n
	}
	return written, nil
}

// WriteZeros appends n zero bytes, memsetting across buffer
// boundaries instead of looping byte by byte.
func (w *bufferedWriter) WriteZeros(n int64) error { return w.writeFill(n, 0) }

// WriteChars appends n copies of b.
func (w *bufferedWriter) WriteChars(n int64, b byte) error { return w.writeFill(n, b) }

// normalizeNaN32 and normalizeNaN64 canonicalize a negative NaN to the
// positive NaN bit pattern, so a formatted float write is deterministic
// regardless of which NaN payload/sign the caller happened to produce.
func normalizeNaN32(v float32) float32 {
	if v != v {
		return math.Float32frombits(math.Float32bits(v) &^ (1 << 31))
	}
	return v
}

func normalizeNaN64(v float64) float64 {
	if v != v {
		return math.Float64frombits(math.Float64bits(v) &^ (1 << 63))
	}
	return v
}

func float32Bytes(v float32) [4]byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(normalizeNaN32(v)))
	return buf
}

func float64Bytes(v float64) [8]byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(normalizeNaN64(v)))
	return buf
}

// WriteFloat32 writes v as 4 little-endian bytes.
func (w *bufferedWriter) WriteFloat32(v float32) error {
	b := float32Bytes(v)
	_, err := w.Write(b[:])
	return err
}

// WriteFloat64 writes v as 8 little-endian bytes.
func (w *bufferedWriter) WriteFloat64(v float64) error {
	b := float64Bytes(v)
	_, err := w.Write(b[:])
	return err
}

func (w *bufferedWriter) writeFill(n int64, b byte) error {
	if n < 0 {
		return InvalidArgument("streamio: negative fill length %d", n)
	}
	for n > 0 {
		if w.Available() == 0 {
			chunk := n
			if chunk > math.MaxInt32 {
				chunk = math.MaxInt32
			}
			if !w.pushSlow(1, int(chunk)) {
				return w.Err()
			}
		}
		room := int64(w.Available())
		if room > n {
			room = n
		}
		dst := w.buf[w.cursor : w.cursor+int(room)]
		for i := range dst {
			dst[i] = b
		}
		w.cursor += int(room)
		n -= room
	}
	return nil
}
