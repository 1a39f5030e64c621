// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"io"
)

// Reader is a pull-style buffered byte source. Implementations embed
// bufferedReader for the cursor fast path and supply the slow-path
// hooks (ReadInternal-equivalent, Seek, Size, NewReader) themselves.
//
// A Reader is not safe for concurrent use by more than one goroutine,
// except that NewReader may be called concurrently with itself and
// with other operations once its arguments are captured, provided the
// underlying source's NewReader is itself concurrency-safe.
type Reader interface {
	io.Reader
	io.Closer

	// Pull ensures Available() >= min, blocking on the underlying
	// source as needed. It returns true iff that succeeded; on false
	// the stream has either failed (check Err) or reached end-of-source
	// while still OK. recommended hints how much to read ahead beyond
	// min; min=1 is the common case. Pull(0, _) is a no-op returning
	// IsOK().
	Pull(min, recommended int) bool

	// Available reports how many bytes can be read right now without
	// a slow-path call.
	Available() int

	// Pos reports the absolute source position of the next unread
	// byte.
	Pos() int64

	// Skip advances the position by up to n bytes, stopping early only
	// at end-of-source or failure.
	Skip(n int64) (int64, error)

	// Seek moves to an absolute position. Requires SupportsRandomAccess
	// unless pos is within the already-buffered window.
	Seek(pos int64) error

	// Size reports the total stream size, if known. Fails
	// Unimplemented when the concrete stream cannot determine it.
	Size() (int64, error)

	SupportsRandomAccess() bool
	SupportsRewind() bool
	SupportsNewReader() bool

	// NewReader produces an independent Reader over the same ultimate
	// source, positioned at pos. Requires SupportsNewReader.
	NewReader(pos int64) (Reader, error)

	// CopyTo transfers up to n bytes to w, stopping early only at
	// end-of-source or failure. n < 0 means "until end-of-source".
	CopyTo(n int64, w Writer) (int64, error)

	IsOK() bool
	Err() error
}

// readFunc is the slow-path hook a concrete Reader supplies: write at
// least min and at most len(dst) bytes into dst, advancing the
// underlying source by however many bytes were produced. ok is false
// only on end-of-source or failure (never merely because fewer than
// len(dst) bytes were ready); err is non-nil only on failure.
type readFunc func(min int, dst []byte) (n int, ok bool, err error)

// bufferedReader implements the fast-path cursor arithmetic shared by
// every concrete Reader in this package (spec: "BufferedReader").
// Concrete readers embed it and assign fill in their constructor.
type bufferedReader struct {
	StreamBase

	buf      []byte
	start    int // index of the buffered window's start
	cursor   int // index of the next unread byte
	limit    int // index one past the buffered window's end
	startPos int64

	opts BufferOptions
	fill readFunc
}

func newBufferedReader(opts BufferOptions, fill readFunc) bufferedReader {
	return bufferedReader{opts: opts.withDefaults(), fill: fill}
}

func (r *bufferedReader) Available() int { return r.limit - r.cursor }

func (r *bufferedReader) Pos() int64 { return r.startPos + int64(r.cursor-r.start) }

func (r *bufferedReader) limitPos() int64 { return r.startPos + int64(r.limit-r.start) }

// Pull is the shared fast/slow path dispatcher.
func (r *bufferedReader) Pull(min, recommended int) bool {
	if min <= 0 {
		return r.IsOK()
	}
	if r.Available() >= min {
		return true
	}
	return r.pullSlow(min, recommended)
}

func (r *bufferedReader) pullSlow(min, recommended int) bool {
	if !r.IsOpen() {
		return r.Available() >= min
	}
	if recommended < min {
		recommended = min
	}
	if recommended > r.opts.MaxBufferSize {
		recommended = r.opts.MaxBufferSize
	}

	// Compact the still-unread tail to the front before growing.
	avail := r.Available()
	if avail > 0 && r.cursor > 0 {
		copy(r.buf[0:avail], r.buf[r.cursor:r.limit])
	}
	r.startPos += int64(r.cursor - r.start)
	r.start, r.cursor, r.limit = 0, 0, avail

	needed := avail + recommended
	if needed < avail+min {
		needed = avail + min
	}
	if needed < r.opts.initialSize() {
		needed = r.opts.initialSize()
	}
	if len(r.buf) < needed {
		grown := make([]byte, needed)
		copy(grown, r.buf[:r.limit])
		r.buf = grown
	}

	for r.Available() < min {
		room := len(r.buf) - r.limit
		if room == 0 {
			// min exceeds even the grown buffer (recommended was
			// capped by MaxBufferSize); grow exactly enough for min.
			grown := make([]byte, r.limit+(min-r.Available()))
			copy(grown, r.buf[:r.limit])
			r.buf = grown
			room = len(r.buf) - r.limit
		}
		want := min - r.Available()
		n, ok, err := r.fill(minInt(want, room), r.buf[r.limit:len(r.buf)])
		r.limit += n
		if err != nil {
			r.Fail(err)
			return r.Available() >= min
		}
		if !ok {
			return r.Available() >= min
		}
	}
	return true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Read implements io.Reader on top of Pull/the cursor window, with a
// direct-to-caller fast path for requests at least as large as the
// buffer (mirroring bufio.Reader.Read).
func (r *bufferedReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.Available() == 0 {
		if !r.IsOpen() {
			if err := r.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		if len(p) >= len(r.buf) && len(p) >= r.opts.initialSize() {
			n, ok, err := r.fill(1, p)
			r.startPos += int64(n)
			if err != nil {
				r.Fail(err)
				return n, err
			}
			if n == 0 && !ok {
				return 0, io.EOF
			}
			return n, nil
		}
		if !r.pullSlow(1, r.opts.MaxBufferSize) {
			if err := r.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
	}
	n := copy(p, r.buf[r.cursor:r.limit])
	r.cursor += n
	return n, nil
}

// peeker is implemented by readers that can expose their buffered
// window without consuming it. ZstdDecoder's frame-header probe relies
// on it; a reader that cannot safely look ahead (DigestingReader's
// inner source aside, which forwards it) simply doesn't implement it,
// and callers fall back to treating the lookahead as unavailable.
type peeker interface {
	Peek(n int) ([]byte, error)
}

// Peek returns up to n bytes from the buffered window without
// consuming them, pulling more into the buffer as needed. The returned
// slice aliases the internal buffer and is only valid until the next
// Pull/Read call.
func (r *bufferedReader) Peek(n int) ([]byte, error) {
	r.Pull(n, n)
	avail := r.Available()
	if avail > n {
		avail = n
	}
	if avail == 0 {
		if err := r.Err(); err != nil {
			return nil, err
		}
	}
	return r.buf[r.cursor : r.cursor+avail], nil
}

// discardBuffered drops everything currently buffered, leaving
// position bookkeeping consistent (used when a layer reinitializes its
// inner source, e.g. ZstdDecoder's rewind).
func (r *bufferedReader) discardBuffered() {
	r.start, r.cursor, r.limit = 0, 0, 0
}

// seekWithinBuffer adjusts the cursor if pos falls inside the
// currently buffered window, returning true on success. Concrete
// readers call this first and only fall back to their own
// SeekBehindBuffer logic when it returns false.
func (r *bufferedReader) seekWithinBuffer(pos int64) bool {
	if pos < r.startPos {
		return false
	}
	offset := pos - r.startPos
	if offset > int64(r.limit-r.start) {
		return false
	}
	r.cursor = r.start + int(offset)
	return true
}

// skipDefault advances by reading and discarding, used by readers with
// no cheaper way to skip (e.g. non-seekable sources).
func skipDefault(r Reader, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	var buf [4096]byte
	var skipped int64
	for skipped < n {
		want := n - skipped
		if want > int64(len(buf)) {
			want = int64(len(buf))
		}
		nr, err := r.Read(buf[:want])
		skipped += int64(nr)
		if err != nil {
			if err == io.EOF {
				return skipped, nil
			}
			return skipped, err
		}
	}
	return skipped, nil
}
