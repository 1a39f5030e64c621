// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import "math"

// PositionShiftingReader presents an inner Reader's bytes at positions
// rebased by a constant basePos: Pos() reports basePos+inner.Pos().
// Because it has no buffer of its own (every fast-path call simply
// forwards to inner), the inner stream's buffer is effectively shared
// with no separate synchronization step needed.
//
// Seeking to a logical position below basePos fails (without
// latching the stream as failed, so a later, valid Seek still works).
// Advancing the logical position past the int64 range permanently
// fails the stream with ResourceExhausted.
type PositionShiftingReader struct {
	StreamBase
	inner   ownedInner[Reader]
	basePos int64
}

// NewPositionShiftingReader wraps inner, rebasing its positions by
// basePos. inner is closed by this reader's Close iff owns is true.
func NewPositionShiftingReader(inner Reader, basePos int64, owns bool) *PositionShiftingReader {
	return &PositionShiftingReader{inner: ownedInner[Reader]{inner: inner, owns: owns}, basePos: basePos}
}

func (r *PositionShiftingReader) IsOK() bool {
	return r.StreamBase.IsOK() && r.inner.inner.IsOK()
}

func (r *PositionShiftingReader) Err() error {
	if err := r.StreamBase.Err(); err != nil {
		return err
	}
	return r.inner.inner.Err()
}

func (r *PositionShiftingReader) checkOverflow() bool {
	if r.inner.inner.Pos() > math.MaxInt64-r.basePos {
		r.Fail(ResourceExhausted("streamio: position-shifted pos overflows int64 (base %d, inner %d)", r.basePos, r.inner.inner.Pos()))
		return false
	}
	return true
}

func (r *PositionShiftingReader) Read(p []byte) (int, error) {
	if !r.IsOK() {
		return 0, r.Err()
	}
	n, err := r.inner.inner.Read(p)
	if n > 0 && !r.checkOverflow() {
		return n, r.Err()
	}
	return n, err
}

func (r *PositionShiftingReader) Pull(min, recommended int) bool {
	if !r.IsOK() {
		return false
	}
	return r.inner.inner.Pull(min, recommended)
}

func (r *PositionShiftingReader) Available() int { return r.inner.inner.Available() }
func (r *PositionShiftingReader) Pos() int64     { return r.basePos + r.inner.inner.Pos() }

func (r *PositionShiftingReader) Skip(n int64) (int64, error) {
	skipped, err := r.inner.inner.Skip(n)
	if skipped > 0 && !r.checkOverflow() {
		return skipped, r.Err()
	}
	return skipped, err
}

// Seek moves to an absolute, rebased position. Seeking below basePos
// returns an error but leaves the stream usable for a later, valid
// Seek.
func (r *PositionShiftingReader) Seek(pos int64) error {
	if !r.IsOK() {
		return r.Err()
	}
	if pos < r.basePos {
		return InvalidArgument("streamio: seek to %d underflows base position %d", pos, r.basePos)
	}
	if err := r.inner.inner.Seek(pos - r.basePos); err != nil {
		return Annotate(err, "streamio: seeking position-shifted reader to %d", pos)
	}
	return nil
}

func (r *PositionShiftingReader) Size() (int64, error) {
	sz, err := r.inner.inner.Size()
	if err != nil {
		return 0, err
	}
	return r.basePos + sz, nil
}

func (r *PositionShiftingReader) SupportsRandomAccess() bool { return r.inner.inner.SupportsRandomAccess() }
func (r *PositionShiftingReader) SupportsRewind() bool       { return r.inner.inner.SupportsRewind() }
func (r *PositionShiftingReader) SupportsNewReader() bool    { return r.inner.inner.SupportsNewReader() }

func (r *PositionShiftingReader) NewReader(pos int64) (Reader, error) {
	if pos < r.basePos {
		return nil, InvalidArgument("streamio: NewReader at %d underflows base position %d", pos, r.basePos)
	}
	inner, err := r.inner.inner.NewReader(pos - r.basePos)
	if err != nil {
		return nil, err
	}
	return NewPositionShiftingReader(inner, r.basePos, true), nil
}

func (r *PositionShiftingReader) CopyTo(n int64, w Writer) (int64, error) {
	return boundedCopy(r, n, w)
}

// Peek forwards to the inner reader when it supports peeking; the
// returned bytes are not position-shifted since they are never
// consumed.
func (r *PositionShiftingReader) Peek(n int) ([]byte, error) {
	pk, ok := r.inner.inner.(peeker)
	if !ok {
		return nil, Unimplemented("streamio: inner reader does not support Peek")
	}
	return pk.Peek(n)
}

func (r *PositionShiftingReader) Close() error {
	err := r.StreamBase.Close()
	if cerr := r.inner.closeInner(); err == nil {
		err = cerr
	}
	return err
}

// PositionShiftingWriter is the write-side mirror of
// PositionShiftingReader.
type PositionShiftingWriter struct {
	StreamBase
	inner   ownedInner[Writer]
	basePos int64
}

// NewPositionShiftingWriter wraps inner, rebasing its positions by
// basePos. inner is closed by this writer's Close iff owns is true.
func NewPositionShiftingWriter(inner Writer, basePos int64, owns bool) *PositionShiftingWriter {
	return &PositionShiftingWriter{inner: ownedInner[Writer]{inner: inner, owns: owns}, basePos: basePos}
}

func (w *PositionShiftingWriter) IsOK() bool {
	return w.StreamBase.IsOK() && w.inner.inner.IsOK()
}

func (w *PositionShiftingWriter) Err() error {
	if err := w.StreamBase.Err(); err != nil {
		return err
	}
	return w.inner.inner.Err()
}

func (w *PositionShiftingWriter) checkOverflow() bool {
	if w.inner.inner.Pos() > math.MaxInt64-w.basePos {
		w.Fail(ResourceExhausted("streamio: position-shifted pos overflows int64 (base %d, inner %d)", w.basePos, w.inner.inner.Pos()))
		return false
	}
	return true
}

func (w *PositionShiftingWriter) Write(p []byte) (int, error) {
	if !w.IsOK() {
		return 0, w.Err()
	}
	n, err := w.inner.inner.Write(p)
	if n > 0 && !w.checkOverflow() {
		return n, w.Err()
	}
	return n, err
}

func (w *PositionShiftingWriter) Push(min, recommended int) bool { return w.inner.inner.Push(min, recommended) }
func (w *PositionShiftingWriter) Available() int                  { return w.inner.inner.Available() }
func (w *PositionShiftingWriter) Pos() int64                       { return w.basePos + w.inner.inner.Pos() }

func (w *PositionShiftingWriter) WriteZeros(n int64) error {
	err := w.inner.inner.WriteZeros(n)
	if n > 0 {
		w.checkOverflow()
	}
	return err
}

func (w *PositionShiftingWriter) WriteChars(n int64, b byte) error {
	err := w.inner.inner.WriteChars(n, b)
	if n > 0 {
		w.checkOverflow()
	}
	return err
}

func (w *PositionShiftingWriter) WriteFloat32(v float32) error {
	b := float32Bytes(v)
	_, err := w.Write(b[:])
	return err
}

func (w *PositionShiftingWriter) WriteFloat64(v float64) error {
	b := float64Bytes(v)
	_, err := w.Write(b[:])
	return err
}

func (w *PositionShiftingWriter) Flush(level FlushType) error { return w.inner.inner.Flush(level) }

// Seek moves to an absolute, rebased position. Seeking below basePos
// fails without latching the stream as failed.
func (w *PositionShiftingWriter) Seek(pos int64) error {
	if !w.IsOK() {
		return w.Err()
	}
	if pos < w.basePos {
		return InvalidArgument("streamio: seek to %d underflows base position %d", pos, w.basePos)
	}
	if err := w.inner.inner.Seek(pos - w.basePos); err != nil {
		return Annotate(err, "streamio: seeking position-shifted writer to %d", pos)
	}
	return nil
}

func (w *PositionShiftingWriter) Truncate(size int64) error {
	if size < w.basePos {
		return InvalidArgument("streamio: truncate to %d underflows base position %d", size, w.basePos)
	}
	return w.inner.inner.Truncate(size - w.basePos)
}

func (w *PositionShiftingWriter) SupportsRandomAccess() bool { return w.inner.inner.SupportsRandomAccess() }
func (w *PositionShiftingWriter) SupportsTruncate() bool      { return w.inner.inner.SupportsTruncate() }
func (w *PositionShiftingWriter) SupportsReadMode() bool      { return w.inner.inner.SupportsReadMode() }

func (w *PositionShiftingWriter) ReadMode(pos int64) (Reader, error) {
	if pos < w.basePos {
		return nil, InvalidArgument("streamio: ReadMode at %d underflows base position %d", pos, w.basePos)
	}
	inner, err := w.inner.inner.ReadMode(pos - w.basePos)
	if err != nil {
		return nil, err
	}
	return NewPositionShiftingReader(inner, w.basePos, true), nil
}

func (w *PositionShiftingWriter) Close() error {
	err := w.StreamBase.Close()
	if cerr := w.inner.closeInner(); err == nil {
		err = cerr
	}
	return err
}
