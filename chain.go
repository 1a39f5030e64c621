// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"bytes"
	"io"
	"math"
)

// Chain is a growable sequence of immutable byte blocks. Appending
// never copies an existing block; it is the mutable, write side of the
// external byte-container pair this package consumes and produces so
// that a DigestingReader or ZstdDecoder can hand back the source's own
// block boundaries to a caller without an extra copy.
type Chain struct {
	blocks [][]byte
	size   int64
}

// Append adds p as a new block without copying it. The caller must not
// mutate p afterward.
func (c *Chain) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	c.blocks = append(c.blocks, p)
	c.size += int64(len(p))
}

// Size reports the total number of bytes across all blocks.
func (c *Chain) Size() int64 { return c.size }

// Bytes flattens the chain into a single contiguous slice, copying.
func (c *Chain) Bytes() []byte {
	out := make([]byte, 0, c.size)
	for _, b := range c.blocks {
		out = append(out, b...)
	}
	return out
}

// Cord returns an immutable, sharable snapshot of the chain's current
// blocks. Later appends to c do not affect an already-taken Cord.
func (c *Chain) Cord() Cord {
	blocks := make([][]byte, len(c.blocks))
	copy(blocks, c.blocks)
	return Cord{blocks: blocks, size: c.size}
}

// Cord is the read-only, sharable view produced by Chain.Cord. Its
// blocks are never mutated or copied until Bytes is called.
type Cord struct {
	blocks [][]byte
	size   int64
}

// Len reports the total number of bytes across all blocks.
func (c Cord) Len() int64 { return c.size }

// Bytes flattens the cord into a single contiguous slice, copying.
func (c Cord) Bytes() []byte {
	out := make([]byte, 0, c.size)
	for _, b := range c.blocks {
		out = append(out, b...)
	}
	return out
}

// Reader returns an io.Reader over the cord's blocks without
// flattening them.
func (c Cord) Reader() io.Reader {
	readers := make([]io.Reader, len(c.blocks))
	for i, b := range c.blocks {
		readers[i] = bytes.NewReader(b)
	}
	return io.MultiReader(readers...)
}

// ReadInto appends up to n bytes (n < 0 means until end-of-source) from
// r into dst, preserving the source's natural block boundaries instead
// of forcing everything into one contiguous buffer.
func ReadInto(r Reader, dst *Chain, n int64) (int64, error) {
	const blockSize = 32 * 1024
	var total int64
	for n < 0 || total < n {
		want := int64(blockSize)
		if n >= 0 {
			if remain := n - total; remain < want {
				want = remain
			}
		}
		if want <= 0 {
			break
		}
		block := make([]byte, want)
		nr, err := r.Read(block)
		if nr > 0 {
			dst.Append(block[:nr])
			total += int64(nr)
		}
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
		if nr == 0 {
			return total, nil
		}
	}
	return total, nil
}

// WriteFrom writes every block of src to w in order, returning the
// total bytes written. It exists alongside ReadInto so a Cord built
// from one stream's natural block boundaries can be replayed to
// another without forcing it through a single contiguous buffer.
func WriteFrom(w Writer, src Cord) (int64, error) {
	var total int64
	for _, b := range src.blocks {
		n, err := w.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// NullWriter returns a Writer that accepts and discards any number of
// bytes, tracking only a position. It is the usual inner sink for a
// DigestingWriter used purely to compute a digest.
func NullWriter() Writer { return &nullWriter{} }

type nullWriter struct {
	pos int64
}

func (w *nullWriter) Write(p []byte) (int, error) {
	w.pos += int64(len(p))
	return len(p), nil
}
func (w *nullWriter) Push(min, recommended int) bool { return true }
func (w *nullWriter) Available() int                 { return math.MaxInt32 }
func (w *nullWriter) Pos() int64                     { return w.pos }
func (w *nullWriter) WriteZeros(n int64) error {
	if n < 0 {
		return InvalidArgument("streamio: negative fill length %d", n)
	}
	w.pos += n
	return nil
}
func (w *nullWriter) WriteChars(n int64, _ byte) error { return w.WriteZeros(n) }
func (w *nullWriter) WriteFloat32(v float32) error {
	b := float32Bytes(v)
	_, err := w.Write(b[:])
	return err
}
func (w *nullWriter) WriteFloat64(v float64) error {
	b := float64Bytes(v)
	_, err := w.Write(b[:])
	return err
}
func (w *nullWriter) Flush(FlushType) error      { return nil }
func (w *nullWriter) Seek(pos int64) error       { w.pos = pos; return nil }
func (w *nullWriter) Truncate(int64) error       { return nil }
func (w *nullWriter) SupportsRandomAccess() bool { return true }
func (w *nullWriter) SupportsTruncate() bool     { return true }
func (w *nullWriter) SupportsReadMode() bool     { return false }
func (w *nullWriter) ReadMode(int64) (Reader, error) {
	return nil, Unimplemented("streamio: NullWriter does not support ReadMode")
}
func (w *nullWriter) IsOK() bool   { return true }
func (w *nullWriter) Err() error   { return nil }
func (w *nullWriter) Close() error { return nil }

// DiscardReader returns a Reader that is permanently at end-of-source.
func DiscardReader() Reader { return discardReader{} }

type discardReader struct{}

func (discardReader) Read([]byte) (int, error)     { return 0, io.EOF }
func (discardReader) Pull(min, _ int) bool         { return min <= 0 }
func (discardReader) Available() int                { return 0 }
func (discardReader) Pos() int64                    { return 0 }
func (discardReader) Skip(int64) (int64, error)     { return 0, nil }
func (discardReader) Seek(pos int64) error {
	if pos == 0 {
		return nil
	}
	return ResourceExhausted("streamio: DiscardReader has no bytes to seek to position %d", pos)
}
func (discardReader) Size() (int64, error)             { return 0, nil }
func (discardReader) SupportsRandomAccess() bool        { return true }
func (discardReader) SupportsRewind() bool              { return true }
func (discardReader) SupportsNewReader() bool           { return true }
func (discardReader) NewReader(int64) (Reader, error)   { return discardReader{}, nil }
func (discardReader) CopyTo(int64, Writer) (int64, error) { return 0, nil }
func (discardReader) IsOK() bool                        { return true }
func (discardReader) Err() error                        { return nil }
func (discardReader) Close() error                      { return nil }
