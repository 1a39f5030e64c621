// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"errors"
	"io"
	"strconv"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPoolCapacity bounds how many idle decompression contexts
// the process-wide pool keeps around.
const zstdDecoderPoolCapacity = 16

// zstdMaxWindow caps the window size a ZstdDecoder will accept,
// matching the conservative limits used elsewhere in the ecosystem for
// untrusted input: 1GiB on 32-bit platforms, 2GiB on 64-bit.
var zstdMaxWindow = func() uint64 {
	if strconv.IntSize == 32 {
		return 1 << 30
	}
	return 1 << 31
}()

var zstdDecoderPool = NewRecyclingPool[*zstd.Decoder](zstdDecoderPoolCapacity)

// ZstdDictionary is an immutable, shareable decompression dictionary.
// A single ZstdDictionary may be pinned by any number of ZstdDecoders
// concurrently; it carries no owned resources of its own to release.
type ZstdDictionary struct {
	raw []byte
}

// NewZstdDictionary wraps raw dictionary bytes for use with
// ZstdDecoderOptions.Dictionary.
func NewZstdDictionary(raw []byte) *ZstdDictionary { return &ZstdDictionary{raw: raw} }

func acquireZstdDecoder(dict *ZstdDictionary) (dec *zstd.Decoder, pooled bool, err error) {
	if dict != nil {
		// A dictionary is baked into the decoder at construction time,
		// so a dictionary-bearing decoder cannot be drawn from the
		// shared (dictionary-less) pool; it is built fresh and closed
		// outright on release instead of recycled.
		d, err := zstd.NewReader(nil,
			zstd.WithDecoderDicts(dict.raw),
			zstd.WithDecoderMaxWindow(zstdMaxWindow),
		)
		return d, false, err
	}
	d, err := zstdDecoderPool.Get(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil, zstd.WithDecoderMaxWindow(zstdMaxWindow))
	})
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func releaseZstdDecoder(dec *zstd.Decoder, pooled bool) {
	if dec == nil {
		return
	}
	if !pooled {
		dec.Close()
		return
	}
	zstdDecoderPool.Put(dec,
		func(d *zstd.Decoder) { _ = d.Reset(nil) },
		func(d *zstd.Decoder) { d.Close() },
	)
}

// ZstdDecoderOptions configures a ZstdDecoder. The zero value decodes
// a non-growing, undictionaried stream with default buffering.
type ZstdDecoderOptions struct {
	// GrowingSource indicates the underlying source may still receive
	// more compressed bytes after the current end-of-source: a
	// truncated frame is reported as "not yet ready" (ok but no more
	// bytes) instead of failing.
	GrowingSource bool

	// Dictionary, if set, is attached to the decompression context for
	// this decoder's lifetime.
	Dictionary *ZstdDictionary

	BufferOptions BufferOptions
}

// ZstdDecoder decodes a RFC 8878 Zstd frame-formatted stream read from
// an inner Reader.
type ZstdDecoder struct {
	bufferedReader

	inner                ownedInner[Reader]
	opts                 ZstdDecoderOptions
	dec                  *zstd.Decoder
	pooled               bool
	initialCompressedPos int64
	exactSize            *int64
	truncated            bool
}

// NewZstdDecoder wraps inner, which is closed by this decoder's Close
// iff owns is true.
func NewZstdDecoder(inner Reader, opts ZstdDecoderOptions, owns bool) (*ZstdDecoder, error) {
	z := &ZstdDecoder{
		inner:                ownedInner[Reader]{inner: inner, owns: owns},
		opts:                 opts,
		initialCompressedPos: inner.Pos(),
	}
	z.bufferedReader = newBufferedReader(opts.BufferOptions, z.readInternal)

	// Peek the frame header before the decompressor starts consuming
	// inner.
	z.probeSize()

	dec, pooled, err := acquireZstdDecoder(opts.Dictionary)
	if err != nil {
		return nil, Internal("streamio: allocating Zstd decompression context: %v", err)
	}
	if err := dec.Reset(inner); err != nil {
		releaseZstdDecoder(dec, pooled)
		return nil, Internal("streamio: resetting Zstd decompression context: %v", err)
	}
	z.dec, z.pooled = dec, pooled
	return z, nil
}

// probeSize peeks the frame header prefix, if the inner reader
// supports peeking, and records exactSize when the frame declares a
// content size. Failure to probe simply leaves the size unknown; the
// real decode path is the source of truth.
func (z *ZstdDecoder) probeSize() {
	pk, ok := z.inner.inner.(peeker)
	if !ok {
		return
	}
	peek, err := pk.Peek(FrameHeaderSizeMax)
	if err != nil && len(peek) == 0 {
		return
	}
	size, unknown, skippable, ferr := probeFrame(peek)
	if ferr != nil {
		return
	}
	if skippable {
		z.setExactSize(0)
		return
	}
	if !unknown {
		z.setExactSize(int64(size))
	}
}

func (z *ZstdDecoder) setExactSize(v int64) { z.exactSize = &v }

// Truncated reports whether the most recent read stopped on an
// incomplete frame with GrowingSource set (rather than a clean
// end-of-stream). It is cleared by a successful rewind.
func (z *ZstdDecoder) Truncated() bool { return z.truncated }

func (z *ZstdDecoder) teardownDecoder() {
	if z.dec != nil {
		releaseZstdDecoder(z.dec, z.pooled)
		z.dec = nil
	}
}

// resumeAfterTruncation re-syncs the decompression context after a
// prior read stopped on an incomplete frame with GrowingSource set. The
// underlying klauspost decoder offers no documented way to resume a
// live Read after it has reported io.ErrUnexpectedEOF, so resumption
// goes through the same rewind-through-reinit path as Seek: the source
// seeks back to the frame's first compressed byte, a fresh
// decompression context replaces the old one, and the bytes already
// delivered to the caller are silently regenerated and discarded. If
// the source cannot rewind, the retry simply re-attempts the old
// context, which will most likely repeat the same truncation.
func (z *ZstdDecoder) resumeAfterTruncation() error {
	if !z.SupportsRewind() {
		return nil
	}
	delivered := z.Pos()
	if err := z.inner.inner.Seek(z.initialCompressedPos); err != nil {
		return Annotate(err, "streamio: resuming a truncated Zstd-compressed source")
	}
	z.teardownDecoder()
	dec, pooled, err := acquireZstdDecoder(z.opts.Dictionary)
	if err != nil {
		return Internal("streamio: reallocating Zstd decompression context: %v", err)
	}
	if err := dec.Reset(z.inner.inner); err != nil {
		releaseZstdDecoder(dec, pooled)
		return Internal("streamio: resetting Zstd decompression context: %v", err)
	}
	z.dec, z.pooled = dec, pooled
	z.truncated = false
	return discardDecoded(dec, delivered)
}

// discardDecoded reads and drops exactly n bytes directly from dec,
// bypassing the outer buffered cursor (whose bookkeeping already
// reflects those bytes as delivered).
func discardDecoded(dec *zstd.Decoder, n int64) error {
	var scratch [32 * 1024]byte
	for n > 0 {
		want := int64(len(scratch))
		if want > n {
			want = n
		}
		nr, err := dec.Read(scratch[:want])
		n -= int64(nr)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if nr == 0 {
			return nil
		}
	}
	return nil
}

// readInternal is the ZstdDecoder's ReadInternal hook: it drives the
// decompressor until at least min bytes are produced or the logical
// stream ends.
func (z *ZstdDecoder) readInternal(min int, dst []byte) (n int, ok bool, err error) {
	if z.dec == nil {
		// Decompressor already torn down after a clean frame end:
		// don't allocate or touch the source again until Seek/rewind.
		return 0, false, nil
	}
	if z.truncated {
		if rerr := z.resumeAfterTruncation(); rerr != nil {
			return 0, false, Annotate(rerr, "streamio: at uncompressed byte %d", z.Pos())
		}
	}
	for n < min {
		nr, rerr := z.dec.Read(dst[n:])
		n += nr
		if rerr == nil {
			if nr == 0 {
				break
			}
			continue
		}
		if errors.Is(rerr, io.EOF) {
			z.teardownDecoder()
			return n, false, nil
		}
		if !z.inner.inner.IsOK() {
			return n, false, Annotate(z.inner.inner.Err(), "streamio: at uncompressed byte %d", z.Pos())
		}
		if errors.Is(rerr, io.ErrUnexpectedEOF) {
			if z.opts.GrowingSource {
				z.truncated = true
				return n, false, nil
			}
			err = InvalidArgument("Truncated Zstd-compressed stream")
			err = Annotate(err, "streamio: at uncompressed byte %d", z.Pos())
			err = Annotate(err, "streamio: reading truncated Zstd-compressed stream")
			return n, false, err
		}
		err = Annotate(InvalidArgument("ZSTD_decompressStream() failed: %v", rerr), "streamio: at uncompressed byte %d", z.Pos())
		return n, false, err
	}
	return n, true, nil
}

func (z *ZstdDecoder) Skip(n int64) (int64, error) { return skipDefault(z, n) }

// Size reports the frame's declared uncompressed size, if known.
func (z *ZstdDecoder) Size() (int64, error) {
	if z.exactSize != nil {
		return *z.exactSize, nil
	}
	return 0, Unimplemented("streamio: Zstd frame does not declare an uncompressed size")
}

// sequentialHinter is implemented by sources that can act on a
// read-ahead hint, such as FdSource.
type sequentialHinter interface {
	SetReadAllHint(sequential bool)
}

// SetReadAllHint forwards a read-ahead hint to the inner source, so a
// consumer decoding a whole Zstd stream front to back can ask the
// underlying file for POSIX_FADV_SEQUENTIAL without reaching past the
// decoder to do it.
func (z *ZstdDecoder) SetReadAllHint(sequential bool) {
	if h, ok := z.inner.inner.(sequentialHinter); ok {
		h.SetReadAllHint(sequential)
	}
}

func (z *ZstdDecoder) SupportsRandomAccess() bool { return false }
func (z *ZstdDecoder) SupportsRewind() bool       { return z.inner.inner.SupportsRewind() }
func (z *ZstdDecoder) SupportsNewReader() bool    { return z.inner.inner.SupportsNewReader() }

// Seek rewinds through re-initialization when pos lands behind the
// buffered window: the source seeks back to the frame's first
// compressed byte, a fresh decompression context replaces the old
// one, and the default buffered skip discards bytes up to pos.
func (z *ZstdDecoder) Seek(pos int64) error {
	if !z.IsOK() {
		return z.Err()
	}
	if z.bufferedReader.seekWithinBuffer(pos) {
		return nil
	}
	cur := z.Pos()
	if pos < cur {
		if !z.SupportsRewind() {
			return Unimplemented("streamio: ZstdDecoder cannot rewind: inner reader does not support rewind")
		}
		if err := z.inner.inner.Seek(z.initialCompressedPos); err != nil {
			return Annotate(err, "streamio: rewinding Zstd-compressed source")
		}
		z.teardownDecoder()
		dec, pooled, err := acquireZstdDecoder(z.opts.Dictionary)
		if err != nil {
			return Internal("streamio: reallocating Zstd decompression context: %v", err)
		}
		if err := dec.Reset(z.inner.inner); err != nil {
			releaseZstdDecoder(dec, pooled)
			return Internal("streamio: resetting Zstd decompression context: %v", err)
		}
		z.dec, z.pooled = dec, pooled
		z.truncated = false
		z.bufferedReader.discardBuffered()
		z.bufferedReader.startPos = 0
		cur = 0
	}
	_, err := skipDefault(z, pos-cur)
	return err
}

// NewReader spawns an independent decoder over a fresh reader from the
// inner source's initial compressed position, then seeks it to pos.
func (z *ZstdDecoder) NewReader(pos int64) (Reader, error) {
	if !z.SupportsNewReader() {
		return nil, Unimplemented("streamio: ZstdDecoder cannot create a new reader: inner source does not support NewReader")
	}
	innerNew, err := z.inner.inner.NewReader(z.initialCompressedPos)
	if err != nil {
		return nil, err
	}
	zd, err := NewZstdDecoder(innerNew, z.opts, true)
	if err != nil {
		return nil, err
	}
	if pos > 0 {
		if err := zd.Seek(pos); err != nil {
			zd.Close()
			return nil, err
		}
	}
	return zd, nil
}

func (z *ZstdDecoder) CopyTo(n int64, w Writer) (int64, error) {
	return boundedCopy(z, n, w)
}

func (z *ZstdDecoder) IsOK() bool {
	return z.bufferedReader.IsOK() && z.inner.inner.IsOK()
}

func (z *ZstdDecoder) Err() error {
	if err := z.bufferedReader.Err(); err != nil {
		return err
	}
	return z.inner.inner.Err()
}

func (z *ZstdDecoder) Close() error {
	z.teardownDecoder()
	err := z.bufferedReader.Close()
	if cerr := z.inner.closeInner(); err == nil {
		err = cerr
	}
	return err
}
