// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio


// DigestingReader wraps an inner Reader and tees every byte that
// passes through to a Digester, in source order, exactly once,
// regardless of how the caller chooses to slice its Read/CopyTo calls.
//
// Seeking is not supported: moving the cursor without reading would
// desynchronize the digest from the bytes the caller actually
// observes, so SupportsRandomAccess is always false and Seek always
// fails.
type DigestingReader struct {
	inner ownedInner[Reader]
	dig   Digester
}

// NewDigestingReader wraps inner, which is closed by this reader's
// Close iff owns is true.
func NewDigestingReader(inner Reader, dig Digester, owns bool) *DigestingReader {
	return &DigestingReader{inner: ownedInner[Reader]{inner: inner, owns: owns}, dig: dig}
}

// Digest returns the digest of every byte delivered so far. It may be
// called after any successful operation, including after Close; a
// failure on the inner reader does not taint bytes digested before
// the failure.
func (d *DigestingReader) Digest() uint32 { return d.dig.Digest() }

func (d *DigestingReader) Read(p []byte) (int, error) {
	n, err := d.inner.inner.Read(p)
	if n > 0 {
		d.dig.Write(p[:n])
	}
	return n, err
}

func (d *DigestingReader) Pull(min, recommended int) bool { return d.inner.inner.Pull(min, recommended) }
func (d *DigestingReader) Available() int                 { return d.inner.inner.Available() }
func (d *DigestingReader) Pos() int64                      { return d.inner.inner.Pos() }
func (d *DigestingReader) Skip(n int64) (int64, error)      { return skipDefault(d, n) }

func (d *DigestingReader) Seek(pos int64) error {
	return Unimplemented("streamio: DigestingReader does not support Seek")
}

func (d *DigestingReader) Size() (int64, error) { return d.inner.inner.Size() }

func (d *DigestingReader) SupportsRandomAccess() bool { return false }
func (d *DigestingReader) SupportsRewind() bool       { return false }
func (d *DigestingReader) SupportsNewReader() bool    { return false }

func (d *DigestingReader) NewReader(int64) (Reader, error) {
	return nil, Unimplemented("streamio: DigestingReader does not support NewReader")
}

func (d *DigestingReader) CopyTo(n int64, w Writer) (int64, error) {
	return boundedCopy(d, n, w)
}

// Peek forwards to the inner reader when it supports peeking. Peeking
// does not consume bytes, so it never touches the digest.
func (d *DigestingReader) Peek(n int) ([]byte, error) {
	pk, ok := d.inner.inner.(peeker)
	if !ok {
		return nil, Unimplemented("streamio: DigestingReader's inner reader does not support Peek")
	}
	return pk.Peek(n)
}

func (d *DigestingReader) IsOK() bool { return d.inner.inner.IsOK() }
func (d *DigestingReader) Err() error { return d.inner.inner.Err() }

func (d *DigestingReader) Close() error { return d.inner.closeInner() }

// DigestingWriter wraps an inner Writer and tees every byte written
// through it (including via WriteZeros/WriteChars) to a Digester, in
// issue order, exactly once.
type DigestingWriter struct {
	inner ownedInner[Writer]
	dig   Digester
}

// NewDigestingWriter wraps inner, which is closed by this writer's
// Close iff owns is true.
func NewDigestingWriter(inner Writer, dig Digester, owns bool) *DigestingWriter {
	return &DigestingWriter{inner: ownedInner[Writer]{inner: inner, owns: owns}, dig: dig}
}

// Digest returns the digest of every byte written so far.
func (d *DigestingWriter) Digest() uint32 { return d.dig.Digest() }

func (d *DigestingWriter) Write(p []byte) (int, error) {
	n, err := d.inner.inner.Write(p)
	if n > 0 {
		d.dig.Write(p[:n])
	}
	return n, err
}

func (d *DigestingWriter) Push(min, recommended int) bool { return d.inner.inner.Push(min, recommended) }
func (d *DigestingWriter) Available() int                  { return d.inner.inner.Available() }
func (d *DigestingWriter) Pos() int64                       { return d.inner.inner.Pos() }

func (d *DigestingWriter) WriteZeros(n int64) error { return d.writeFill(n, 0) }
func (d *DigestingWriter) WriteChars(n int64, b byte) error { return d.writeFill(n, b) }

func (d *DigestingWriter) WriteFloat32(v float32) error {
	b := float32Bytes(v)
	_, err := d.Write(b[:])
	return err
}

func (d *DigestingWriter) WriteFloat64(v float64) error {
	b := float64Bytes(v)
	_, err := d.Write(b[:])
	return err
}

func (d *DigestingWriter) writeFill(n int64, b byte) error {
	if n < 0 {
		return InvalidArgument("streamio: negative fill length %d", n)
	}
	var chunk [4096]byte
	for i := range chunk {
		chunk[i] = b
	}
	for n > 0 {
		sz := int64(len(chunk))
		if sz > n {
			sz = n
		}
		nw, err := d.Write(chunk[:sz])
		n -= int64(nw)
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *DigestingWriter) Flush(level FlushType) error { return d.inner.inner.Flush(level) }

// Seek and Truncate are not supported: moving the write position
// without writing, or discarding already-written bytes, would
// desynchronize the digest from the bytes the caller actually issued.
func (d *DigestingWriter) Seek(int64) error {
	return Unimplemented("streamio: DigestingWriter does not support Seek")
}

func (d *DigestingWriter) Truncate(int64) error {
	return Unimplemented("streamio: DigestingWriter does not support Truncate")
}

func (d *DigestingWriter) SupportsRandomAccess() bool { return false }
func (d *DigestingWriter) SupportsTruncate() bool      { return false }
func (d *DigestingWriter) SupportsReadMode() bool      { return d.inner.inner.SupportsReadMode() }

func (d *DigestingWriter) ReadMode(pos int64) (Reader, error) { return d.inner.inner.ReadMode(pos) }

func (d *DigestingWriter) IsOK() bool { return d.inner.inner.IsOK() }
func (d *DigestingWriter) Err() error { return d.inner.inner.Err() }

func (d *DigestingWriter) Close() error { return d.inner.closeInner() }
