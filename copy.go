// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import "io"

// Copy transfers bytes from src to dst until src reaches end-of-source
// or either side fails. It is the package-level equivalent of
// src.CopyTo(-1, dst) for callers that only have plain Reader/Writer
// values (e.g. while composing a chain before the final type is
// known).
func Copy(dst Writer, src Reader) (int64, error) {
	return copyBuffer(dst, src, nil)
}

// CopyBuffer is like Copy but stages data through buf instead of an
// internal stack buffer when buf is non-nil. CopyBuffer panics if buf
// has zero length.
func CopyBuffer(dst Writer, src Reader, buf []byte) (int64, error) {
	if buf != nil && len(buf) == 0 {
		panic("streamio: empty buffer in CopyBuffer")
	}
	return copyBuffer(dst, src, buf)
}

// CopyN copies exactly n bytes from src to dst. On success, written ==
// n; on end-of-source before n bytes were available, written < n and
// err is io.ErrUnexpectedEOF.
func CopyN(dst Writer, src Reader, n int64) (written int64, err error) {
	if n <= 0 {
		return 0, nil
	}
	written, err = src.CopyTo(n, dst)
	if written == n {
		return n, nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return written, err
}

// boundedCopy reads up to n bytes (n < 0 means until end-of-source)
// from src via its Read method and writes them to w. It is the
// fallback CopyTo implementation for Reader types with no cheaper
// transfer path of their own (everything except FdSource, which can
// sometimes move bytes kernel-to-kernel).
func boundedCopy(src Reader, n int64, w Writer) (int64, error) {
	var buf [32 * 1024]byte
	var written int64
	for n < 0 || written < n {
		want := int64(len(buf))
		if n >= 0 {
			if remain := n - written; remain < want {
				want = remain
			}
		}
		if want <= 0 {
			break
		}
		nr, er := src.Read(buf[:want])
		if nr > 0 {
			nw, ew := w.Write(buf[:nr])
			written += int64(nw)
			if ew != nil {
				return written, ew
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er == io.EOF {
				return written, nil
			}
			return written, er
		}
		if nr == 0 {
			return written, nil
		}
	}
	return written, nil
}

func copyBuffer(dst Writer, src Reader, buf []byte) (written int64, err error) {
	if buf == nil {
		return src.CopyTo(-1, dst)
	}

	for {
		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[:nr])
			if nw > 0 {
				written += int64(nw)
			}
			if ew != nil {
				return written, ew
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er == io.EOF {
				return written, nil
			}
			return written, er
		}
		if nr == 0 {
			return written, nil
		}
	}
}
