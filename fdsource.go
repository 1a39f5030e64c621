// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"io"
	"os"
	"strings"
)

// fdReadCap bounds every individual read so that one call never blocks
// on an unreasonably large chunk of a slow or unusual device.
const fdReadCap = 1 << 30 // 1 GiB

// FdSourceOptions configures a FdSource. AssumedPos and IndependentPos
// are mutually exclusive.
type FdSourceOptions struct {
	// AssumedFilename overrides the OS lookup used for error messages
	// and the /sys quirk check.
	AssumedFilename string

	// AssumedPos, if set, skips all positioning syscalls: the caller
	// asserts the descriptor is already positioned here, and random
	// access is disabled.
	AssumedPos *int64

	// IndependentPos, if set, puts the source in independent-position
	// mode (pread, an internally tracked offset, no effect on the
	// descriptor's shared kernel offset) starting at this position.
	IndependentPos *int64

	// GrowingSource indicates the file may still receive more bytes
	// after the current end-of-source.
	GrowingSource bool

	BufferOptions BufferOptions
}

// FdSource is a Reader backed by an open file descriptor/handle.
type FdSource struct {
	bufferedReader

	file *os.File
	owns bool
	opts FdSourceOptions

	filename string

	independentPos bool
	pos            int64 // valid only when independentPos

	randomAccess    bool
	randomAccessErr error

	exactSize      *int64
	sequentialHint bool
}

// NewFdSource wraps file, which is closed by this source's Close iff
// owns is true.
func NewFdSource(file *os.File, opts FdSourceOptions, owns bool) (*FdSource, error) {
	if opts.AssumedPos != nil && opts.IndependentPos != nil {
		return nil, InvalidArgument("streamio: FdSourceOptions.AssumedPos and IndependentPos are mutually exclusive")
	}
	s := &FdSource{file: file, owns: owns, opts: opts}
	s.bufferedReader = newBufferedReader(opts.BufferOptions, s.readInternal)

	s.filename = opts.AssumedFilename
	if s.filename == "" {
		s.filename = platformLookupFilename(file)
	}
	s.initializePos()
	return s, nil
}

func (s *FdSource) initializePos() {
	switch {
	case s.opts.AssumedPos != nil:
		s.bufferedReader.startPos = *s.opts.AssumedPos
		s.randomAccess = false
		s.randomAccessErr = Unimplemented("streamio: FdSource has an assumed position; random access disabled")

	case s.opts.IndependentPos != nil:
		s.independentPos = true
		s.pos = *s.opts.IndependentPos
		s.bufferedReader.startPos = *s.opts.IndependentPos
		s.randomAccess = true

	default:
		cur, err := platformSeek(s.file, 0, io.SeekCurrent)
		if err != nil {
			s.randomAccess = false
			s.randomAccessErr = Annotate(FromOSError(err), "streamio: probing seekability of %s", s.displayName())
			return
		}
		s.bufferedReader.startPos = cur
		end, err := platformSeek(s.file, 0, io.SeekEnd)
		if err != nil {
			s.randomAccess = false
			s.randomAccessErr = Annotate(FromOSError(err), "streamio: probing size of %s", s.displayName())
			return
		}
		if _, err := platformSeek(s.file, cur, io.SeekStart); err != nil {
			s.randomAccess = false
			s.randomAccessErr = Annotate(FromOSError(err), "streamio: restoring position of %s", s.displayName())
			return
		}
		s.setExactSize(end)
		s.randomAccess = true
		if fi, err := s.file.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			// Character devices such as /dev/null accept lseek without
			// being seekable in any useful sense.
			s.randomAccess = false
			s.randomAccessErr = Unimplemented("streamio: %s is a character device; random access disabled", s.displayName())
		}
		if strings.HasPrefix(s.filename, "/sys/") {
			// /sys files often report a size and accept seeks that
			// later fail on the actual read; never trust them.
			s.randomAccess = false
			s.randomAccessErr = Unimplemented("streamio: /sys files are not treated as random-access")
		}
	}
}

func (s *FdSource) setExactSize(v int64) { s.exactSize = &v }

func (s *FdSource) displayName() string {
	if s.filename != "" {
		return s.filename
	}
	return "<fd>"
}

// readInternal is the FdSource's ReadInternal hook.
func (s *FdSource) readInternal(min int, dst []byte) (n int, ok bool, err error) {
	for n < min {
		want := len(dst) - n
		if want > fdReadCap {
			want = fdReadCap
		}
		var nr int
		var rerr error
		if s.independentPos {
			nr, rerr = platformPread(s.file, dst[n:n+want], s.pos)
			s.pos += int64(nr)
		} else {
			nr, rerr = platformRead(s.file, dst[n:n+want])
		}
		n += nr
		if rerr != nil {
			if rerr == io.EOF {
				return n, false, nil
			}
			return n, false, Annotate(FromOSError(rerr), "streamio: reading %s at byte %d", s.displayName(), s.Pos())
		}
		if nr == 0 {
			return n, false, nil
		}
	}
	return n, true, nil
}

// SetReadAllHint tells the OS whether this source is about to be read
// sequentially end to end, issuing POSIX_FADV_SEQUENTIAL (or
// POSIX_FADV_NORMAL on revert) where the platform supports it.
func (s *FdSource) SetReadAllHint(sequential bool) {
	if s.sequentialHint == sequential {
		return
	}
	s.sequentialHint = sequential
	platformSetSequentialHint(s.file, sequential)
}

func (s *FdSource) Skip(n int64) (int64, error) { return skipDefault(s, n) }

func (s *FdSource) Size() (int64, error) {
	if s.exactSize != nil {
		return *s.exactSize, nil
	}
	return 0, Unimplemented("streamio: FdSource does not know its size")
}

func (s *FdSource) SupportsRandomAccess() bool { return s.randomAccess }
func (s *FdSource) SupportsRewind() bool       { return s.randomAccess }
func (s *FdSource) SupportsNewReader() bool    { return s.randomAccess }

func (s *FdSource) Seek(pos int64) error {
	if !s.IsOK() {
		return s.Err()
	}
	if s.bufferedReader.seekWithinBuffer(pos) {
		return nil
	}
	if !s.randomAccess {
		return Annotate(s.randomAccessErr, "streamio: seeking %s to byte %d", s.displayName(), pos)
	}
	if s.independentPos {
		s.pos = pos
	} else if _, err := platformSeek(s.file, pos, io.SeekStart); err != nil {
		return Annotate(FromOSError(err), "streamio: seeking %s to byte %d", s.displayName(), pos)
	}
	s.bufferedReader.discardBuffered()
	s.bufferedReader.startPos = pos
	return nil
}

// NewReader duplicates this source into an independent, unowned
// reader that uses independent-position mode, inheriting the current
// exact size and buffer policy.
func (s *FdSource) NewReader(pos int64) (Reader, error) {
	if !s.SupportsNewReader() {
		return nil, Unimplemented("streamio: FdSource cannot create a new reader: random access not supported")
	}
	ip := pos
	opts := FdSourceOptions{
		AssumedFilename: s.filename,
		IndependentPos:  &ip,
		GrowingSource:   s.opts.GrowingSource,
	}
	ShareBufferTo(s.opts.BufferOptions, &opts.BufferOptions)
	ns, err := NewFdSource(s.file, opts, false)
	if err != nil {
		return nil, err
	}
	if s.exactSize != nil {
		ns.setExactSize(*s.exactSize)
	}
	return ns, nil
}

// CopyTo transfers up to n bytes to w. When w is a *FdSink backed by a
// regular file, it attempts a kernel-to-kernel copy_file_range loop
// before falling back to the generic buffered copy.
func (s *FdSource) CopyTo(n int64, w Writer) (int64, error) {
	if sink, ok := w.(*FdSink); ok {
		written, done, err := s.copyFileRangeTo(n, sink)
		if done {
			return written, err
		}
		if written > 0 {
			rest := n
			if n >= 0 {
				rest = n - written
			}
			m, err := boundedCopy(s, rest, w)
			return written + m, err
		}
	}
	return boundedCopy(s, n, w)
}

// copyFileRangeTo attempts the zero-copy path; done reports whether
// the transfer (successful or not) should be treated as final rather
// than falling back to a generic copy.
func (s *FdSource) copyFileRangeTo(n int64, sink *FdSink) (written int64, done bool, err error) {
	if !sink.bufferedWriter.flushBuffered() {
		return 0, true, sink.Err()
	}
	var srcOff, dstOff *int64
	if s.independentPos {
		srcOff = &s.pos
	}
	if sink.independentPos {
		dstOff = &sink.pos
	}
	remaining := n
	for remaining < 0 || written < remaining {
		want := int64(1 << 30)
		if remaining >= 0 {
			if left := remaining - written; left < want {
				want = left
			}
		}
		if want <= 0 {
			break
		}
		nw, handled, cerr := platformCopyFileRange(sink.file, s.file, srcOff, dstOff, want)
		if !handled {
			// Unsupported for this pair of descriptors (append mode,
			// cross-filesystem, non-regular file, ...): let the
			// caller copy the rest generically, keeping the bytes
			// already moved.
			return written, false, nil
		}
		if cerr != nil {
			return written, true, Annotate(FromOSError(cerr), "streamio: copy_file_range from %s to %s", s.displayName(), sink.displayName())
		}
		if nw == 0 {
			break // end of source
		}
		written += nw
		if !s.independentPos {
			s.bufferedReader.startPos += nw
		}
		if !sink.independentPos {
			sink.bufferedWriter.startPos += nw
		}
	}
	return written, true, nil
}

func (s *FdSource) IsOK() bool { return s.bufferedReader.IsOK() }
func (s *FdSource) Err() error { return s.bufferedReader.Err() }

func (s *FdSource) Close() error {
	err := s.bufferedReader.Close()
	if s.owns {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
