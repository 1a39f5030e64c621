// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"io"
	"os"
)

// FdSinkOptions configures a FdSink, the write-side mirror of
// FdSourceOptions.
type FdSinkOptions struct {
	AssumedFilename string
	AssumedPos      *int64
	IndependentPos  *int64
	BufferOptions   BufferOptions
}

// FdSink is a Writer backed by an open file descriptor/handle.
type FdSink struct {
	bufferedWriter

	file *os.File
	owns bool

	filename string

	independentPos bool
	pos            int64

	randomAccess    bool
	randomAccessErr error
}

// NewFdSink wraps file, which is closed by this sink's Close iff owns
// is true.
func NewFdSink(file *os.File, opts FdSinkOptions, owns bool) (*FdSink, error) {
	if opts.AssumedPos != nil && opts.IndependentPos != nil {
		return nil, InvalidArgument("streamio: FdSinkOptions.AssumedPos and IndependentPos are mutually exclusive")
	}
	s := &FdSink{file: file, owns: owns}
	s.bufferedWriter = newBufferedWriter(opts.BufferOptions, s.drain)

	s.filename = opts.AssumedFilename
	if s.filename == "" {
		s.filename = platformLookupFilename(file)
	}

	switch {
	case opts.AssumedPos != nil:
		s.bufferedWriter.startPos = *opts.AssumedPos
		s.randomAccessErr = Unimplemented("streamio: FdSink has an assumed position; random access disabled")
	case opts.IndependentPos != nil:
		s.independentPos = true
		s.pos = *opts.IndependentPos
		s.bufferedWriter.startPos = *opts.IndependentPos
		s.randomAccess = true
	default:
		cur, err := platformSeek(file, 0, io.SeekCurrent)
		if err != nil {
			s.randomAccessErr = Annotate(FromOSError(err), "streamio: probing seekability of %s", s.displayName())
			break
		}
		s.bufferedWriter.startPos = cur
		s.randomAccess = true
	}
	return s, nil
}

func (s *FdSink) displayName() string {
	if s.filename != "" {
		return s.filename
	}
	return "<fd>"
}

// drain is the FdSink's WriteInternal hook.
func (s *FdSink) drain(min int, src []byte) (n int, err error) {
	for n < len(src) {
		var nw int
		var werr error
		if s.independentPos {
			nw, werr = platformPwrite(s.file, src[n:], s.pos)
			s.pos += int64(nw)
		} else {
			nw, werr = platformWrite(s.file, src[n:])
		}
		n += nw
		if werr != nil {
			return n, Annotate(FromOSError(werr), "streamio: writing %s at byte %d", s.displayName(), s.Pos())
		}
		if n >= min {
			return n, nil
		}
		if nw == 0 {
			return n, io.ErrNoProgress
		}
	}
	return n, nil
}

// Seek flushes any buffered bytes and repositions the sink. In
// independent-position mode it only adjusts the internally tracked
// offset; otherwise it seeks the descriptor's shared position.
func (s *FdSink) Seek(pos int64) error {
	if !s.IsOK() {
		return s.Err()
	}
	if !s.randomAccess {
		return Annotate(s.randomAccessErr, "streamio: seeking %s to byte %d", s.displayName(), pos)
	}
	if !s.bufferedWriter.flushBuffered() {
		return s.Err()
	}
	if s.independentPos {
		s.pos = pos
	} else if _, err := platformSeek(s.file, pos, io.SeekStart); err != nil {
		return Annotate(FromOSError(err), "streamio: seeking %s to byte %d", s.displayName(), pos)
	}
	s.bufferedWriter.startPos = pos
	return nil
}

// Truncate flushes any buffered bytes and resizes the underlying file.
func (s *FdSink) Truncate(size int64) error {
	if !s.IsOK() {
		return s.Err()
	}
	if !s.randomAccess {
		return Annotate(s.randomAccessErr, "streamio: truncating %s to %d bytes", s.displayName(), size)
	}
	if !s.bufferedWriter.flushBuffered() {
		return s.Err()
	}
	if err := s.file.Truncate(size); err != nil {
		return Annotate(FromOSError(err), "streamio: truncating %s to %d bytes", s.displayName(), size)
	}
	return nil
}

func (s *FdSink) SupportsRandomAccess() bool { return s.randomAccess }
func (s *FdSink) SupportsTruncate() bool     { return s.randomAccess }
func (s *FdSink) SupportsReadMode() bool     { return s.randomAccess }

// Flush propagates buffered bytes to the descriptor; FlushFromMachine
// additionally calls fsync.
func (s *FdSink) Flush(level FlushType) error {
	if !s.bufferedWriter.flushBuffered() {
		return s.Err()
	}
	if level == FlushFromMachine {
		if err := s.file.Sync(); err != nil {
			return Annotate(FromOSError(err), "streamio: syncing %s", s.displayName())
		}
	}
	return nil
}

// ReadMode opens an independent-position FdSource over the same
// descriptor, positioned at pos, for sinks that support random access.
func (s *FdSink) ReadMode(pos int64) (Reader, error) {
	if !s.SupportsReadMode() {
		return nil, Unimplemented("streamio: FdSink does not support ReadMode: random access not supported")
	}
	if !s.bufferedWriter.flushBuffered() {
		return nil, s.Err()
	}
	ip := pos
	return NewFdSource(s.file, FdSourceOptions{
		AssumedFilename: s.filename,
		IndependentPos:  &ip,
	}, false)
}

func (s *FdSink) IsOK() bool { return s.bufferedWriter.IsOK() }
func (s *FdSink) Err() error { return s.bufferedWriter.Err() }

func (s *FdSink) Close() error {
	if s.bufferedWriter.IsOpen() {
		_ = s.bufferedWriter.flushBuffered()
	}
	err := s.bufferedWriter.Close()
	if s.owns {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
