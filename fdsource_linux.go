// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package streamio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func platformRead(f *os.File, buf []byte) (int, error) {
	fd := int(f.Fd())
	for {
		n, err := unix.Read(fd, buf)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func platformPread(f *os.File, buf []byte, off int64) (int, error) {
	fd := int(f.Fd())
	for {
		n, err := unix.Pread(fd, buf, off)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func platformWrite(f *os.File, buf []byte) (int, error) {
	fd := int(f.Fd())
	for {
		n, err := unix.Write(fd, buf)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func platformPwrite(f *os.File, buf []byte, off int64) (int, error) {
	fd := int(f.Fd())
	for {
		n, err := unix.Pwrite(fd, buf, off)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func platformSeek(f *os.File, pos int64, whence int) (int64, error) {
	return unix.Seek(int(f.Fd()), pos, whence)
}

func platformSetSequentialHint(f *os.File, sequential bool) {
	advice := unix.FADV_NORMAL
	if sequential {
		advice = unix.FADV_SEQUENTIAL
	}
	// Best-effort: not every filesystem supports fadvise.
	_ = unix.Fadvise(int(f.Fd()), 0, 0, advice)
}

// platformCopyFileRange attempts a kernel-to-kernel copy of up to n
// bytes, restarting on EINTR. handled is false when the call fails
// with any other error (cross-filesystem, append mode, non-regular
// file, unsupported, ...), signaling the caller to fall back to a
// generic copy; this call itself then moved no bytes.
func platformCopyFileRange(dst, src *os.File, srcOff, dstOff *int64, n int64) (written int64, handled bool, err error) {
	srcFd, dstFd := int(src.Fd()), int(dst.Fd())
	for {
		nw, err := unix.CopyFileRange(srcFd, srcOff, dstFd, dstOff, int(n), 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, false, nil
		}
		return int64(nw), true, nil
	}
}

func platformLookupFilename(f *os.File) string {
	link, err := os.Readlink(fmt.Sprintf("/proc/self/fd/%d", int(f.Fd())))
	if err != nil {
		return ""
	}
	return link
}
