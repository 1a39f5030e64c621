// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package streamio

import "os"

func platformRead(f *os.File, buf []byte) (int, error)  { return f.Read(buf) }
func platformWrite(f *os.File, buf []byte) (int, error) { return f.Write(buf) }

func platformPread(f *os.File, buf []byte, off int64) (int, error) {
	return f.ReadAt(buf, off)
}

func platformPwrite(f *os.File, buf []byte, off int64) (int, error) {
	return f.WriteAt(buf, off)
}

func platformSeek(f *os.File, pos int64, whence int) (int64, error) {
	return f.Seek(pos, whence)
}

func platformSetSequentialHint(f *os.File, sequential bool) {}

func platformCopyFileRange(dst, src *os.File, srcOff, dstOff *int64, n int64) (written int64, handled bool, err error) {
	return 0, false, nil
}

func platformLookupFilename(f *os.File) string { return f.Name() }
