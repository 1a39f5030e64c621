// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"hash/adler32"
	"hash/crc32"
)

// Digester is an incremental, cheap-to-copy accumulator over bytes. It
// has no I/O and cannot fail: Write only ever records bytes.
//
// Updates must be associative over byte concatenation: splitting a
// sequence into any number of Write calls must produce the same final
// Digest as a single call with the concatenation.
type Digester interface {
	Write(p []byte)
	Digest() uint32
}

// crc32Digester implements Digester over a crc32.Table.
type crc32Digester struct {
	tab *crc32.Table
	sum uint32
}

func (d *crc32Digester) Write(p []byte) { d.sum = crc32.Update(d.sum, d.tab, p) }
func (d *crc32Digester) Digest() uint32 { return d.sum }

// crc32cTable is the Castagnoli polynomial table, used by storage and
// network protocols (iSCSI, ext4, the tables also underlying this
// package's CRC32C) in preference to the classic CRC-32 (zlib/gzip)
// polynomial because it has better error-detection properties at
// typical frame sizes. crc32.MakeTable picks the SSE4.2/ARM64
// CRC32 hardware path automatically when the architecture has it,
// which is the "hardware when available" behavior spec.md asks for.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// NewCRC32CDigester returns a Digester computing CRC-32C (Castagnoli).
func NewCRC32CDigester() Digester { return &crc32Digester{tab: crc32cTable} }

// NewCRC32Digester returns a Digester computing CRC-32 (the zlib/gzip
// polynomial).
func NewCRC32Digester() Digester { return &crc32Digester{tab: crc32.IEEETable} }

// adler32Digester wraps a live hash.Hash32 for incremental Adler-32.
type adler32Digester struct {
	h interface {
		Write(p []byte) (int, error)
		Sum32() uint32
	}
}

func (d *adler32Digester) Write(p []byte) { _, _ = d.h.Write(p) }
func (d *adler32Digester) Digest() uint32 { return d.h.Sum32() }

// NewAdler32Digester returns a Digester computing Adler-32.
func NewAdler32Digester() Digester { return &adler32Digester{h: adler32.New()} }

// MultiDigester fans a single byte stream out to several inner
// Digesters, so one DigestingReader/DigestingWriter pass can produce
// more than one checksum (container formats commonly record both a
// per-block CRC and a whole-file checksum, for example).
type MultiDigester struct {
	inner []Digester
}

// NewMultiDigester returns a Digester that forwards every Write to
// each of inner and whose Digest is the first inner digester's.
// Callers needing the other digests keep their own references to the
// inner Digesters passed in.
func NewMultiDigester(inner ...Digester) *MultiDigester {
	return &MultiDigester{inner: inner}
}

func (m *MultiDigester) Write(p []byte) {
	for _, d := range m.inner {
		d.Write(p)
	}
}

func (m *MultiDigester) Digest() uint32 {
	if len(m.inner) == 0 {
		return 0
	}
	return m.inner[0].Digest()
}
