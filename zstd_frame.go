// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/klauspost/compress/zstd"
)

const (
	zstdMagicNumber = 0xFD2FB528
	zstdSkippableLo = 0x184D2A50
	zstdSkippableHi = 0x184D2A5F

	// FrameHeaderSizePrefix is the number of leading bytes that are
	// always enough to compute a Zstd frame header's full size.
	FrameHeaderSizePrefix = 5

	// FrameHeaderSizeMax is the largest a single Zstd frame header can
	// be (RFC 8878 section 3.1.1.1).
	FrameHeaderSizeMax = 18
)

// probeFrame inspects the leading bytes of a Zstd-compressed stream
// (as returned by a Peek of up to FrameHeaderSizeMax bytes) and
// reports the frame's declared decompressed size. unknown is true
// when peek is too short to tell yet, or the frame legitimately
// carries no content size field. skippable is true for a skippable
// frame, whose payload this package never decodes.
//
// Parsing is delegated to zstd.Header.Decode, which already knows how
// to read the magic number, the skippable-frame range, and the
// Frame_Header_Descriptor; this only maps its result onto the
// peek/retry shape the rest of this package expects.
func probeFrame(peek []byte) (size uint64, unknown bool, skippable bool, err error) {
	var hdr zstd.Header
	if derr := hdr.Decode(peek); derr != nil {
		if errors.Is(derr, io.ErrUnexpectedEOF) {
			return 0, true, false, nil
		}
		magic := uint32(0)
		if len(peek) >= 4 {
			magic = binary.LittleEndian.Uint32(peek[0:4])
		}
		return 0, false, false, InvalidArgument("streamio: not a Zstd frame (magic number %#08x): %v", magic, derr)
	}
	if hdr.Skippable {
		return 0, false, true, nil
	}
	if !hdr.HasFCS {
		// Legal only for a non-single-segment frame with a zero
		// Frame_Content_Size_Flag: the frame declares no content size
		// (e.g. a true streaming encode).
		return 0, true, false, nil
	}
	return hdr.FrameContentSize, false, false, nil
}
