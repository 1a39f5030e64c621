// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func zstdCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestZstdDecoderRoundTrip(t *testing.T) {
	want := strings.Repeat("The quick brown fox ", 1000)
	compressed := zstdCompress(t, []byte(want))

	src := newSliceSourceReader(compressed, BufferOptions{})
	dec, err := NewZstdDecoder(src, ZstdDecoderOptions{}, true)
	if err != nil {
		t.Fatalf("NewZstdDecoder: %v", err)
	}
	defer dec.Close()

	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != want {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(want))
	}
	if !dec.IsOK() {
		t.Fatalf("decoder should still be ok at EOF, err=%v", dec.Err())
	}

	// A further zero-byte read past the clean end must still report ok.
	n, err := dec.Read(make([]byte, 0))
	if err != nil || n != 0 {
		t.Fatalf("trailing zero-byte Read = %d, %v", n, err)
	}
	if !dec.IsOK() {
		t.Fatalf("decoder must remain ok after reading past a clean end")
	}
}

func TestZstdDecoderSizeFromFrameHeader(t *testing.T) {
	want := strings.Repeat("x", 20000)
	compressed := zstdCompress(t, []byte(want))

	src := newSliceSourceReader(compressed, BufferOptions{})
	dec, err := NewZstdDecoder(src, ZstdDecoderOptions{}, true)
	if err != nil {
		t.Fatalf("NewZstdDecoder: %v", err)
	}
	defer dec.Close()

	size, err := dec.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 20000 {
		t.Fatalf("Size() = %d, want 20000", size)
	}
}

func TestZstdDecoderTruncatedNonGrowingFails(t *testing.T) {
	want := strings.Repeat("The quick brown fox ", 1000)
	compressed := zstdCompress(t, []byte(want))
	truncated := compressed[:len(compressed)-10]

	src := newSliceSourceReader(truncated, BufferOptions{})
	dec, err := NewZstdDecoder(src, ZstdDecoderOptions{GrowingSource: false}, true)
	if err != nil {
		t.Fatalf("NewZstdDecoder: %v", err)
	}
	defer dec.Close()

	_, err = io.ReadAll(dec)
	if CodeOf(err) != CodeInvalidArgument {
		t.Fatalf("CodeOf(err) = %v, want CodeInvalidArgument; err=%v", CodeOf(err), err)
	}
}

func TestZstdDecoderTruncatedGrowingSourceRecovers(t *testing.T) {
	want := strings.Repeat("The quick brown fox ", 1000)
	compressed := zstdCompress(t, []byte(want))
	missing := compressed[len(compressed)-10:]
	truncated := compressed[:len(compressed)-10]

	growable := newGrowableSourceReader(truncated)
	dec, err := NewZstdDecoder(growable, ZstdDecoderOptions{GrowingSource: true}, true)
	if err != nil {
		t.Fatalf("NewZstdDecoder: %v", err)
	}
	defer dec.Close()

	partial, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("ReadAll on truncated growing source should not fail: %v", err)
	}
	if !dec.IsOK() {
		t.Fatalf("decoder must remain ok on a truncated growing source")
	}
	if !dec.Truncated() {
		t.Fatalf("decoder must report Truncated() after stopping on an incomplete frame")
	}
	if len(partial) == 0 || len(partial) > len(want) {
		t.Fatalf("partial decode length %d out of expected range", len(partial))
	}

	growable.append(missing)
	rest, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("ReadAll after appending missing bytes: %v", err)
	}
	if string(partial)+string(rest) != want {
		t.Fatalf("completed decode mismatch: got %d bytes, want %d", len(partial)+len(rest), len(want))
	}
}

func TestZstdDecoderSingleByteSource(t *testing.T) {
	want := "one byte at a time, still decodes fine"
	compressed := zstdCompress(t, []byte(want))

	src := newSliceSourceReader(compressed, BufferOptions{MinBufferSize: 1})
	dec, err := NewZstdDecoder(src, ZstdDecoderOptions{}, true)
	if err != nil {
		t.Fatalf("NewZstdDecoder: %v", err)
	}
	defer dec.Close()

	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// growableSourceReader is a Reader over a slice that can receive more
// bytes after its current end has already been read past, used to
// exercise ZstdDecoder's GrowingSource recovery path.
type growableSourceReader struct {
	bufferedReader
	data []byte
	pos  int
}

func newGrowableSourceReader(data []byte) *growableSourceReader {
	g := &growableSourceReader{data: data}
	g.bufferedReader = newBufferedReader(BufferOptions{}, g.fill)
	return g
}

func (g *growableSourceReader) append(more []byte) { g.data = append(g.data, more...) }

func (g *growableSourceReader) fill(min int, dst []byte) (int, bool, error) {
	n := copy(dst, g.data[g.pos:])
	g.pos += n
	if n == 0 {
		return 0, false, nil
	}
	return n, true, nil
}

func (g *growableSourceReader) Size() (int64, error) {
	return 0, Unimplemented("streamio: growableSourceReader does not know its size")
}
func (g *growableSourceReader) Skip(n int64) (int64, error) { return skipDefault(g, n) }
func (g *growableSourceReader) SupportsRandomAccess() bool { return true }
func (g *growableSourceReader) SupportsRewind() bool       { return true }
func (g *growableSourceReader) SupportsNewReader() bool    { return false }
func (g *growableSourceReader) NewReader(int64) (Reader, error) {
	return nil, Unimplemented("streamio: growableSourceReader cannot create a new reader")
}
func (g *growableSourceReader) Seek(pos int64) error {
	if g.bufferedReader.seekWithinBuffer(pos) {
		return nil
	}
	g.pos = int(pos)
	g.bufferedReader.discardBuffered()
	g.bufferedReader.startPos = pos
	return nil
}
func (g *growableSourceReader) CopyTo(n int64, w Writer) (int64, error) { return boundedCopy(g, n, w) }
