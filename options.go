// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

const (
	// DefaultMinBufferSize is the smallest buffer a BufferedReader or
	// BufferedWriter allocates on its first slow-path call.
	DefaultMinBufferSize = 256

	// DefaultMaxBufferSize caps speculative buffer growth. A single
	// Pull/Push request for more than this is still satisfied (the
	// buffer grows to fit it); the cap only limits read-ahead.
	DefaultMaxBufferSize = 1 << 20 // 1 MiB
)

// BufferOptions configures a BufferedReader/BufferedWriter's internal
// buffer. The zero value is ready to use: it behaves as
// {DefaultMinBufferSize, DefaultMaxBufferSize, unknown size hint}.
type BufferOptions struct {
	MinBufferSize int
	MaxBufferSize int

	// SizeHint, if > 0, is an estimate of the total stream size used
	// to pick an initial buffer size. Zero (the default) or a negative
	// value means unknown.
	SizeHint int64
}

func (o BufferOptions) withDefaults() BufferOptions {
	if o.MinBufferSize <= 0 {
		o.MinBufferSize = DefaultMinBufferSize
	}
	if o.MaxBufferSize <= 0 {
		o.MaxBufferSize = DefaultMaxBufferSize
	}
	if o.MaxBufferSize < o.MinBufferSize {
		o.MaxBufferSize = o.MinBufferSize
	}
	if o.SizeHint == 0 {
		o.SizeHint = -1
	}
	return o
}

// initialSize picks a first-allocation buffer size: the configured
// minimum, or the size hint when it is smaller and still useful.
func (o BufferOptions) initialSize() int {
	if o.SizeHint > 0 && o.SizeHint < int64(o.MinBufferSize) {
		return int(o.SizeHint)
	}
	return o.MinBufferSize
}

// FlushType selects how durable a Writer.Flush call must be.
type FlushType uint8

const (
	// FlushFromObject makes data visible to a reader created from the
	// same Writer (e.g. via ReadMode). A no-op for non-owning layers.
	FlushFromObject FlushType = iota
	// FlushFromProcess makes data visible to other processes.
	FlushFromProcess
	// FlushFromMachine makes data durable across a machine crash.
	FlushFromMachine
)

// ShareBufferTo copies buffer-sizing policy from src to dst, letting a
// sibling reader created from the same source start with compatible
// buffering instead of the library defaults.
func ShareBufferTo(src BufferOptions, dst *BufferOptions) {
	*dst = src
}
