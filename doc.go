// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package streamio provides a composable byte-stream I/O core: a family
// of pull-style Readers and push-style Writers that chain together
// (file descriptor -> decompressor -> digester -> consumer, and the
// mirror on write) behind a single buffered-stream contract.
//
// Every Reader and Writer exposes a directly addressable cursor window
// so that small reads and writes stay on an inline fast path; a slow
// path refills or flushes through a hook the concrete stream supplies
// (see bufferedReader and bufferedWriter). Capabilities such as random
// access, rewind, or producing an independent reader are discovered per
// instance, not per type, because they often depend on what is actually
// backing the stream at runtime (a seekable file vs. a pipe, say).
//
// streamio is synchronous and blocking; it does not model asynchronous
// I/O, concurrent access to a single stream, memory-mapped I/O, or a
// virtual filesystem. A single Reader or Writer value must not be used
// from more than one goroutine at a time, with the narrow exception of
// NewReader, which may be called concurrently once its inputs are
// captured, provided the underlying source's NewReader is itself safe
// for concurrent use.
package streamio
