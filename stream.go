// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

// lifecycle is the state of a Stream: Open, Closed-OK, Failed, or
// Closed after having Failed. A stream that has failed never recovers;
// Close on a failed stream just records that it is now closed, it does
// not clear the error.
type lifecycle uint8

const (
	lifecycleOpen lifecycle = iota
	lifecycleClosedOK
	lifecycleFailed
	lifecycleClosedFailed
)

// StreamBase is the shared status/lifecycle primitive embedded by every
// Reader and Writer in this package: open/closed/failed state plus the
// latched failure. Close is idempotent; Fail is latched (the first
// failure sticks).
type StreamBase struct {
	state lifecycle
	err   error
}

// IsOK reports whether the stream is healthy: Open or Closed-OK. Once
// Failed, a stream is never OK again.
func (b *StreamBase) IsOK() bool {
	return b.state == lifecycleOpen || b.state == lifecycleClosedOK
}

// IsOpen reports whether the stream can still be operated on.
func (b *StreamBase) IsOpen() bool { return b.state == lifecycleOpen }

// Err returns the latched failure, or nil if the stream never failed.
func (b *StreamBase) Err() error { return b.err }

// Fail latches err as the stream's failure if the stream is still
// open, and returns the latched error (which may be an earlier
// failure, not err, if one was already recorded). On a stream that is
// already closed Fail changes nothing and returns the latched error,
// which is nil after a clean Close. Fail(nil) is a no-op that returns
// the current latched error.
func (b *StreamBase) Fail(err error) error {
	if err == nil {
		return b.err
	}
	if b.state == lifecycleOpen {
		b.state = lifecycleFailed
		b.err = err
	}
	return b.err
}

// Close transitions the stream to closed and returns the latched
// failure, if any. Calling Close more than once is a no-op that keeps
// returning the same result.
func (b *StreamBase) Close() error {
	switch b.state {
	case lifecycleOpen:
		b.state = lifecycleClosedOK
		return nil
	case lifecycleFailed:
		b.state = lifecycleClosedFailed
		return b.err
	default:
		return b.err
	}
}
