// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

// closer is satisfied by both Reader and Writer.
type closer interface{ Close() error }

// ownedInner models a layered stream's choice, made at construction,
// to own its inner stream by move or merely borrow it: Close on an
// owning holder closes the inner stream, Close on a borrowing holder
// leaves it for the original owner.
type ownedInner[T closer] struct {
	inner T
	owns  bool
}

func (o ownedInner[T]) closeInner() error {
	if o.owns {
		return o.inner.Close()
	}
	return nil
}
