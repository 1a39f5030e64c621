// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import "sync"

// RecyclingPool is a process-wide, bounded, thread-safe pool of
// expensive-to-construct values of type T (a Zstd decompression
// context, for instance). It never blocks: Get falls back to factory
// when the pool is empty, and Put drops the value to destroyer when
// the pool is already at capacity.
type RecyclingPool[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
}

// NewRecyclingPool returns a pool that holds at most capacity idle
// items. A non-positive capacity is treated as 1.
func NewRecyclingPool[T any](capacity int) *RecyclingPool[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &RecyclingPool[T]{capacity: capacity}
}

// Get removes and returns an idle item, or calls factory to build one
// if the pool is currently empty.
func (p *RecyclingPool[T]) Get(factory func() (T, error)) (T, error) {
	p.mu.Lock()
	if n := len(p.items); n > 0 {
		item := p.items[n-1]
		p.items = p.items[:n-1]
		p.mu.Unlock()
		return item, nil
	}
	p.mu.Unlock()
	return factory()
}

// Put resets item via recycler and returns it to the pool if there is
// room; otherwise it calls destroyer on item instead. Either callback
// may be nil.
func (p *RecyclingPool[T]) Put(item T, recycler func(T), destroyer func(T)) {
	p.mu.Lock()
	if len(p.items) < p.capacity {
		if recycler != nil {
			recycler(item)
		}
		p.items = append(p.items, item)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	if destroyer != nil {
		destroyer(item)
	}
}
