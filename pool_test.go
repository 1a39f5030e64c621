// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamio

import (
	"sync"
	"testing"
)

func TestRecyclingPoolReusesPutItems(t *testing.T) {
	p := NewRecyclingPool[*int](2)
	factoryCalls := 0
	factory := func() (*int, error) {
		factoryCalls++
		v := 0
		return &v, nil
	}

	v1, err := p.Get(factory)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if factoryCalls != 1 {
		t.Fatalf("factoryCalls = %d, want 1", factoryCalls)
	}

	*v1 = 42
	recycled := false
	p.Put(v1, func(v *int) { *v = 0; recycled = true }, nil)
	if !recycled {
		t.Fatalf("recycler was not called on Put")
	}

	v2, err := p.Get(factory)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v2 != v1 {
		t.Fatalf("expected the pooled item to be reused")
	}
	if *v2 != 0 {
		t.Fatalf("expected the reused item to have been reset, got %d", *v2)
	}
	if factoryCalls != 1 {
		t.Fatalf("factoryCalls = %d, want 1 (no second factory call)", factoryCalls)
	}
}

func TestRecyclingPoolDestroysOverCapacity(t *testing.T) {
	p := NewRecyclingPool[*int](1)
	a, b := new(int), new(int)

	destroyed := []*int{}
	destroyer := func(v *int) { destroyed = append(destroyed, v) }

	p.Put(a, nil, destroyer)
	p.Put(b, nil, destroyer)

	if len(destroyed) != 1 || destroyed[0] != b {
		t.Fatalf("expected the second Put to overflow capacity and be destroyed, got %v", destroyed)
	}
}

func TestRecyclingPoolConcurrentUse(t *testing.T) {
	p := NewRecyclingPool[*int](4)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := p.Get(func() (*int, error) { n := 0; return &n, nil })
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			*v++
			p.Put(v, func(v *int) { *v = 0 }, nil)
		}()
	}
	wg.Wait()
}
