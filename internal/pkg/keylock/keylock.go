// Package keylock serializes work per key with a fixed set of striped mutexes.
// Two keys may share a stripe, which only costs concurrency, never correctness.
package keylock

import "sync"

// DefaultStripes is used when New is given a non-positive count.
const DefaultStripes = 64

// Striped maps int64 keys onto a fixed set of mutexes.
type Striped struct {
	stripes []sync.Mutex
}

func New(stripes int) *Striped {
	if stripes <= 0 {
		stripes = DefaultStripes
	}
	return &Striped{stripes: make([]sync.Mutex, stripes)}
}

// Lock acquires the stripe of key and returns its unlock function.
//
//	unlock := locks.Lock(int64(id))
//	defer unlock()
func (s *Striped) Lock(key int64) func() {
	m := &s.stripes[s.index(key)]
	m.Lock()
	return m.Unlock
}

func (s *Striped) index(key int64) int {
	return int(uint64(key) % uint64(len(s.stripes)))
}
