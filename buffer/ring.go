package buffer

import (
	"sync"
)

// Ring keeps the last cap values pushed into it. Push overwrites the oldest
// value once full.
type Ring[T any] struct {
	mu *sync.Mutex

	buf   []T
	first uint64
	last  uint64
	size  uint64
}

func NewRing[T any](size int) *Ring[T] {
	if size < 1 {
		size = 1
	}
	return &Ring[T]{
		mu:   new(sync.Mutex),
		buf:  make([]T, size),
		size: uint64(size),
	}
}

func (r *Ring[T]) Push(t T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.first-r.last == r.size {
		r.last++
	}
	r.buf[r.first%r.size] = t
	r.first++
}

// Values returns a copy ordered from oldest to newest.
func (r *Ring[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	var values = make([]T, 0, r.first-r.last)
	for i := r.last; i < r.first; i++ {
		values = append(values, r.buf[i%r.size])
	}
	return values
}

// Last returns the newest value.
func (r *Ring[T]) Last() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.first == r.last {
		var t T
		return t, false
	}
	return r.buf[(r.first-1)%r.size], true
}

func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.first - r.last)
}

func (r *Ring[T]) Cap() int {
	return int(r.size)
}

func (r *Ring[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.first = 0
	r.last = 0
}
