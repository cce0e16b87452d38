package memory

import "sync"

// Scope tracks the buffers of one operation so every early exit releases them.
type Scope struct {
	alloc     Allocator
	bufs      [][]byte
	committed bool
}

var scopePool = sync.Pool{
	New: func() any {
		return &Scope{bufs: make([][]byte, 0, 4)}
	},
}

const maxPooledScopeCapacity = 64

// NewScope returns a scope allocating from alloc (Default() when nil).
func NewScope(alloc Allocator) *Scope {
	s := scopePool.Get().(*Scope)
	if alloc == nil {
		alloc = Default()
	}
	s.alloc = alloc
	s.committed = false
	return s
}

// Alloc allocates n zero bytes and tracks them.
func (s *Scope) Alloc(n int) []byte {
	buf := s.alloc.AllocZeroed(n)
	s.bufs = append(s.bufs, buf)
	return buf
}

// Track adds a buffer obtained elsewhere from the same allocator.
func (s *Scope) Track(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	s.bufs = append(s.bufs, buf)
}

// Commit hands ownership of every tracked buffer to the caller.
func (s *Scope) Commit() {
	s.committed = true
}

// Count returns the number of tracked buffers.
func (s *Scope) Count() int {
	return len(s.bufs)
}

// Close releases tracked buffers unless committed, then recycles the scope.
// The scope must not be used after Close.
func (s *Scope) Close() {
	if !s.committed {
		for _, buf := range s.bufs {
			s.alloc.Release(buf)
		}
	}
	clear(s.bufs)
	s.bufs = s.bufs[:0]
	s.alloc = nil
	// Only pool small scopes to prevent memory bloat
	if cap(s.bufs) > maxPooledScopeCapacity {
		return
	}
	scopePool.Put(s)
}
