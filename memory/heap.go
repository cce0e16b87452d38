package memory

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/bsoncodec"
	"github.com/wippyai/bsoncodec/errors"
)

// Allocator is the contract implemented by Heap.
type Allocator = bsoncodec.Allocator

// MaxAlloc is the largest single allocation Heap will serve (1 GB).
const MaxAlloc = 1 << 30

// Stats is a snapshot of allocator activity.
type Stats struct {
	Allocs   int64
	Releases int64
	// LiveBytes is the capacity handed out and not yet released.
	LiveBytes int64
}

// Outstanding returns the number of buffers not yet released.
func (s Stats) Outstanding() int64 {
	return s.Allocs - s.Releases
}

// Heap is a zero-filling allocator backed by size-class pools.
type Heap struct {
	pools     classPools
	allocs    atomic.Int64
	releases  atomic.Int64
	liveBytes atomic.Int64
}

var _ Allocator = (*Heap)(nil)

var defaultHeap = NewHeap()

// Default returns the process-wide heap.
func Default() *Heap {
	return defaultHeap
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// AllocZeroed returns n zero bytes. It panics if n is negative or above MaxAlloc.
func (h *Heap) AllocZeroed(n int) []byte {
	if n < 0 || n > MaxAlloc {
		h.exhausted(n)
	}

	var buf []byte
	if cls := classFor(n); cls >= 0 {
		buf = h.pools.get(cls)[:n]
		clear(buf)
	} else {
		buf = make([]byte, n)
	}

	h.allocs.Add(1)
	h.liveBytes.Add(int64(cap(buf)))
	return buf
}

// Realloc resizes buf to n bytes, keeping min(len(buf), n) bytes of content.
// Bytes past the old length are zero. buf must not be used afterwards.
func (h *Heap) Realloc(buf []byte, n int) []byte {
	if n < 0 || n > MaxAlloc {
		h.exhausted(n)
	}
	if buf == nil {
		return h.AllocZeroed(n)
	}

	if n <= cap(buf) {
		old := len(buf)
		buf = buf[:n]
		if n > old {
			clear(buf[old:])
		}
		return buf
	}

	grown := h.AllocZeroed(n)
	copy(grown, buf)
	h.Release(buf)
	return grown
}

// Release returns buf to the heap. Empty buffers are ignored.
func (h *Heap) Release(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	h.releases.Add(1)
	h.liveBytes.Add(-int64(cap(buf)))
	if cls := exactClass(cap(buf)); cls >= 0 {
		h.pools.put(cls, buf)
	}
}

// Stats returns a snapshot of the heap counters.
func (h *Heap) Stats() Stats {
	return Stats{
		Allocs:    h.allocs.Load(),
		Releases:  h.releases.Load(),
		LiveBytes: h.liveBytes.Load(),
	}
}

func (h *Heap) exhausted(n int) {
	err := errors.AllocationFailed(n)
	Logger().Error("allocation failed",
		zap.Int("size", n),
		zap.Int("max", MaxAlloc),
		zap.Error(err),
	)
	panic(err)
}
