// Package memory provides the allocator every returned codec buffer comes from.
//
// # Contract
//
//	AllocZeroed(n)   n bytes, all zero, owned by the caller
//	Realloc(buf, n)  keeps min(len(buf), n) bytes, zero past the old length
//	Release(buf)     gives buf back; nil is a no-op, double release is undefined
//
// # Exhaustion
//
// There is no recoverable error path. A request larger than MaxAlloc, or a
// negative size, is logged and then panics with an allocation error
// (errors.KindAllocation). Higher layers therefore never check allocations.
//
// # Size Classes
//
// Heap serves requests up to 64 KiB from power-of-two classes backed by
// sync.Pool, so released buffers are reused by the next allocation of the
// same class. Larger requests go straight to the Go heap.
//
// # Scopes
//
// A Scope tracks the buffers allocated during one operation and releases all
// of them on Close unless the operation committed its result:
//
//	scope := memory.NewScope(alloc)
//	defer scope.Close()
//	out := scope.Alloc(n)
//	if err := fill(out); err != nil {
//	    return nil, err // out is released by Close
//	}
//	scope.Commit()
//	return out, nil
//
// # Thread Safety
//
// Heap is safe for concurrent use. A Scope belongs to one goroutine.
package memory
