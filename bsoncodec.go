package bsoncodec

// Allocator hands out byte buffers for values returned to callers.
//
// AllocZeroed and Realloc never return an error: exhaustion is fatal and
// surfaces as a panic carrying an allocation error.
type Allocator interface {
	AllocZeroed(n int) []byte
	Realloc(buf []byte, n int) []byte
	Release(buf []byte)
}

// Memory represents a guest's linear memory as seen from the host.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}
