package wasmhost

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/bsoncodec"
	"github.com/wippyai/bsoncodec/errors"
)

// WrapMemory wraps a guest's wazero api.Memory as a bsoncodec.Memory.
func WrapMemory(mem api.Memory) bsoncodec.Memory {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// Wrapper adapts wazero api.Memory to the bsoncodec.Memory interface.
type Wrapper struct {
	Mem api.Memory
}

var (
	_ bsoncodec.Memory      = (*Wrapper)(nil)
	_ bsoncodec.MemorySizer = (*Wrapper)(nil)
)

func (m *Wrapper) outOfBounds(op string, offset uint32, length uint64) *errors.Error {
	return errors.New(errors.PhaseHost, errors.KindOutOfBounds).
		At(int(offset)).
		Value(offset).
		Detail("memory %s of %d bytes at %d exceeds size %d", op, length, offset, m.Mem.Size()).
		Build()
}

// Read returns a view of guest memory. Writes to the slice are visible to the guest.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, m.outOfBounds("read", offset, uint64(length))
	}
	return data, nil
}

// Write copies data into guest memory.
func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return m.outOfBounds("write", offset, uint64(len(data)))
	}
	return nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Wrapper) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, m.outOfBounds("read", offset, 4)
	}
	return v, nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (m *Wrapper) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.Mem.ReadUint64Le(offset)
	if !ok {
		return 0, m.outOfBounds("read", offset, 8)
	}
	return v, nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (m *Wrapper) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return m.outOfBounds("write", offset, 4)
	}
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (m *Wrapper) WriteU64(offset uint32, value uint64) error {
	if !m.Mem.WriteUint64Le(offset, value) {
		return m.outOfBounds("write", offset, 8)
	}
	return nil
}

// Size returns the current memory size in bytes.
func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}
