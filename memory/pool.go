package memory

import (
	"math/bits"
	"sync"
)

const (
	// Size classes: 64 B, 128 B, ... 64 KiB.
	minClassShift = 6
	maxClassShift = 16
	numClasses    = maxClassShift - minClassShift + 1

	minClassSize = 1 << minClassShift
	maxClassSize = 1 << maxClassShift
)

type classPools [numClasses]sync.Pool

// classFor returns the smallest class holding n bytes, or -1 if n is too big.
func classFor(n int) int {
	if n > maxClassSize {
		return -1
	}
	if n <= minClassSize {
		return 0
	}
	return bits.Len(uint(n-1)) - minClassShift
}

// exactClass returns the class whose size is exactly c, or -1.
func exactClass(c int) int {
	if c < minClassSize || c > maxClassSize || c&(c-1) != 0 {
		return -1
	}
	return bits.TrailingZeros(uint(c)) - minClassShift
}

func classSize(cls int) int {
	return 1 << (cls + minClassShift)
}

func (p *classPools) get(cls int) []byte {
	if v := p[cls].Get(); v != nil {
		return *(v.(*[]byte))
	}
	return make([]byte, 0, classSize(cls))
}

func (p *classPools) put(cls int, buf []byte) {
	buf = buf[:0]
	p[cls].Put(&buf)
}
