package vdaf

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/divviup/divviup-android/protocol"
)

func toUint64(name string, v int64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative, got %d", protocol.ErrInvalidParameter, name, v)
	}
	return uint64(v), nil
}

func toUint(name string, v int64) (uint, error) {
	u, err := toUint64(name, v)
	if err != nil {
		return 0, err
	}
	if bits.UintSize == 32 && u > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %s %d does not fit a %d-bit integer", protocol.ErrInvalidParameter, name, v, bits.UintSize)
	}
	return uint(u), nil
}

// checkBits rejects values that need more than width bits.
func checkBits(name string, v uint64, width uint) error {
	if width < 64 && v>>width != 0 {
		return fmt.Errorf("%w: %s %d does not fit in %d bits", protocol.ErrInvalidParameter, name, v, width)
	}
	return nil
}
