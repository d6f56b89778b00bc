// Package convert narrows configuration integers to the widths libraries expect.
package convert

import (
	"fmt"
	"math"
)

// IntToInt32 converts v, failing on overflow.
func IntToInt32(v int) (int32, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("integer overflow: %d does not fit in int32", v)
	}
	return int32(v), nil
}

// IntToInt32Clamped converts v, clamping to the int32 range.
func IntToInt32Clamped(v int) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

// IntToUint32Clamped converts v, clamping negatives to zero.
func IntToUint32Clamped(v int) uint32 {
	switch {
	case v < 0:
		return 0
	case uint64(v) > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}
