package typesys

import "unsafe"

// CacheLineSize is the assumed cache line size that AlignedSize rounds to.
const CacheLineSize = 64

// AlignedSize rounds size up to the nearest cache line multiple.
func AlignedSize(size uintptr) uintptr {
	return (size + uintptr(CacheLineSize-1)) &^ uintptr(CacheLineSize-1)
}

// AlignSize rounds size up to the given alignment boundary.
func AlignSize(size, align int) int {
	return (size + align - 1) &^ (align - 1)
}

// sizeOf reports the in-memory size of a Go value of the given kind's
// canonical representation, used when a scalar TypeMeta is registered
// without an explicit size override.
func sizeOf[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}
