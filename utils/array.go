package utils

import (
	"unsafe"
)

// BytesToT32 reinterprets a raw little-endian tensor payload as 4-byte values.
func BytesToT32[T int32 | float32](arr []byte) []T {
	if len(arr) < 4 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&arr[0])), len(arr)/4)
}
