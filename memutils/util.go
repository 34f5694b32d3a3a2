package memutils

import (
	"encoding/binary"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// PtrSize is the size in bytes of a pointer-sized slot. Block allocators require blocks at least this
// large so that a free block can hold the index of the next free block, and buffers address pointer
// slots in multiples of it.
const PtrSize int = int(unsafe.Sizeof(uintptr(0)))

type Number interface {
	constraints.Integer
}

func CheckPow2[T Number](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the nearest multiple of alignment, which must be a power of two
func AlignUp[T Number](value T, alignment T) T {
	DebugCheckPow2(alignment, "alignment")
	return (value + alignment - 1) &^ (alignment - 1)
}

// AlignDown rounds value down to the nearest multiple of alignment, which must be a power of two
func AlignDown[T Number](value T, alignment T) T {
	DebugCheckPow2(alignment, "alignment")
	return value &^ (alignment - 1)
}

// AlignTo rounds value up to the nearest multiple of multiple, which can be any positive number.
// Non-positive multiples leave the value unchanged.
func AlignTo[T Number](value T, multiple T) T {
	if multiple <= 0 {
		return value
	}
	return ((value + multiple - 1) / multiple) * multiple
}

// PutPtr writes value into the first PtrSize bytes of mem in native byte order
func PutPtr(mem []byte, value uintptr) {
	if PtrSize == 8 {
		binary.NativeEndian.PutUint64(mem, uint64(value))
	} else {
		binary.NativeEndian.PutUint32(mem, uint32(value))
	}
}

// Ptr reads a value written by PutPtr
func Ptr(mem []byte) uintptr {
	if PtrSize == 8 {
		return uintptr(binary.NativeEndian.Uint64(mem))
	}
	return uintptr(binary.NativeEndian.Uint32(mem))
}
