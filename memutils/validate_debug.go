//go:build debug_plinth

package memutils

import "github.com/pkg/errors"

// DebugEnabled is true when the package was built with the debug_plinth build tag
const DebugEnabled bool = true

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_plinth build tag is present
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics if it is not.
// This method no-ops unless the debug_plinth build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}

// DebugAssert panics with the formatted message if ok is false. It is used to catch callers breaking
// an allocator's usage protocol, such as returning more bytes to an arena than were taken from it.
// This method no-ops unless the debug_plinth build tag is present.
func DebugAssert(ok bool, format string, args ...any) {
	if !ok {
		panic(errors.Errorf(format, args...))
	}
}
