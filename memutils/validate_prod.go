//go:build !debug_plinth

package memutils

// DebugEnabled is true when the package was built with the debug_plinth build tag
const DebugEnabled bool = false

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_plinth build tag is present
func DebugValidate(validatable Validatable) {
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics if it is not.
// This method no-ops unless the debug_plinth build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
}

// DebugAssert panics with the formatted message if ok is false.
// This method no-ops unless the debug_plinth build tag is present.
func DebugAssert(ok bool, format string, args ...any) {
}
