package memutils

// Validatable is anything that can check its own internal consistency: chains, allocators, buffers
// and tracking heaps. DebugValidate runs those checks in debug builds.
type Validatable interface {
	Validate() error
}
