package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// InvalidConfigurationError is the error returned when an allocator is asked to use a node size or block
// size that cannot produce a working allocator. Allocators built with such a configuration are permanently
// empty.
var InvalidConfigurationError error = errors.New("invalid allocator configuration")

// UnknownAllocationError is the error returned when memory is handed back to an allocator or heap that
// never issued it
var UnknownAllocationError error = errors.New("memory was not issued by this allocator")

// FileAccessError is the error returned from file helpers when a file cannot be opened, read, or written
var FileAccessError error = errors.New("file access failed")

// OutOfMemoryError is the error returned when a helper cannot acquire the memory it needs
var OutOfMemoryError error = errors.New("out of memory")
