package text

import (
	"bytes"
	"fmt"

	"github.com/vkngwrapper/plinth/memutils/alloc"
	"github.com/vkngwrapper/plinth/memutils/buffer"
)

// Storage is a growable string held in a buffer.Buffer. Whenever the buffer is materialized, the
// byte just past the string is zero, so the contents can be handed to code that expects a
// terminated string.
//
// Storage is not safe for concurrent use.
type Storage struct {
	buf *buffer.Buffer
}

// New creates a storage with size bytes of heap memory
func New(size int, options alloc.CreateOptions) *Storage {
	return Wrap(buffer.New(size, options))
}

// Empty creates an unmaterialized storage whose first growth allocates at least hint bytes
func Empty(hint int, options alloc.CreateOptions) *Storage {
	return Wrap(buffer.Empty(hint, options))
}

// FromRef creates a storage holding a copy of ref
func FromRef(ref Ref, options alloc.CreateOptions) *Storage {
	s := New(ref.Len()+1, options)
	return s.Append(ref)
}

// Wrap creates a storage over buf, which the storage takes over. Any contents already in buf are
// treated as the string.
func Wrap(buf *buffer.Buffer) *Storage {
	s := &Storage{buf: buf}
	s.terminate()
	return s
}

func (s *Storage) terminate() {
	if s.buf.IsEmpty() {
		return
	}

	if s.buf.Terminate(1) {
		return
	}

	if s.buf.Resize(s.buf.Used() + 1) {
		s.buf.Terminate(1)
	}
}

// reserve grows the buffer so that size more bytes and a terminator fit after the string
func (s *Storage) reserve(size int) bool {
	return s.buf.Resize(s.buf.Used() + size + 1)
}

// Append adds ref to the end of the string
func (s *Storage) Append(ref Ref) *Storage {
	if !s.reserve(ref.Len()) {
		return s
	}

	s.buf.Store(ref.Bytes())
	s.terminate()
	return s
}

// AppendString adds str to the end of the string
func (s *Storage) AppendString(str string) *Storage {
	return s.Append(FromString(str))
}

// AppendByte adds c to the end of the string
func (s *Storage) AppendByte(c byte) *Storage {
	if !s.reserve(1) {
		return s
	}

	s.buf.Store([]byte{c})
	s.terminate()
	return s
}

// Set replaces the string with ref
func (s *Storage) Set(ref Ref) *Storage {
	s.buf.Reset()
	return s.Append(ref)
}

// SetString replaces the string with str
func (s *Storage) SetString(str string) *Storage {
	return s.Set(FromString(str))
}

// Insert places ref at byte offset pos, shifting the rest of the string back. It returns false if
// pos is past the end of the string or the storage could not grow.
func (s *Storage) Insert(pos int, ref Ref) bool {
	if !s.reserve(ref.Len()) {
		return false
	}

	if !s.buf.Insert(pos, ref.Bytes()) {
		return false
	}

	s.terminate()
	return true
}

// Remove deletes size bytes at pos
func (s *Storage) Remove(pos, size int) {
	s.buf.Remove(pos, size)
	s.terminate()
}

// Format appends the fmt rendering of format and args to the string. The arguments are rendered
// twice: once to measure and once to write.
func (s *Storage) Format(format string, args ...any) *Storage {
	var counter countingWriter
	_, _ = fmt.Fprintf(&counter, format, args...)

	if !s.reserve(counter.count) {
		return s
	}

	pos := s.buf.GetPos(counter.count)
	writer := fixedWriter{dst: s.buf.Ref(pos, counter.count)}
	_, _ = fmt.Fprintf(&writer, format, args...)

	s.terminate()
	return s
}

// Reformat replaces the string with the fmt rendering of format and args
func (s *Storage) Reformat(format string, args ...any) *Storage {
	s.buf.Reset()
	return s.Format(format, args...)
}

// Compact reduces heap-owned capacity to the string plus its terminator
func (s *Storage) Compact() {
	if s.buf.IsEmpty() {
		return
	}
	s.buf.Shrink(s.buf.Used() + 1)
}

// Refresh recomputes the length of the string after its bytes were written directly through Data.
// The string ends at the first zero byte, or at the end of capacity less the terminator.
func (s *Storage) Refresh() {
	data := s.buf.Data()
	if len(data) == 0 {
		return
	}

	length := bytes.IndexByte(data, 0)
	if length < 0 {
		length = len(data) - 1
	}

	s.buf.SetUsed(length)
	s.terminate()
}

// Shadow returns a storage that views the same memory without owning it
func (s *Storage) Shadow() *Storage {
	return &Storage{buf: s.buf.Shadow()}
}

// Copy returns a storage that owns a heap copy of this storage's memory
func (s *Storage) Copy() *Storage {
	return &Storage{buf: s.buf.Copy()}
}

// Del releases any heap memory held by the storage and leaves it unmaterialized
func (s *Storage) Del() {
	s.buf.Del()
}

// Length returns the length of the string in bytes, not counting the terminator
func (s *Storage) Length() int { return s.buf.Used() }

// Size returns the capacity of the storage in bytes
func (s *Storage) Size() int { return s.buf.Size() }

// IsEmpty returns true if the string has zero length
func (s *Storage) IsEmpty() bool { return s.buf.Used() == 0 }

// Bytes returns the string's bytes, without the terminator. The slice is invalidated by growth.
func (s *Storage) Bytes() []byte { return s.buf.Bytes() }

// Data returns the storage's full capacity, for writing the string directly. Call Refresh afterward.
func (s *Storage) Data() []byte { return s.buf.Data() }

// String returns a copy of the string
func (s *Storage) String() string { return string(s.buf.Bytes()) }

// Ref returns a view of the string. An unmaterialized storage produces an empty, non-null Ref.
// The view is invalidated by growth.
func (s *Storage) Ref() Ref {
	if s.buf.IsEmpty() {
		return FromString("")
	}
	return FromBytes(s.buf.Bytes())
}

// Buffer returns the underlying buffer
func (s *Storage) Buffer() *buffer.Buffer { return s.buf }

// Validate checks the underlying buffer and the terminator
func (s *Storage) Validate() error {
	err := s.buf.Validate()
	if err != nil {
		return err
	}

	if !s.buf.IsEmpty() && (s.buf.Used() >= s.buf.Size() || s.buf.Data()[s.buf.Used()] != 0) {
		return errInvalidTerminator
	}
	return nil
}
