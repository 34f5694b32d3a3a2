package text

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vkngwrapper/plinth/memutils/unified"
)

var errInvalidTerminator = errors.New("storage is missing its terminator")

type countingWriter struct {
	count int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.count += len(p)
	return len(p), nil
}

type fixedWriter struct {
	dst []byte
	pos int
}

func (w *fixedWriter) Write(p []byte) (int, error) {
	n := copy(w.dst[w.pos:], p)
	w.pos += n
	return n, nil
}

// StoreString copies str into memory from u, followed by a zero byte. It returns the whole
// len(str)+1 byte region, or nil if u could not supply it.
func StoreString(u *unified.Allocator, str string) []byte {
	mem := u.Get(len(str) + 1)
	if mem == nil {
		return nil
	}

	copy(mem, str)
	mem[len(str)] = 0
	return mem
}

// StoreRef copies ref into memory from u and returns a Ref over the copy, or the null Ref if u
// could not supply the memory
func StoreRef(u *unified.Allocator, ref Ref) Ref {
	mem := u.Get(ref.Len())
	if mem == nil {
		return Null()
	}

	copy(mem, ref.Bytes())
	return FromBytes(mem)
}

// Format renders format and args into memory from u, followed by a zero byte. It returns the whole
// terminated region, or nil if u could not supply it.
func Format(u *unified.Allocator, format string, args ...any) []byte {
	var counter countingWriter
	_, _ = fmt.Fprintf(&counter, format, args...)

	mem := u.Get(counter.count + 1)
	if mem == nil {
		return nil
	}

	writer := fixedWriter{dst: mem[:counter.count]}
	_, _ = fmt.Fprintf(&writer, format, args...)
	mem[counter.count] = 0
	return mem
}
