package text

import (
	"context"
	"io"
	"os"

	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/plinth/memutils"
	"github.com/vkngwrapper/plinth/memutils/alloc"
	"golang.org/x/exp/slog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// readChunk is the amount of extra room requested whenever a read fills the storage
const readChunk int = 512

func fileError(err error, format string, args ...any) error {
	return cerrors.Mark(cerrors.Wrapf(err, format, args...), memutils.FileAccessError)
}

// ReadFile reads the file at path into a new storage
func ReadFile(path string, options alloc.CreateOptions) (*Storage, error) {
	return ReadFileWithPad(path, 0, 0, options)
}

// ReadFileWithPad reads the file at path into a new storage, preceded by left zero bytes and
// followed by right zero bytes. The left padding is part of the string. The right padding sits
// between the string and its terminator's position and is not counted in Length.
func ReadFileWithPad(path string, left, right int, options alloc.CreateOptions) (*Storage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fileError(err, "opening %s", path)
	}
	defer file.Close()

	hint := 0
	info, err := file.Stat()
	if err == nil {
		hint = int(info.Size())
	}

	return read(file, path, hint, left, right, options)
}

// ReadFileDecoded reads the file at path into a new storage, converting it from enc to UTF-8
func ReadFileDecoded(path string, enc encoding.Encoding, options alloc.CreateOptions) (*Storage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fileError(err, "opening %s", path)
	}
	defer file.Close()

	hint := 0
	info, err := file.Stat()
	if err == nil {
		hint = int(info.Size())
	}

	return read(transform.NewReader(file, enc.NewDecoder()), path, hint, 0, 0, options)
}

func read(r io.Reader, path string, hint, left, right int, options alloc.CreateOptions) (*Storage, error) {
	left = max(left, 0)
	right = max(right, 0)

	s := New(left+hint+right+1, options)
	if s.buf.GetPos(left) < 0 {
		return nil, cerrors.Wrapf(memutils.OutOfMemoryError, "reading %s", path)
	}
	clear(s.buf.Bytes())

	for {
		if s.buf.Size()-s.buf.Used() <= right+1 && !s.buf.Resize(s.buf.Used()+readChunk+right+1) {
			return nil, cerrors.Wrapf(memutils.OutOfMemoryError, "reading %s", path)
		}

		dst := s.buf.Data()[s.buf.Used() : s.buf.Size()-right-1]
		n, err := r.Read(dst)
		s.buf.GetPos(n)

		if err == io.EOF {
			break
		} else if err != nil {
			s.Del()
			return nil, fileError(err, "reading %s", path)
		}
	}

	clear(s.buf.Data()[s.buf.Used() : s.buf.Used()+right+1])

	logger := memutils.LoggerOrDiscard(options.Logger)
	logger.LogAttrs(context.Background(), slog.LevelDebug, "Storage::ReadFile",
		slog.String("path", path),
		slog.Int("length", s.Length()),
		slog.Int("size", s.Size()))
	return s, nil
}

// WriteTo writes the string to w
func (s *Storage) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.buf.Bytes())
	return int64(n), err
}

// WriteFile writes the string to the file at path, replacing its contents
func (s *Storage) WriteFile(path string) error {
	err := os.WriteFile(path, s.buf.Bytes(), 0o644)
	if err != nil {
		return fileError(err, "writing %s", path)
	}
	return nil
}
