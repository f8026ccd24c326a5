// Package mmap provides memory-mapped file I/O for zero-copy reading.
//
// The parser's workers read disjoint byte ranges of the same read-only
// mapping concurrently; no locking is required because the mapping is never
// written.
package mmap

import (
	"os"

	"github.com/ajitpratap0/sor/pkg/sorerrors"
)

// Reader provides memory-mapped file reading with zero-copy range access.
type Reader struct {
	file *os.File
	data []byte
	size int64
}

// Open memory-maps the named file read-only. An empty file maps to a nil
// data slice rather than an error; callers see a zero-length range.
func Open(filename string) (*Reader, error) {
	file, err := os.Open(filename) //nolint:gosec // G304: path is controlled by caller
	if err != nil {
		return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to open file").
			WithDetail("path", filename)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to stat file").
			WithDetail("path", filename)
	}

	size := stat.Size()
	if size == 0 {
		return &Reader{file: file, size: 0}, nil
	}

	data, err := mmap(int(file.Fd()), 0, int(size), protRead, mapShared)
	if err != nil {
		file.Close()
		return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to mmap file").
			WithDetail("path", filename).
			WithDetail("size", size)
	}

	// Advise kernel about the access pattern; failure is harmless.
	_ = madvise(data, madvSequential)

	return &Reader{
		file: file,
		data: data,
		size: size,
	}, nil
}

// Size returns the size of the underlying file in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// Bytes returns the full mapped contents. The slice is valid until Close.
func (r *Reader) Bytes() []byte {
	return r.data
}

// Range returns the subslice [offset, offset+length) of the mapped file.
// A non-positive length means through the end of the file, and the end is
// clamped to the file size. A negative offset or one beyond the mapping is
// an error.
func (r *Reader) Range(offset, length int64) ([]byte, error) {
	if offset < 0 || offset > r.size {
		return nil, sorerrors.Newf(sorerrors.ErrorTypeFile, "offset %d out of range [0, %d]", offset, r.size)
	}

	// Compare length against the room left so offset+length cannot
	// overflow.
	end := r.size
	if length > 0 && length <= r.size-offset {
		end = offset + length
	}

	return r.data[offset:end], nil
}

// Close unmaps the file and closes it.
func (r *Reader) Close() error {
	var err error

	if r.data != nil {
		err = munmap(r.data)
		r.data = nil
	}

	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}

	return err
}
