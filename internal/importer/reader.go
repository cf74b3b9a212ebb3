package importer

// reader.go prepares an uploaded spreadsheet for encoding/csv without
// buffering the whole file:
//
//   - a leading UTF-8 BOM (as written by Excel on Windows) is dropped
//   - invalid UTF-8 is replaced with U+FFFD
//   - raw bytes are counted for progress logging

import (
	"io"
	"sync/atomic"

	"golang.org/x/text/encoding/unicode"
)

// CountingReader tracks how many bytes have been read from the source.
type CountingReader struct {
	reader io.Reader
	read   atomic.Int64
	Total  int64 // 0 if unknown
}

func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{reader: r, Total: total}
}

func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read.Add(int64(n))
	return n, err
}

// BytesRead returns the number of source bytes consumed so far.
func (r *CountingReader) BytesRead() int64 {
	return r.read.Load()
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.read.Load() * 100 / r.Total)
}

// Source is a sanitized view of an uploaded file.
type Source struct {
	io.Reader
	Counter *CountingReader
}

// Wrap counts the raw bytes of r, then strips the BOM and repairs the
// encoding. Counting happens below decoding so Progress is relative to
// the file size.
func Wrap(r io.Reader, totalSize int64) Source {
	counter := NewCountingReader(r, totalSize)
	return Source{
		Reader:  unicode.UTF8BOM.NewDecoder().Reader(counter),
		Counter: counter,
	}
}
