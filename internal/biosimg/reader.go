// Package biosimg provides bounds-checked, little-endian byte access
// over a BIOS image held entirely in memory. It underlies every
// sub-table parser in internal/bios: none of them touch a raw []byte
// directly, so a bounds violation anywhere below an image read is
// reported the same way regardless of which sub-table triggered it.
package biosimg

import (
	"encoding/binary"
	"fmt"
)

// Reader is bounds-checked little-endian access over a fixed byte
// image. Every method reports an error instead of panicking so a
// malformed image degrades to a diagnosed condition, not a crash.
type Reader interface {
	Len() int
	ReadU8(offset int) (uint8, error)
	ReadU16(offset int) (uint16, error)
	ReadU32(offset int) (uint32, error)
	ReadU64(offset int) (uint64, error)
	ReadBytes(offset int, n int) ([]byte, error)
}

// SliceReader is the concrete Reader over an in-memory image.
type SliceReader struct {
	data []byte
}

// NewSliceReader wraps data for bounds-checked reads. The caller
// retains ownership of data; SliceReader never mutates it.
func NewSliceReader(data []byte) *SliceReader {
	return &SliceReader{data: data}
}

func (r *SliceReader) Len() int {
	return len(r.data)
}

func (r *SliceReader) bounds(offset, n int) error {
	if offset < 0 || n < 0 || offset+n > len(r.data) {
		return fmt.Errorf("biosimg: read [%d:%d) out of bounds for image of length %d", offset, offset+n, len(r.data))
	}
	return nil
}

func (r *SliceReader) ReadU8(offset int) (uint8, error) {
	if err := r.bounds(offset, 1); err != nil {
		return 0, err
	}
	return r.data[offset], nil
}

func (r *SliceReader) ReadU16(offset int) (uint16, error) {
	if err := r.bounds(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.data[offset : offset+2]), nil
}

func (r *SliceReader) ReadU32(offset int) (uint32, error) {
	if err := r.bounds(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.data[offset : offset+4]), nil
}

func (r *SliceReader) ReadU64(offset int) (uint64, error) {
	if err := r.bounds(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r.data[offset : offset+8]), nil
}

func (r *SliceReader) ReadBytes(offset, n int) ([]byte, error) {
	if err := r.bounds(offset, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[offset:offset+n])
	return out, nil
}

var _ Reader = (*SliceReader)(nil)
