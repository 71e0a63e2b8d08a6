// Package binaryserializer reads and writes fixed-width little-endian
// integers, the byte order used by every consensus encoding in the node.
package binaryserializer

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// maxItems is the number of buffers to keep in the free
// list to use for binary serialization and deserialization.
const maxItems = 1024

// binaryFreeList is a concurrent safe free list of 8-byte scratch buffers,
// big enough for any integer width handled here. Header and transaction
// decoding read thousands of small integers per block, so reusing the
// buffers keeps the decoder from allocating for each one.
var binaryFreeList = make(chan []byte, maxItems)

// Borrow returns a byte slice from the free list with a length of 8. A new
// buffer is allocated if there are not any available on the free list.
func Borrow() []byte {
	var buf []byte
	select {
	case buf = <-binaryFreeList:
	default:
		buf = make([]byte, 8)
	}
	return buf[:8]
}

// Return puts the provided byte slice back on the free list. The buffer MUST
// have been obtained via the Borrow function and therefore have a cap of 8.
func Return(buf []byte) {
	select {
	case binaryFreeList <- buf:
	default:
		// Let it go to the garbage collector.
	}
}

func read(r io.Reader, size int) ([]byte, error) {
	buf := Borrow()[:size]
	if _, err := io.ReadFull(r, buf); err != nil {
		Return(buf)
		return nil, errors.WithStack(err)
	}
	return buf, nil
}

func write(w io.Writer, buf []byte) error {
	_, err := w.Write(buf)
	Return(buf)
	return errors.WithStack(err)
}

// Uint8 reads a single byte from the provided reader.
func Uint8(r io.Reader) (uint8, error) {
	buf, err := read(r, 1)
	if err != nil {
		return 0, err
	}
	rv := buf[0]
	Return(buf)
	return rv, nil
}

// Uint16 reads a little-endian uint16 from the provided reader.
func Uint16(r io.Reader) (uint16, error) {
	buf, err := read(r, 2)
	if err != nil {
		return 0, err
	}
	rv := binary.LittleEndian.Uint16(buf)
	Return(buf)
	return rv, nil
}

// Uint32 reads a little-endian uint32 from the provided reader.
func Uint32(r io.Reader) (uint32, error) {
	buf, err := read(r, 4)
	if err != nil {
		return 0, err
	}
	rv := binary.LittleEndian.Uint32(buf)
	Return(buf)
	return rv, nil
}

// Uint64 reads a little-endian uint64 from the provided reader.
func Uint64(r io.Reader) (uint64, error) {
	buf, err := read(r, 8)
	if err != nil {
		return 0, err
	}
	rv := binary.LittleEndian.Uint64(buf)
	Return(buf)
	return rv, nil
}

// PutUint8 writes a single byte to the given writer.
func PutUint8(w io.Writer, val uint8) error {
	buf := Borrow()[:1]
	buf[0] = val
	return write(w, buf)
}

// PutUint16 writes val to w as two little-endian bytes.
func PutUint16(w io.Writer, val uint16) error {
	buf := Borrow()[:2]
	binary.LittleEndian.PutUint16(buf, val)
	return write(w, buf)
}

// PutUint32 writes val to w as four little-endian bytes.
func PutUint32(w io.Writer, val uint32) error {
	buf := Borrow()[:4]
	binary.LittleEndian.PutUint32(buf, val)
	return write(w, buf)
}

// PutUint64 writes val to w as eight little-endian bytes.
func PutUint64(w io.Writer, val uint64) error {
	buf := Borrow()
	binary.LittleEndian.PutUint64(buf, val)
	return write(w, buf)
}
