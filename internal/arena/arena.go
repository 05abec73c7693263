package arena

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// ErrReleased is the panic value for access to a released arena.
var ErrReleased = errors.New("arena: use after release")

// DefaultSize is the initial buffer capacity when New is called with a
// non-positive size.
const DefaultSize = 4096

// Ref addresses a byte span inside an Arena.
type Ref struct {
	Off uint32
	Len uint32
}

// Arena is a bump allocator over a single growable buffer.
//
// Bytes are appended to an open span; Seal closes the span and returns its
// Ref. An Arena is not safe for concurrent use.
type Arena struct {
	buf      []byte
	start    int // Offset of the open span
	released bool
}

// New creates an Arena with the given initial capacity.
func New(size int) *Arena {
	if size <= 0 {
		size = DefaultSize
	}
	return &Arena{buf: make([]byte, 0, size)}
}

func (a *Arena) check() {
	if a.released {
		panic(ErrReleased)
	}
}

// PutUint8 appends v to the open span.
func (a *Arena) PutUint8(v uint8) {
	a.check()
	a.buf = append(a.buf, v)
}

// PutUint16 appends v little-endian to the open span.
func (a *Arena) PutUint16(v uint16) {
	a.check()
	a.buf = binary.LittleEndian.AppendUint16(a.buf, v)
}

// PutUint32 appends v little-endian to the open span.
func (a *Arena) PutUint32(v uint32) {
	a.check()
	a.buf = binary.LittleEndian.AppendUint32(a.buf, v)
}

// PutUint64 appends v little-endian to the open span.
func (a *Arena) PutUint64(v uint64) {
	a.check()
	a.buf = binary.LittleEndian.AppendUint64(a.buf, v)
}

// PutFloat32 appends the IEEE 754 bits of v little-endian.
func (a *Arena) PutFloat32(v float32) {
	a.PutUint32(math.Float32bits(v))
}

// PutFloat64 appends the IEEE 754 bits of v little-endian.
func (a *Arena) PutFloat64(v float64) {
	a.PutUint64(math.Float64bits(v))
}

// PutString appends an 8-byte little-endian length followed by the bytes of s.
// The length prefix keeps ("ab","c") and ("a","bc") distinct.
func (a *Arena) PutString(s string) {
	a.PutUint64(uint64(len(s)))
	a.buf = append(a.buf, s...)
}

// Seal closes the open span and returns its Ref. The next Put starts a new span.
func (a *Arena) Seal() Ref {
	a.check()
	r := Ref{Off: uint32(a.start), Len: uint32(len(a.buf) - a.start)}
	a.start = len(a.buf)
	return r
}

// Rollback discards the open span.
func (a *Arena) Rollback() {
	a.check()
	a.buf = a.buf[:a.start]
}

// Bytes returns the bytes addressed by r.
// The slice is valid only until the next Put, which may reallocate the buffer.
func (a *Arena) Bytes(r Ref) []byte {
	a.check()
	return a.buf[r.Off : r.Off+r.Len : r.Off+r.Len]
}

// Equal reports whether x and y address identical bytes.
func (a *Arena) Equal(x, y Ref) bool {
	if x.Len != y.Len {
		return false
	}
	return bytes.Equal(a.Bytes(x), a.Bytes(y))
}

// Len returns the number of bytes in use.
func (a *Arena) Len() int {
	a.check()
	return len(a.buf)
}

// Release drops the buffer. Release is idempotent.
func (a *Arena) Release() {
	a.buf = nil
	a.start = 0
	a.released = true
}

// Released reports whether Release has been called.
func (a *Arena) Released() bool {
	return a.released
}
