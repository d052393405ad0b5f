package streamhouse

// rowbinary.go implements the read cursor and write sink for RowBinary
// values.
//
// Bytes is an advancing read head over a byte buffer. Every primitive read
// either consumes its full encoding or fails with ErrNotEnoughData leaving
// the position where it started, so a decode can be retried at the same
// logical offset once more bytes arrive. Writer is the symmetric append
// sink.

import (
	"math"
	"unicode/utf8"

	"github.com/aalhour/streamhouse/internal/encoding"
)

// Bytes is an incremental read head over a byte buffer.
type Bytes struct {
	data []byte
	pos  int
}

// NewBytes returns a cursor positioned at the start of data.
// The cursor borrows data; the caller must not mutate it while reading.
func NewBytes(data []byte) *Bytes {
	return &Bytes{data: data}
}

// Remaining returns the number of unconsumed bytes.
func (b *Bytes) Remaining() int { return len(b.data) - b.pos }

// ReadByte returns the next byte and advances.
func (b *Bytes) ReadByte() (byte, error) {
	if b.pos >= len(b.data) {
		return 0, ErrNotEnoughData
	}
	v := b.data[b.pos]
	b.pos++
	return v, nil
}

// ReadFixed returns the next n bytes without copying and advances.
// The slice aliases the cursor's buffer and is valid until the buffer is
// replaced by a refill.
func (b *Bytes) ReadFixed(n int) ([]byte, error) {
	if b.Remaining() < n {
		return nil, ErrNotEnoughData
	}
	v := b.data[b.pos : b.pos+n]
	b.pos += n
	return v, nil
}

// ReadLEB128 reads an unsigned LEB128 varint.
func (b *Bytes) ReadLEB128() (uint64, error) {
	v, n, err := encoding.DecodeLEB128(b.data[b.pos:])
	if err == encoding.ErrShortBuffer {
		return 0, ErrNotEnoughData
	}
	if err != nil {
		return 0, err
	}
	b.pos += n
	return v, nil
}

// ReadString reads a LEB128-length-prefixed string and validates UTF-8.
func (b *Bytes) ReadString() (string, error) {
	raw, err := b.readLengthPrefixed()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", &InvalidUnicodeError{Bytes: append([]byte(nil), raw...)}
	}
	return string(raw), nil
}

// ReadRaw reads a LEB128-length-prefixed byte string without UTF-8
// validation. The result is a copy.
func (b *Bytes) ReadRaw() ([]byte, error) {
	raw, err := b.readLengthPrefixed()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), raw...), nil
}

func (b *Bytes) readLengthPrefixed() ([]byte, error) {
	v, n, err := encoding.DecodeLengthPrefixed(b.data[b.pos:])
	if err == encoding.ErrShortBuffer {
		return nil, ErrNotEnoughData
	}
	if err != nil {
		return nil, err
	}
	b.pos += n
	return v, nil
}

// ReadFixedString reads exactly n raw bytes (no length prefix) into a copy.
func (b *Bytes) ReadFixedString(n int) ([]byte, error) {
	raw, err := b.ReadFixed(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), raw...), nil
}

// ReadBool reads one byte; any nonzero value is true.
func (b *Bytes) ReadBool() (bool, error) {
	v, err := b.ReadByte()
	return v != 0, err
}

// ReadUInt8 reads one byte.
func (b *Bytes) ReadUInt8() (uint8, error) { return b.ReadByte() }

// ReadUInt16 reads a little-endian uint16.
func (b *Bytes) ReadUInt16() (uint16, error) {
	raw, err := b.ReadFixed(2)
	if err != nil {
		return 0, err
	}
	return encoding.DecodeFixed16(raw), nil
}

// ReadUInt32 reads a little-endian uint32.
func (b *Bytes) ReadUInt32() (uint32, error) {
	raw, err := b.ReadFixed(4)
	if err != nil {
		return 0, err
	}
	return encoding.DecodeFixed32(raw), nil
}

// ReadUInt64 reads a little-endian uint64.
func (b *Bytes) ReadUInt64() (uint64, error) {
	raw, err := b.ReadFixed(8)
	if err != nil {
		return 0, err
	}
	return encoding.DecodeFixed64(raw), nil
}

// ReadUInt128 reads a little-endian 128-bit value as (lo, hi) halves.
func (b *Bytes) ReadUInt128() (lo, hi uint64, err error) {
	raw, err := b.ReadFixed(16)
	if err != nil {
		return 0, 0, err
	}
	return encoding.DecodeFixed64(raw), encoding.DecodeFixed64(raw[8:]), nil
}

// ReadInt8 reads one byte as a signed value.
func (b *Bytes) ReadInt8() (int8, error) {
	v, err := b.ReadByte()
	return int8(v), err
}

// ReadInt16 reads a little-endian int16.
func (b *Bytes) ReadInt16() (int16, error) {
	v, err := b.ReadUInt16()
	return int16(v), err
}

// ReadInt32 reads a little-endian int32.
func (b *Bytes) ReadInt32() (int32, error) {
	v, err := b.ReadUInt32()
	return int32(v), err
}

// ReadInt64 reads a little-endian int64.
func (b *Bytes) ReadInt64() (int64, error) {
	v, err := b.ReadUInt64()
	return int64(v), err
}

// ReadFloat32 reads a little-endian IEEE-754 float32.
func (b *Bytes) ReadFloat32() (float32, error) {
	v, err := b.ReadUInt32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads a little-endian IEEE-754 float64.
func (b *Bytes) ReadFloat64() (float64, error) {
	v, err := b.ReadUInt64()
	return math.Float64frombits(v), err
}

// ReadEnum8 reads an Enum8 discriminant and validates it against t's
// variants. t must be an Enum8 type.
func (b *Bytes) ReadEnum8(t *ColumnType) (int8, error) {
	v, err := b.ReadInt8()
	if err != nil {
		return 0, err
	}
	if !t.HasVariant(v) {
		return 0, &InvalidTagEncodingError{Tag: v}
	}
	return v, nil
}

// Writer is a growable append sink for RowBinary values.
//
// All write methods return an error for signature uniformity with the
// fallible ones (WriteFixedString, WriteEnum8); the others never fail.
type Writer struct {
	buf []byte
}

// Bytes returns the accumulated buffer. It aliases the writer's storage.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

// Reset truncates the writer to empty, keeping its storage.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// WriteUInt8 appends one byte.
func (w *Writer) WriteUInt8(v uint8) error {
	w.buf = append(w.buf, v)
	return nil
}

// WriteLEB128 appends an unsigned LEB128 varint.
func (w *Writer) WriteLEB128(v uint64) error {
	w.buf = encoding.AppendLEB128(w.buf, v)
	return nil
}

// WriteString appends a LEB128-length-prefixed string.
func (w *Writer) WriteString(s string) error {
	w.buf = encoding.AppendLEB128(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// WriteRaw appends a LEB128-length-prefixed byte string.
func (w *Writer) WriteRaw(v []byte) error {
	w.buf = encoding.AppendLengthPrefixed(w.buf, v)
	return nil
}

// WriteFixedString appends exactly n raw bytes. A value of any other
// length fails with FixedStringLengthError.
func (w *Writer) WriteFixedString(v []byte, n int) error {
	if len(v) != n {
		return &FixedStringLengthError{Want: n, Got: len(v)}
	}
	w.buf = append(w.buf, v...)
	return nil
}

// WriteBool appends exactly 0 or 1.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteUInt8(1)
	}
	return w.WriteUInt8(0)
}

// WriteUInt16 appends a little-endian uint16.
func (w *Writer) WriteUInt16(v uint16) error {
	w.buf = encoding.AppendFixed16(w.buf, v)
	return nil
}

// WriteUInt32 appends a little-endian uint32.
func (w *Writer) WriteUInt32(v uint32) error {
	w.buf = encoding.AppendFixed32(w.buf, v)
	return nil
}

// WriteUInt64 appends a little-endian uint64.
func (w *Writer) WriteUInt64(v uint64) error {
	w.buf = encoding.AppendFixed64(w.buf, v)
	return nil
}

// WriteUInt128 appends a little-endian 128-bit value from (lo, hi) halves.
func (w *Writer) WriteUInt128(lo, hi uint64) error {
	w.buf = encoding.AppendFixed64(w.buf, lo)
	w.buf = encoding.AppendFixed64(w.buf, hi)
	return nil
}

// WriteInt8 appends one signed byte.
func (w *Writer) WriteInt8(v int8) error { return w.WriteUInt8(uint8(v)) }

// WriteInt16 appends a little-endian int16.
func (w *Writer) WriteInt16(v int16) error { return w.WriteUInt16(uint16(v)) }

// WriteInt32 appends a little-endian int32.
func (w *Writer) WriteInt32(v int32) error { return w.WriteUInt32(uint32(v)) }

// WriteInt64 appends a little-endian int64.
func (w *Writer) WriteInt64(v int64) error { return w.WriteUInt64(uint64(v)) }

// WriteFloat32 appends a little-endian IEEE-754 float32.
func (w *Writer) WriteFloat32(v float32) error {
	return w.WriteUInt32(math.Float32bits(v))
}

// WriteFloat64 appends a little-endian IEEE-754 float64.
func (w *Writer) WriteFloat64(v float64) error {
	return w.WriteUInt64(math.Float64bits(v))
}

// WriteEnum8 appends an Enum8 discriminant, validating it against t's
// variants. t must be an Enum8 type.
func (w *Writer) WriteEnum8(t *ColumnType, v int8) error {
	if !t.HasVariant(v) {
		return &InvalidTagEncodingError{Tag: v}
	}
	return w.WriteInt8(v)
}
