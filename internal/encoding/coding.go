// Package encoding provides the binary encoding/decoding primitives for the
// ClickHouse RowBinary family of formats.
//
// All multi-byte integers are encoded in little-endian format.
// Variable-length integers use unsigned LEB128: 7 bits per byte with MSB
// continuation, low groups first. Strings are LEB128-length-prefixed bytes.
//
// Reference: ClickHouse Formats documentation, RowBinaryWithNamesAndTypes.
package encoding

import (
	"encoding/binary"
	"errors"
)

// MaxLEB128Length is the maximum number of bytes a 64-bit LEB128 value can occupy.
const MaxLEB128Length = 10

var (
	// ErrShortBuffer is returned when a decode needs more bytes than the
	// buffer holds. Streaming callers treat it as a refill signal.
	ErrShortBuffer = errors.New("encoding: short buffer")

	// ErrLEB128Overflow is returned when a LEB128 value exceeds 64 bits.
	ErrLEB128Overflow = errors.New("encoding: leb128 overflow")
)

// -----------------------------------------------------------------------------
// Fixed-width encoding (little-endian)
// -----------------------------------------------------------------------------

// AppendFixed16 appends a little-endian uint16 to dst and returns the extended slice.
func AppendFixed16(dst []byte, value uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, value)
}

// AppendFixed32 appends a little-endian uint32 to dst and returns the extended slice.
func AppendFixed32(dst []byte, value uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, value)
}

// AppendFixed64 appends a little-endian uint64 to dst and returns the extended slice.
func AppendFixed64(dst []byte, value uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, value)
}

// DecodeFixed16 decodes a uint16 from a little-endian buffer.
// REQUIRES: src has at least 2 bytes.
func DecodeFixed16(src []byte) uint16 {
	return binary.LittleEndian.Uint16(src)
}

// DecodeFixed32 decodes a uint32 from a little-endian buffer.
// REQUIRES: src has at least 4 bytes.
func DecodeFixed32(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src)
}

// DecodeFixed64 decodes a uint64 from a little-endian buffer.
// REQUIRES: src has at least 8 bytes.
func DecodeFixed64(src []byte) uint64 {
	return binary.LittleEndian.Uint64(src)
}

// -----------------------------------------------------------------------------
// LEB128 (unsigned, 64-bit)
// -----------------------------------------------------------------------------

// AppendLEB128 appends value as an unsigned LEB128 varint to dst and returns
// the extended slice. Zero encodes as a single 0x00 byte.
func AppendLEB128(dst []byte, value uint64) []byte {
	const b = 128
	for value >= b {
		dst = append(dst, byte(value&(b-1))|b)
		value >>= 7
	}
	return append(dst, byte(value))
}

// LEB128Length returns the number of bytes AppendLEB128 emits for v.
func LEB128Length(v uint64) int {
	length := 1
	for v >= 128 {
		v >>= 7
		length++
	}
	return length
}

// DecodeLEB128 decodes an unsigned LEB128 varint from src.
// Returns the decoded value and the number of bytes consumed.
// Returns ErrShortBuffer if src ends before the terminating byte.
func DecodeLEB128(src []byte) (value uint64, bytesRead int, err error) {
	var result uint64
	for shift := uint(0); shift < 64; shift += 7 {
		if bytesRead >= len(src) {
			return 0, 0, ErrShortBuffer
		}
		b := src[bytesRead]
		bytesRead++
		if b < 128 {
			if shift == 63 && b > 1 {
				return 0, 0, ErrLEB128Overflow
			}
			result |= uint64(b) << shift
			return result, bytesRead, nil
		}
		result |= uint64(b&0x7f) << shift
	}
	return 0, 0, ErrLEB128Overflow
}

// -----------------------------------------------------------------------------
// Length-prefixed slices
// -----------------------------------------------------------------------------

// AppendLengthPrefixed appends a LEB128-length-prefixed slice to dst.
// Format: [LEB128 length][bytes]
func AppendLengthPrefixed(dst []byte, value []byte) []byte {
	dst = AppendLEB128(dst, uint64(len(value)))
	return append(dst, value...)
}

// DecodeLengthPrefixed decodes a length-prefixed slice from src.
// Returns the slice (pointing into src), bytes consumed, and any error.
func DecodeLengthPrefixed(src []byte) (value []byte, bytesRead int, err error) {
	length, n, err := DecodeLEB128(src)
	if err != nil {
		return nil, 0, err
	}
	bytesRead = n
	if uint64(len(src)-bytesRead) < length {
		return nil, 0, ErrShortBuffer
	}
	value = src[bytesRead : bytesRead+int(length)]
	bytesRead += int(length)
	return value, bytesRead, nil
}
