package streamhouse

// types.go provides the built-in scalar Row implementations. Each wraps a
// native Go value and maps to exactly one column. They are usable directly
// as anonymous single-column query types and double as the reference
// implementations for hand-written records.

import (
	"net/netip"
	"time"

	"github.com/google/uuid"
)

// Bool maps to the Bool column type. The reader accepts any nonzero byte
// as true; the writer emits exactly 0 or 1.
type Bool bool

// Columns implements Row.
func (v *Bool) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeBool}}
}

// Read implements Row.
func (v *Bool) Read(b *Bytes) error {
	x, err := b.ReadBool()
	*v = Bool(x)
	return err
}

// Write implements Row.
func (v *Bool) Write(w *Writer) error { return w.WriteBool(bool(*v)) }

// UInt8 maps to the UInt8 column type.
type UInt8 uint8

// Columns implements Row.
func (v *UInt8) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeUInt8}}
}

// Read implements Row.
func (v *UInt8) Read(b *Bytes) error {
	x, err := b.ReadUInt8()
	*v = UInt8(x)
	return err
}

// Write implements Row.
func (v *UInt8) Write(w *Writer) error { return w.WriteUInt8(uint8(*v)) }

// UInt16 maps to the UInt16 column type.
type UInt16 uint16

// Columns implements Row.
func (v *UInt16) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeUInt16}}
}

// Read implements Row.
func (v *UInt16) Read(b *Bytes) error {
	x, err := b.ReadUInt16()
	*v = UInt16(x)
	return err
}

// Write implements Row.
func (v *UInt16) Write(w *Writer) error { return w.WriteUInt16(uint16(*v)) }

// UInt32 maps to the UInt32 column type.
type UInt32 uint32

// Columns implements Row.
func (v *UInt32) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeUInt32}}
}

// Read implements Row.
func (v *UInt32) Read(b *Bytes) error {
	x, err := b.ReadUInt32()
	*v = UInt32(x)
	return err
}

// Write implements Row.
func (v *UInt32) Write(w *Writer) error { return w.WriteUInt32(uint32(*v)) }

// UInt64 maps to the UInt64 column type.
type UInt64 uint64

// Columns implements Row.
func (v *UInt64) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeUInt64}}
}

// Read implements Row.
func (v *UInt64) Read(b *Bytes) error {
	x, err := b.ReadUInt64()
	*v = UInt64(x)
	return err
}

// Write implements Row.
func (v *UInt64) Write(w *Writer) error { return w.WriteUInt64(uint64(*v)) }

// UInt128 maps to the UInt128 column type. Lo holds the low 64 bits.
type UInt128 struct {
	Lo uint64
	Hi uint64
}

// Columns implements Row.
func (v *UInt128) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeUInt128}}
}

// Read implements Row.
func (v *UInt128) Read(b *Bytes) error {
	lo, hi, err := b.ReadUInt128()
	v.Lo, v.Hi = lo, hi
	return err
}

// Write implements Row.
func (v *UInt128) Write(w *Writer) error { return w.WriteUInt128(v.Lo, v.Hi) }

// Int8 maps to the Int8 column type.
type Int8 int8

// Columns implements Row.
func (v *Int8) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeInt8}}
}

// Read implements Row.
func (v *Int8) Read(b *Bytes) error {
	x, err := b.ReadInt8()
	*v = Int8(x)
	return err
}

// Write implements Row.
func (v *Int8) Write(w *Writer) error { return w.WriteInt8(int8(*v)) }

// Int16 maps to the Int16 column type.
type Int16 int16

// Columns implements Row.
func (v *Int16) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeInt16}}
}

// Read implements Row.
func (v *Int16) Read(b *Bytes) error {
	x, err := b.ReadInt16()
	*v = Int16(x)
	return err
}

// Write implements Row.
func (v *Int16) Write(w *Writer) error { return w.WriteInt16(int16(*v)) }

// Int32 maps to the Int32 column type.
type Int32 int32

// Columns implements Row.
func (v *Int32) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeInt32}}
}

// Read implements Row.
func (v *Int32) Read(b *Bytes) error {
	x, err := b.ReadInt32()
	*v = Int32(x)
	return err
}

// Write implements Row.
func (v *Int32) Write(w *Writer) error { return w.WriteInt32(int32(*v)) }

// Int64 maps to the Int64 column type.
type Int64 int64

// Columns implements Row.
func (v *Int64) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeInt64}}
}

// Read implements Row.
func (v *Int64) Read(b *Bytes) error {
	x, err := b.ReadInt64()
	*v = Int64(x)
	return err
}

// Write implements Row.
func (v *Int64) Write(w *Writer) error { return w.WriteInt64(int64(*v)) }

// Int128 maps to the Int128 column type. Lo holds the low 64 bits; Hi
// carries the sign.
type Int128 struct {
	Lo uint64
	Hi int64
}

// Columns implements Row.
func (v *Int128) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeInt128}}
}

// Read implements Row.
func (v *Int128) Read(b *Bytes) error {
	lo, hi, err := b.ReadUInt128()
	v.Lo, v.Hi = lo, int64(hi)
	return err
}

// Write implements Row.
func (v *Int128) Write(w *Writer) error { return w.WriteUInt128(v.Lo, uint64(v.Hi)) }

// Float32 maps to the Float32 column type.
type Float32 float32

// Columns implements Row.
func (v *Float32) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeFloat32}}
}

// Read implements Row.
func (v *Float32) Read(b *Bytes) error {
	x, err := b.ReadFloat32()
	*v = Float32(x)
	return err
}

// Write implements Row.
func (v *Float32) Write(w *Writer) error { return w.WriteFloat32(float32(*v)) }

// Float64 maps to the Float64 column type.
type Float64 float64

// Columns implements Row.
func (v *Float64) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeFloat64}}
}

// Read implements Row.
func (v *Float64) Read(b *Bytes) error {
	x, err := b.ReadFloat64()
	*v = Float64(x)
	return err
}

// Write implements Row.
func (v *Float64) Write(w *Writer) error { return w.WriteFloat64(float64(*v)) }

// String maps to the String column type with UTF-8 validation on read.
// Use Raw for byte strings that may not be valid UTF-8.
type String string

// Columns implements Row.
func (v *String) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeString}}
}

// Read implements Row.
func (v *String) Read(b *Bytes) error {
	x, err := b.ReadString()
	*v = String(x)
	return err
}

// Write implements Row.
func (v *String) Write(w *Writer) error { return w.WriteString(string(*v)) }

// Raw maps to the String column type without UTF-8 validation.
type Raw []byte

// Columns implements Row.
func (v *Raw) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeString}}
}

// Read implements Row.
func (v *Raw) Read(b *Bytes) error {
	x, err := b.ReadRaw()
	*v = x
	return err
}

// Write implements Row.
func (v *Raw) Write(w *Writer) error { return w.WriteRaw(*v) }

// LCString maps to the LowCardinality(String) column type. The wire
// encoding is identical to String; the distinct Go type carries the
// wrapper through schema negotiation, which is strict about it.
type LCString string

// Columns implements Row.
func (v *LCString) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeLowCardinality(TypeString)}}
}

// Read implements Row.
func (v *LCString) Read(b *Bytes) error {
	x, err := b.ReadString()
	*v = LCString(x)
	return err
}

// Write implements Row.
func (v *LCString) Write(w *Writer) error { return w.WriteString(string(*v)) }

// DateTime maps to the DateTime column type: seconds since the Unix epoch,
// encoded as UInt32.
type DateTime uint32

// Now returns the current time as a DateTime.
func Now() DateTime {
	return DateTime(time.Now().Unix())
}

// DateTimeOf truncates t to second precision.
func DateTimeOf(t time.Time) DateTime {
	return DateTime(t.Unix())
}

// Time converts back to a time.Time in UTC.
func (v DateTime) Time() time.Time {
	return time.Unix(int64(v), 0).UTC()
}

// Columns implements Row.
func (v *DateTime) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeDateTime}}
}

// Read implements Row.
func (v *DateTime) Read(b *Bytes) error {
	x, err := b.ReadUInt32()
	*v = DateTime(x)
	return err
}

// Write implements Row.
func (v *DateTime) Write(w *Writer) error { return w.WriteUInt32(uint32(*v)) }

// UUID maps to the UUID column type: 16 bytes, layout passthrough.
type UUID uuid.UUID

// NewUUID returns a random (version 4) UUID.
func NewUUID() UUID {
	return UUID(uuid.New())
}

// ParseUUID parses the canonical textual form.
func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, &InvalidParamsError{Err: err}
	}
	return UUID(u), nil
}

// String returns the canonical textual form.
func (v UUID) String() string { return uuid.UUID(v).String() }

// Columns implements Row.
func (v *UUID) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeUUID}}
}

// Read implements Row.
func (v *UUID) Read(b *Bytes) error {
	raw, err := b.ReadFixed(16)
	if err != nil {
		return err
	}
	copy(v[:], raw)
	return nil
}

// Write implements Row.
func (v *UUID) Write(w *Writer) error {
	return w.WriteFixedString(v[:], 16)
}

// IPv4 maps to the IPv4 column type. The in-memory layout is presentation
// order (v[0] is the leading octet of "a.b.c.d"); the wire stores the
// octets reversed.
type IPv4 [4]byte

// IPv4FromAddr converts a netip address. ok is false for non-IPv4 addresses.
func IPv4FromAddr(a netip.Addr) (IPv4, bool) {
	if !a.Is4() {
		return IPv4{}, false
	}
	return IPv4(a.As4()), true
}

// Addr converts to a netip address.
func (v IPv4) Addr() netip.Addr { return netip.AddrFrom4(v) }

// String returns the dotted-decimal form.
func (v IPv4) String() string { return v.Addr().String() }

// Columns implements Row.
func (v *IPv4) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeIPv4}}
}

// Read implements Row.
func (v *IPv4) Read(b *Bytes) error {
	raw, err := b.ReadFixed(4)
	if err != nil {
		return err
	}
	v[0], v[1], v[2], v[3] = raw[3], raw[2], raw[1], raw[0]
	return nil
}

// Write implements Row.
func (v *IPv4) Write(w *Writer) error {
	return w.WriteFixedString([]byte{v[3], v[2], v[1], v[0]}, 4)
}

// IPv6 maps to the IPv6 column type: 16 bytes in canonical order.
type IPv6 [16]byte

// IPv6FromAddr converts a netip address. ok is false for IPv4 addresses.
func IPv6FromAddr(a netip.Addr) (IPv6, bool) {
	if !a.Is6() || a.Is4In6() {
		return IPv6{}, false
	}
	return IPv6(a.As16()), true
}

// Addr converts to a netip address.
func (v IPv6) Addr() netip.Addr { return netip.AddrFrom16(v) }

// String returns the canonical textual form.
func (v IPv6) String() string { return v.Addr().String() }

// Columns implements Row.
func (v *IPv6) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: TypeIPv6}}
}

// Read implements Row.
func (v *IPv6) Read(b *Bytes) error {
	raw, err := b.ReadFixed(16)
	if err != nil {
		return err
	}
	copy(v[:], raw)
	return nil
}

// Write implements Row.
func (v *IPv6) Write(w *Writer) error {
	return w.WriteFixedString(v[:], 16)
}
