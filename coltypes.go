package streamhouse

// coltypes.go re-exports the column type algebra from internal/coltype for
// use in hand-written Row implementations.

import "github.com/aalhour/streamhouse/internal/coltype"

// ColumnType is the recursive description of a server column type. Values
// are immutable and canonical: == on *ColumnType is structural equality.
type ColumnType = coltype.Type

// EnumVariant is one (label, discriminant) entry of an Enum8 column type.
type EnumVariant = coltype.EnumVariant

// Nullary column types.
var (
	TypeBool     = coltype.Bool
	TypeUInt8    = coltype.UInt8
	TypeUInt16   = coltype.UInt16
	TypeUInt32   = coltype.UInt32
	TypeUInt64   = coltype.UInt64
	TypeUInt128  = coltype.UInt128
	TypeInt8     = coltype.Int8
	TypeInt16    = coltype.Int16
	TypeInt32    = coltype.Int32
	TypeInt64    = coltype.Int64
	TypeInt128   = coltype.Int128
	TypeFloat32  = coltype.Float32
	TypeFloat64  = coltype.Float64
	TypeString   = coltype.String
	TypeDateTime = coltype.DateTime
	TypeUUID     = coltype.UUID
	TypeIPv4     = coltype.IPv4
	TypeIPv6     = coltype.IPv6
)

// TypeFixedString returns the FixedString(n) column type.
func TypeFixedString(n int) *ColumnType { return coltype.FixedString(n) }

// TypeArray returns the Array(elem) column type.
func TypeArray(elem *ColumnType) *ColumnType { return coltype.Array(elem) }

// TypeNullable returns the Nullable(elem) column type.
func TypeNullable(elem *ColumnType) *ColumnType { return coltype.Nullable(elem) }

// TypeLowCardinality returns the LowCardinality(elem) column type. The
// wrapper is transparent on the wire but significant for negotiation.
func TypeLowCardinality(elem *ColumnType) *ColumnType { return coltype.LowCardinality(elem) }

// TypeMap returns the Map(key, value) column type.
func TypeMap(key, value *ColumnType) *ColumnType { return coltype.Map(key, value) }

// TypeTuple returns the Tuple(elems...) column type.
func TypeTuple(elems ...*ColumnType) *ColumnType { return coltype.Tuple(elems...) }

// TypeEnum8 returns the Enum8(variants...) column type. Discriminants must
// be unique; a duplicate panics, as it can only come from a hand-declared
// schema.
func TypeEnum8(variants ...EnumVariant) *ColumnType { return coltype.Enum8(variants...) }

// ParseColumnType parses the server's textual type form, e.g.
// "Map(String, Array(UInt8))".
func ParseColumnType(text string) (*ColumnType, error) {
	t, err := coltype.Parse(text)
	if err != nil {
		return nil, &UnsupportedColumnError{Type: text}
	}
	return t, nil
}
