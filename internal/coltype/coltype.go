// Package coltype models ClickHouse column types as an immutable, interned
// algebraic description, together with a parser for the textual form the
// server reports in RowBinaryWithNamesAndTypes headers and a printer that is
// its exact inverse.
//
// All Type values are canonical: two structurally equal types are the same
// pointer, so == on *Type is structural equality.
package coltype

import (
	"fmt"
	"strings"
)

// Kind discriminates the Type sum.
type Kind uint8

const (
	KindBool Kind = iota
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindFloat32
	KindFloat64
	KindString
	KindDateTime
	KindUUID
	KindIPv4
	KindIPv6
	KindFixedString
	KindArray
	KindNullable
	KindLowCardinality
	KindMap
	KindEnum8
	KindTuple
)

// EnumVariant is one (label, discriminant) entry of an Enum8 type.
type EnumVariant struct {
	Name  string
	Value int8
}

// Type is a ClickHouse column type. Values are immutable and canonical;
// obtain them only through the package constructors or Parse.
type Type struct {
	kind     Kind
	size     int           // FixedString width
	args     []*Type       // Array/Nullable/LowCardinality: 1, Map: 2, Tuple: n
	variants []EnumVariant // Enum8
	text     string        // printed form, computed once at intern time
}

// Kind returns the discriminant of the type.
func (t *Type) Kind() Kind { return t.kind }

// Size returns the byte width of a FixedString type.
// REQUIRES: t.Kind() == KindFixedString.
func (t *Type) Size() int { return t.size }

// Elem returns the single argument of an Array, Nullable or LowCardinality type.
func (t *Type) Elem() *Type { return t.args[0] }

// Key returns the key type of a Map type.
func (t *Type) Key() *Type { return t.args[0] }

// Value returns the value type of a Map type.
func (t *Type) Value() *Type { return t.args[1] }

// Elems returns the member types of a Tuple type.
func (t *Type) Elems() []*Type { return t.args }

// Variants returns the (label, discriminant) entries of an Enum8 type.
func (t *Type) Variants() []EnumVariant { return t.variants }

// HasVariant reports whether b matches one of an Enum8 type's discriminants.
func (t *Type) HasVariant(b int8) bool {
	for _, v := range t.variants {
		if v.Value == b {
			return true
		}
	}
	return false
}

// String returns the server's textual form of the type, e.g.
// "Map(String, Array(UInt8))". Parse(t.String()) returns t.
func (t *Type) String() string { return t.text }

// Nullary type singletons.
var (
	Bool     = intern(&Type{kind: KindBool})
	UInt8    = intern(&Type{kind: KindUInt8})
	UInt16   = intern(&Type{kind: KindUInt16})
	UInt32   = intern(&Type{kind: KindUInt32})
	UInt64   = intern(&Type{kind: KindUInt64})
	UInt128  = intern(&Type{kind: KindUInt128})
	Int8     = intern(&Type{kind: KindInt8})
	Int16    = intern(&Type{kind: KindInt16})
	Int32    = intern(&Type{kind: KindInt32})
	Int64    = intern(&Type{kind: KindInt64})
	Int128   = intern(&Type{kind: KindInt128})
	Float32  = intern(&Type{kind: KindFloat32})
	Float64  = intern(&Type{kind: KindFloat64})
	String   = intern(&Type{kind: KindString})
	DateTime = intern(&Type{kind: KindDateTime})
	UUID     = intern(&Type{kind: KindUUID})
	IPv4     = intern(&Type{kind: KindIPv4})
	IPv6     = intern(&Type{kind: KindIPv6})
)

// FixedString returns the FixedString(n) type.
// Panics if n is not positive; a zero-width fixed string cannot exist server-side.
func FixedString(n int) *Type {
	if n <= 0 {
		panic(fmt.Sprintf("coltype: FixedString width must be positive, got %d", n))
	}
	return intern(&Type{kind: KindFixedString, size: n})
}

// Array returns the Array(elem) type.
func Array(elem *Type) *Type {
	return intern(&Type{kind: KindArray, args: []*Type{elem}})
}

// Nullable returns the Nullable(elem) type.
func Nullable(elem *Type) *Type {
	return intern(&Type{kind: KindNullable, args: []*Type{elem}})
}

// LowCardinality returns the LowCardinality(elem) type. The wrapper is
// transparent on the wire in RowBinary formats; it exists so schema
// negotiation can match the server-reported type exactly.
func LowCardinality(elem *Type) *Type {
	return intern(&Type{kind: KindLowCardinality, args: []*Type{elem}})
}

// Map returns the Map(key, value) type.
func Map(key, value *Type) *Type {
	return intern(&Type{kind: KindMap, args: []*Type{key, value}})
}

// Tuple returns the Tuple(elems...) type. Element order is significant.
func Tuple(elems ...*Type) *Type {
	if len(elems) == 0 {
		panic("coltype: Tuple needs at least one element")
	}
	args := make([]*Type, len(elems))
	copy(args, elems)
	return intern(&Type{kind: KindTuple, args: args})
}

// Enum8 returns the Enum8(variants...) type.
// Panics on duplicate discriminants: the server never reports such a type,
// so a duplicate is a programming error in a hand-declared schema.
func Enum8(variants ...EnumVariant) *Type {
	if len(variants) == 0 {
		panic("coltype: Enum8 needs at least one variant")
	}
	seen := make(map[int8]string, len(variants))
	for _, v := range variants {
		if prev, dup := seen[v.Value]; dup {
			panic(fmt.Sprintf("coltype: Enum8 discriminant %d used by both %q and %q", v.Value, prev, v.Name))
		}
		seen[v.Value] = v.Name
	}
	vs := make([]EnumVariant, len(variants))
	copy(vs, variants)
	return intern(&Type{kind: KindEnum8, variants: vs})
}

// kindNames maps nullary kinds to their textual form.
var kindNames = map[Kind]string{
	KindBool:     "Bool",
	KindUInt8:    "UInt8",
	KindUInt16:   "UInt16",
	KindUInt32:   "UInt32",
	KindUInt64:   "UInt64",
	KindUInt128:  "UInt128",
	KindInt8:     "Int8",
	KindInt16:    "Int16",
	KindInt32:    "Int32",
	KindInt64:    "Int64",
	KindInt128:   "Int128",
	KindFloat32:  "Float32",
	KindFloat64:  "Float64",
	KindString:   "String",
	KindDateTime: "DateTime",
	KindUUID:     "UUID",
	KindIPv4:     "IPv4",
	KindIPv6:     "IPv6",
}

// print renders the textual form. Called once per distinct type at intern time.
func (t *Type) print() string {
	if name, ok := kindNames[t.kind]; ok {
		return name
	}
	var sb strings.Builder
	switch t.kind {
	case KindFixedString:
		fmt.Fprintf(&sb, "FixedString(%d)", t.size)
	case KindArray:
		sb.WriteString("Array(")
		sb.WriteString(t.args[0].text)
		sb.WriteByte(')')
	case KindNullable:
		sb.WriteString("Nullable(")
		sb.WriteString(t.args[0].text)
		sb.WriteByte(')')
	case KindLowCardinality:
		sb.WriteString("LowCardinality(")
		sb.WriteString(t.args[0].text)
		sb.WriteByte(')')
	case KindMap:
		sb.WriteString("Map(")
		sb.WriteString(t.args[0].text)
		sb.WriteString(", ")
		sb.WriteString(t.args[1].text)
		sb.WriteByte(')')
	case KindTuple:
		sb.WriteString("Tuple(")
		for i, a := range t.args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.text)
		}
		sb.WriteByte(')')
	case KindEnum8:
		sb.WriteString("Enum8(")
		for i, v := range t.variants {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('\'')
			sb.WriteString(escapeLabel(v.Name))
			fmt.Fprintf(&sb, "' = %d", v.Value)
		}
		sb.WriteByte(')')
	default:
		panic(fmt.Sprintf("coltype: unknown kind %d", t.kind))
	}
	return sb.String()
}

// escapeLabel escapes backslashes and single quotes in an Enum8 label,
// matching the server's quoting of type text.
func escapeLabel(s string) string {
	if !strings.ContainsAny(s, `\'`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '\'' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// equal reports structural equality. Children are already canonical, so they
// compare by pointer.
func equal(a, b *Type) bool {
	if a.kind != b.kind || a.size != b.size || len(a.args) != len(b.args) || len(a.variants) != len(b.variants) {
		return false
	}
	for i := range a.args {
		if a.args[i] != b.args[i] {
			return false
		}
	}
	for i := range a.variants {
		if a.variants[i] != b.variants[i] {
			return false
		}
	}
	return true
}
