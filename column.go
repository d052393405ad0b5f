package streamhouse

// column.go defines the central polymorphic contract: the Row interface
// every record type implements, and the generic helpers used to compose
// hand-written implementations.

import (
	"cmp"
	"slices"
)

// ordered abbreviates the sortable-key constraint of WriteMap.
type ordered = cmp.Ordered

// Column is the definition of a column within a table: a name and a type.
// The name may be empty for anonymous single-column rows, such as a query
// selecting a bare scalar.
type Column struct {
	Name string
	Type *ColumnType
}

// Row is a type that is either a single column value or a full table row.
//
// Row types compose: a multi-field record's columns are the concatenation
// of each field's Columns(fieldName) list, and its Read/Write are the
// concatenation of the fields' encodings in declared order, with no row
// delimiter. A record nested inside another record contributes its children
// under their own names, not prefixed by the parent's.
//
// Columns must be deterministic: two calls return identical output.
// Read consumes exactly the bytes of one encoding and propagates
// ErrNotEnoughData; Write appends exactly the bytes of one encoding.
//
// Implementations use pointer receivers; the scalar types in this package
// (UInt8, String, DateTime, ...) are both usable directly and serve as the
// reference implementations for hand-written record types.
type Row interface {
	// Columns returns the ordered (name, type) list this row occupies.
	// parent is the name attached by an enclosing record when this row
	// occupies a single column; it is "" for anonymous top-level queries.
	Columns(parent string) []Column

	// Read decodes one encoding of this row from the cursor.
	Read(b *Bytes) error

	// Write appends one encoding of this row to the sink.
	Write(w *Writer) error
}

// RowPtr constrains PT to be a pointer to T implementing Row. It lets the
// generic client verbs instantiate and fill values of T.
type RowPtr[T any] interface {
	*T
	Row
}

// ColumnsOf returns the column list of the row type T.
func ColumnsOf[T any, PT RowPtr[T]](parent string) []Column {
	var zero T
	return PT(&zero).Columns(parent)
}

// singleColumnType returns the column type of a row that must occupy
// exactly one column, such as an Array or Map element. A multi-column
// record in that position is a programming error, detected at description
// time.
func singleColumnType[T any, PT RowPtr[T]]() *ColumnType {
	cols := ColumnsOf[T, PT]("")
	if len(cols) != 1 {
		panic("streamhouse: element type must occupy exactly one column")
	}
	return cols[0].Type
}

// ElementType returns the single column type of the row type T, for use in
// Columns implementations over composite fields, e.g.
// TypeArray(ElementType[LCString]()). It panics if T spans multiple
// columns: Array, Nullable, LowCardinality and Map elements must resolve
// to exactly one column.
func ElementType[T any, PT RowPtr[T]]() *ColumnType {
	return singleColumnType[T, PT]()
}

// ReadValue returns an element-read function for the single-column row
// type T, for composing ReadArray/ReadMap/ReadNullable over wrapper types
// rather than cursor primitives.
func ReadValue[T any, PT RowPtr[T]]() func(*Bytes) (T, error) {
	_ = singleColumnType[T, PT]()
	return func(b *Bytes) (T, error) {
		var v T
		err := PT(&v).Read(b)
		return v, err
	}
}

// WriteValue is the write-side dual of ReadValue.
func WriteValue[T any, PT RowPtr[T]]() func(*Writer, T) error {
	_ = singleColumnType[T, PT]()
	return func(w *Writer, v T) error {
		return PT(&v).Write(w)
	}
}

// ReadArray reads a LEB128 length prefix followed by that many element
// encodings.
func ReadArray[T any](b *Bytes, elem func(*Bytes) (T, error)) ([]T, error) {
	n, err := b.ReadLEB128()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, arrayPrealloc(n))
	for i := uint64(0); i < n; i++ {
		v, err := elem(b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// WriteArray writes a LEB128 length prefix followed by the element
// encodings in slice order.
func WriteArray[T any](w *Writer, vs []T, elem func(*Writer, T) error) error {
	if err := w.WriteLEB128(uint64(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := elem(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadNullable reads the presence tag byte (0 = present, 1 = null) and, if
// present, one element encoding. Null decodes as nil.
func ReadNullable[T any](b *Bytes, elem func(*Bytes) (T, error)) (*T, error) {
	tag, err := b.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag == 1 {
		return nil, nil
	}
	v, err := elem(b)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// WriteNullable writes the presence tag and, for non-nil values, one
// element encoding.
func WriteNullable[T any](w *Writer, v *T, elem func(*Writer, T) error) error {
	if v == nil {
		return w.WriteUInt8(1)
	}
	if err := w.WriteUInt8(0); err != nil {
		return err
	}
	return elem(w, *v)
}

// ReadMap reads a LEB128 length prefix followed by that many (key, value)
// pair encodings.
func ReadMap[K comparable, V any](b *Bytes, key func(*Bytes) (K, error), value func(*Bytes) (V, error)) (map[K]V, error) {
	n, err := b.ReadLEB128()
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, arrayPrealloc(n))
	for i := uint64(0); i < n; i++ {
		k, err := key(b)
		if err != nil {
			return nil, err
		}
		v, err := value(b)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// WriteMap writes a LEB128 length prefix followed by (key, value) pair
// encodings in ascending key order, so that a row's encoding is
// deterministic.
func WriteMap[K ordered, V any](w *Writer, m map[K]V, key func(*Writer, K) error, value func(*Writer, V) error) error {
	if err := w.WriteLEB128(uint64(len(m))); err != nil {
		return err
	}
	for _, k := range sortedKeys(m) {
		if err := key(w, k); err != nil {
			return err
		}
		if err := value(w, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[K ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// arrayPrealloc caps the capacity hint taken from a wire length prefix, so
// a corrupt prefix cannot force a huge allocation before element decoding
// fails.
func arrayPrealloc(n uint64) int {
	const maxHint = 1 << 16
	if n > maxHint {
		return maxHint
	}
	return int(n)
}
