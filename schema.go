package streamhouse

// schema.go reads the self-describing header of a response body and
// reconciles it against the column list a record type declares.

import (
	"errors"

	"github.com/aalhour/streamhouse/internal/coltype"
)

// header is the schema section leading every RowBinaryWithNamesAndTypes
// body: the column count, the column names, then the textual column types.
type header struct {
	names []string
	types []*ColumnType
}

// readHeader decodes a header from the cursor. It returns ErrNotEnoughData
// when the buffer ends mid-header; the caller refills and retries from the
// same position.
func readHeader(b *Bytes) (*header, error) {
	n, err := b.ReadLEB128()
	if err != nil {
		return nil, err
	}
	h := &header{
		names: make([]string, 0, arrayPrealloc(n)),
		types: make([]*ColumnType, 0, arrayPrealloc(n)),
	}
	for i := uint64(0); i < n; i++ {
		name, err := b.ReadString()
		if err != nil {
			return nil, err
		}
		h.names = append(h.names, name)
	}
	for i := uint64(0); i < n; i++ {
		raw, err := b.ReadRaw()
		if err != nil {
			return nil, err
		}
		t, err := coltype.Parse(string(raw))
		if err != nil {
			var unsupported *coltype.UnsupportedColumnError
			if errors.As(err, &unsupported) {
				return nil, &UnsupportedColumnError{Type: unsupported.Text}
			}
			return nil, err
		}
		h.types = append(h.types, t)
	}
	return h, nil
}

// negotiate compares the static column list declared by a record type
// against the dynamic list announced on the wire.
//
// Name comparison is skipped when the record declares exactly one column
// with an empty name (an anonymous scalar query). Type equality is
// structural and strict: LowCardinality(String) does not match String, so
// the record must declare what the server reports, not what the table DDL
// says.
func negotiate(expected []Column, h *header) error {
	names := make([]string, len(expected))
	types := make([]*ColumnType, len(expected))
	for i, c := range expected {
		names[i] = c.Name
		types[i] = c.Type
	}

	anonymous := len(expected) == 1 && expected[0].Name == ""
	if len(h.names) != len(expected) {
		return &WrongColumnNamesError{Expected: names, Actual: h.names}
	}
	if !anonymous {
		for i := range names {
			if names[i] != h.names[i] {
				return &WrongColumnNamesError{Expected: names, Actual: h.names}
			}
		}
	}
	for i := range types {
		if types[i] != h.types[i] {
			return &WrongColumnTypesError{Expected: types, Actual: h.types}
		}
	}
	return nil
}
