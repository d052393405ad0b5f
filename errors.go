package streamhouse

// errors.go defines the error taxonomy shared by every component.
//
// Signals are package-level sentinels; diagnostics that carry both sides of
// a disagreement are structured types. Nothing is silently recovered:
// ErrNotEnoughData is retried inside a Rows stream only by refilling its
// buffer, and at a true end-of-stream it becomes either a clean end of
// sequence or a truncation error.

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotEnoughData is the short-read signal of the binary cursor. It
	// escapes a query stream only when the response body ends mid-header or
	// mid-row.
	ErrNotEnoughData = errors.New("streamhouse: not enough data")

	// ErrRowNotFound is returned by FetchOne when the query yields no rows.
	ErrRowNotFound = errors.New("streamhouse: no rows returned by a query that expected to return at least one row")
)

// InvalidUnicodeError reports a String column whose bytes are not valid
// UTF-8. Use the Raw type to read such columns verbatim.
type InvalidUnicodeError struct {
	Bytes []byte
}

func (e *InvalidUnicodeError) Error() string {
	return fmt.Sprintf("streamhouse: invalid utf-8 in String value %q", e.Bytes)
}

// InvalidTagEncodingError reports an Enum8 byte that matches no declared
// variant, or an attempt to write one.
type InvalidTagEncodingError struct {
	Tag int8
}

func (e *InvalidTagEncodingError) Error() string {
	return fmt.Sprintf("streamhouse: tag %d for enum is not valid", e.Tag)
}

// UnsupportedColumnError reports a server column type the codec cannot
// represent.
type UnsupportedColumnError struct {
	Type string
}

func (e *UnsupportedColumnError) Error() string {
	return fmt.Sprintf("streamhouse: unsupported column type: %s", e.Type)
}

// WrongColumnNamesError reports a schema negotiation failure on column
// names. Expected is the record type's declared list, Actual the server's.
type WrongColumnNamesError struct {
	Expected []string
	Actual   []string
}

func (e *WrongColumnNamesError) Error() string {
	return fmt.Sprintf("streamhouse: column names mismatch: expected [%s], got [%s]",
		strings.Join(e.Expected, ", "), strings.Join(e.Actual, ", "))
}

// WrongColumnTypesError reports a schema negotiation failure on column
// types. Expected is the record type's declared list, Actual the server's.
type WrongColumnTypesError struct {
	Expected []*ColumnType
	Actual   []*ColumnType
}

func (e *WrongColumnTypesError) Error() string {
	return fmt.Sprintf("streamhouse: column types mismatch: expected [%s], got [%s]",
		joinTypes(e.Expected), joinTypes(e.Actual))
}

func joinTypes(ts []*ColumnType) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// MissingColumnNameError reports an anonymous (empty-named) column used in
// a context that requires names, such as an insert header.
type MissingColumnNameError struct {
	Columns []string
}

func (e *MissingColumnNameError) Error() string {
	return fmt.Sprintf("streamhouse: each column must have a name: [%s]", strings.Join(e.Columns, ", "))
}

// FixedStringLengthError reports a FixedString write whose value length
// does not match the declared width. Emitting it anyway would corrupt the
// row framing for every following column.
type FixedStringLengthError struct {
	Want int
	Got  int
}

func (e *FixedStringLengthError) Error() string {
	return fmt.Sprintf("streamhouse: FixedString(%d) value has %d bytes", e.Want, e.Got)
}

// BadResponseError reports a non-200 HTTP response. Reason is the response
// body when it is readable UTF-8, otherwise the HTTP status line.
type BadResponseError struct {
	Status int
	Reason string
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("streamhouse: bad response: %s", e.Reason)
}

// NetworkError wraps a transport-layer failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("streamhouse: network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// InvalidParamsError wraps malformed caller input, such as a bad URL or a
// request the transport refuses to construct.
type InvalidParamsError struct {
	Err error
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("streamhouse: invalid params: %v", e.Err)
}

func (e *InvalidParamsError) Unwrap() error { return e.Err }
