package streamhouse

// rowas.go implements the internal-representation adapter: a user type
// that is stored in ClickHouse as a different row shape becomes a Row by
// delegating to that internal row.

// RowAs is implemented by types represented in ClickHouse as another row
// type I. The three Row methods then reduce to one-liners over the
// ColumnsOf / ReadAs / WriteAs helpers:
//
//	// Seconds-plus-nanos on the wire, one float in Go.
//	type Stamp float64
//
//	type wireStamp struct {
//		Seconds UInt64
//		Nanos   UInt32
//	}
//	// wireStamp implements Row by hand in the usual way.
//
//	func (s *Stamp) FromInternal(i wireStamp) {
//		*s = Stamp(float64(i.Seconds) + float64(i.Nanos)*1e-9)
//	}
//	func (s *Stamp) ToInternal() wireStamp { ... }
//
//	func (s *Stamp) Columns(parent string) []Column { return ColumnsOf[wireStamp](parent) }
//	func (s *Stamp) Read(b *Bytes) error            { return ReadAs[wireStamp](b, s) }
//	func (s *Stamp) Write(w *Writer) error          { return WriteAs[wireStamp](w, s) }
type RowAs[I any] interface {
	// FromInternal replaces the receiver with the value represented by the
	// decoded internal row.
	FromInternal(internal I)

	// ToInternal returns the internal row representing the receiver.
	ToInternal() I
}

// ReadAs decodes the internal row I and converts it into dst.
func ReadAs[I any, PI RowPtr[I]](b *Bytes, dst RowAs[I]) error {
	var internal I
	if err := PI(&internal).Read(b); err != nil {
		return err
	}
	dst.FromInternal(internal)
	return nil
}

// WriteAs converts src to its internal row and encodes that.
func WriteAs[I any, PI RowPtr[I]](w *Writer, src RowAs[I]) error {
	internal := src.ToInternal()
	return PI(&internal).Write(w)
}
