package streamhouse

// insert.go assembles insert request bodies: the textual preamble, the
// same header layout a response carries, then the row payload, batched so
// a lazy source is never materialized in full.

import (
	"io"
	"iter"

	"github.com/aalhour/streamhouse/internal/logging"
)

// DefaultInsertBatch is the number of rows encoded per emitted chunk of a
// streaming insert body. Batching amortizes the transport's chunk framing.
const DefaultInsertBatch = 10_000

// insertHeader renders the body prefix for an insert into table: the SQL
// preamble followed by the column-count/names/types header. Every column
// must carry a name.
func insertHeader(table string, cols []Column) ([]byte, error) {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	for _, c := range cols {
		if c.Name == "" {
			return nil, &MissingColumnNameError{Columns: names}
		}
	}
	w := &Writer{}
	w.buf = append(w.buf, "INSERT INTO "+table+" FORMAT RowBinaryWithNamesAndTypes\n"...)
	_ = w.WriteLEB128(uint64(len(cols)))
	for _, name := range names {
		_ = w.WriteString(name)
	}
	for _, c := range cols {
		_ = w.WriteString(c.Type.String())
	}
	return w.Bytes(), nil
}

// writeInsertBody streams the complete insert body for rows into dst:
// header once, then row encodings flushed every batch rows. An error from
// the source or an encoding failure aborts the body.
func writeInsertBody[T any, PT RowPtr[T]](dst io.Writer, table string, rows iter.Seq2[T, error], batch int, logger logging.Logger) error {
	if batch <= 0 {
		batch = DefaultInsertBatch
	}
	hdr, err := insertHeader(table, ColumnsOf[T, PT](""))
	if err != nil {
		return err
	}
	if _, err := dst.Write(hdr); err != nil {
		return &NetworkError{Err: err}
	}

	w := &Writer{}
	total, pending := 0, 0
	for v, err := range rows {
		if err != nil {
			return err
		}
		if err := PT(&v).Write(w); err != nil {
			return err
		}
		total++
		pending++
		if pending == batch {
			if _, err := dst.Write(w.Bytes()); err != nil {
				return &NetworkError{Err: err}
			}
			w.Reset()
			pending = 0
		}
	}
	if pending > 0 {
		if _, err := dst.Write(w.Bytes()); err != nil {
			return &NetworkError{Err: err}
		}
	}
	logger.Debugf(logging.NSInsert+"%s: %d rows", table, total)
	return nil
}

// sliceRows adapts a slice to the row-source shape used by the body writer.
func sliceRows[T any](rows []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for i := range rows {
			if !yield(rows[i], nil) {
				return
			}
		}
	}
}
