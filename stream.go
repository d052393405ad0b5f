package streamhouse

// stream.go implements the incremental row reader over a response body.
//
// The reader buffers just enough bytes to decode the next record: a decode
// attempt that hits ErrNotEnoughData triggers exactly one more read from
// the body, appending to the unconsumed tail of the buffer, and the decode
// retries at the same logical position. The body is therefore never read
// ahead of the consumer's pull.

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/aalhour/streamhouse/internal/logging"
)

// readChunkSize is the read granularity against the response body.
const readChunkSize = 32 * 1024

// Rows is a lazy stream of decoded records of type T. It is finite,
// forward-only and not restartable, and must not be shared between
// goroutines.
//
// The iteration idiom follows database/sql:
//
//	rows, err := streamhouse.Query[Developer](ctx, client, sql)
//	if err != nil { ... }
//	defer rows.Close()
//	for rows.Next() {
//		dev := rows.Row()
//		...
//	}
//	if err := rows.Err(); err != nil { ... }
type Rows[T any, PT RowPtr[T]] struct {
	ctx    context.Context
	body   io.ReadCloser
	logger logging.Logger

	buf     []byte
	pos     int
	chunk   []byte
	allDone bool // body reached EOF

	cur      T
	err      error
	terminal bool
	closed   bool
}

// newRows reads and negotiates the header, consuming no row bytes beyond
// it. On any error the body is closed.
func newRows[T any, PT RowPtr[T]](ctx context.Context, body io.ReadCloser, logger logging.Logger) (*Rows[T, PT], error) {
	r := &Rows[T, PT]{
		ctx:    ctx,
		body:   body,
		logger: logger,
		chunk:  make([]byte, readChunkSize),
	}
	h, err := r.readHeader()
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	expected := ColumnsOf[T, PT]("")
	if err := negotiate(expected, h); err != nil {
		_ = r.Close()
		logger.Errorf(logging.NSSchema+"negotiation failed: %v", err)
		return nil, err
	}
	logger.Debugf(logging.NSSchema+"negotiated %d columns", len(h.names))
	return r, nil
}

func (r *Rows[T, PT]) readHeader() (*header, error) {
	for {
		b := &Bytes{data: r.buf, pos: r.pos}
		h, err := readHeader(b)
		if err == nil {
			r.pos = b.pos
			return h, nil
		}
		if !errors.Is(err, ErrNotEnoughData) {
			return nil, err
		}
		if r.allDone {
			// The body ended inside the header.
			return nil, ErrNotEnoughData
		}
		if err := r.refill(); err != nil {
			return nil, err
		}
	}
}

// Next advances to the next record. It returns false at the end of the
// stream or on error; consult Err afterwards.
func (r *Rows[T, PT]) Next() bool {
	if r.terminal {
		return false
	}
	for {
		b := &Bytes{data: r.buf, pos: r.pos}
		var v T
		err := PT(&v).Read(b)
		if err == nil {
			r.pos = b.pos
			r.cur = v
			return true
		}
		if !errors.Is(err, ErrNotEnoughData) {
			r.fail(err)
			return false
		}
		if r.allDone {
			if r.pos == len(r.buf) {
				// Clean end: the last row ended exactly at the last byte.
				r.finish()
			} else {
				// The body ended mid-row.
				r.fail(ErrNotEnoughData)
			}
			return false
		}
		if err := r.refill(); err != nil {
			r.fail(err)
			return false
		}
	}
}

// Row returns the record decoded by the last successful Next.
func (r *Rows[T, PT]) Row() T { return r.cur }

// Err returns the error that terminated the stream, if any. A clean end of
// stream and a cancelled context both leave Err nil.
func (r *Rows[T, PT]) Err() error { return r.err }

// Close releases the underlying body. It is safe to call multiple times
// and after exhaustion.
func (r *Rows[T, PT]) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.terminal = true
	return r.body.Close()
}

// All returns a single-use iterator over the remaining records. The stream
// is closed when the iterator finishes or the consumer breaks out. A
// terminal error is yielded as the final pair.
func (r *Rows[T, PT]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer func() { _ = r.Close() }()
		for r.Next() {
			if !yield(r.cur, nil) {
				return
			}
		}
		if err := r.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// refill performs one read against the body, appends it to the unconsumed
// tail of the buffer and resets the cursor to 0. At EOF it marks the
// stream done; a cancelled context drops the buffered remainder so the
// stream ends cleanly.
func (r *Rows[T, PT]) refill() error {
	for {
		n, err := r.body.Read(r.chunk)
		if n > 0 {
			remaining := r.buf[r.pos:]
			merged := make([]byte, 0, len(remaining)+n)
			merged = append(merged, remaining...)
			merged = append(merged, r.chunk[:n]...)
			r.buf, r.pos = merged, 0
			if err == io.EOF {
				r.allDone = true
			}
			return nil
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			r.allDone = true
			return nil
		case r.ctx != nil && r.ctx.Err() != nil:
			r.logger.Debugf(logging.NSQuery + "cancelled, dropping buffered bytes")
			r.buf, r.pos = nil, 0
			r.allDone = true
			return nil
		default:
			return &NetworkError{Err: err}
		}
	}
}

func (r *Rows[T, PT]) fail(err error) {
	r.err = err
	r.logger.Errorf(logging.NSQuery+"stream failed: %v", err)
	_ = r.Close()
}

func (r *Rows[T, PT]) finish() {
	_ = r.Close()
}
