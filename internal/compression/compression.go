// Package compression provides streaming body codecs for the ClickHouse
// HTTP interface.
//
// ClickHouse negotiates HTTP body compression through the standard
// Content-Encoding / Accept-Encoding headers once enable_http_compression
// is set on the request. Each supported algorithm maps to one header token.
package compression

import (
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type represents a body compression algorithm.
type Type uint8

const (
	// None disables body compression.
	None Type = iota

	// GZip uses RFC 1952 gzip framing.
	GZip

	// Zstd uses Zstandard framing.
	Zstd

	// LZ4 uses the LZ4 frame format.
	LZ4

	// Snappy uses the snappy streaming framing.
	Snappy
)

// String returns the human-readable name of the compression type.
func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case GZip:
		return "GZip"
	case Zstd:
		return "Zstd"
	case LZ4:
		return "LZ4"
	case Snappy:
		return "Snappy"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// ContentEncoding returns the HTTP header token for the type, or "" for None.
func (t Type) ContentEncoding() string {
	switch t {
	case GZip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	case Snappy:
		return "snappy"
	default:
		return ""
	}
}

// ParseContentEncoding maps an HTTP header token back to a Type.
func ParseContentEncoding(token string) (Type, bool) {
	switch token {
	case "":
		return None, true
	case "gzip":
		return GZip, true
	case "zstd":
		return Zstd, true
	case "lz4":
		return LZ4, true
	case "snappy":
		return Snappy, true
	default:
		return None, false
	}
}

// NewReader wraps r so that reads return the decompressed stream.
// Closing the returned reader releases codec state; it does not close r.
func NewReader(t Type, r io.Reader) (io.ReadCloser, error) {
	switch t {
	case None:
		return io.NopCloser(r), nil
	case GZip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return zr, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", t)
	}
}

// NewWriter wraps w so that writes are compressed. Close flushes the codec
// frame; it does not close w.
func NewWriter(t Type, w io.Writer) (io.WriteCloser, error) {
	switch t {
	case None:
		return nopWriteCloser{w}, nil
	case GZip:
		return gzip.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return zw, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", t)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
