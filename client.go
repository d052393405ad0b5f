package streamhouse

// client.go is the thin operation layer over the HTTP transport. No codec
// logic lives here: queries hand the response body to a Rows stream,
// inserts hand a body writer to the transport.

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/aalhour/streamhouse/internal/compression"
	"github.com/aalhour/streamhouse/internal/logging"
)

// Logger is the client logging interface. See the logging levels on
// NewLogger; Discard silences the client entirely.
type Logger = logging.Logger

// LogLevel selects the verbosity of the default logger.
type LogLevel = logging.Level

// Log levels for NewLogger.
const (
	LogError = logging.LevelError
	LogWarn  = logging.LevelWarn
	LogInfo  = logging.LevelInfo
	LogDebug = logging.LevelDebug
)

// NewLogger returns a leveled logger writing to w.
func NewLogger(w io.Writer, level LogLevel) Logger { return logging.NewLogger(w, level) }

// Discard is a logger that drops everything.
var Discard = logging.Discard

// Compression selects the HTTP body compression negotiated with the
// server.
type Compression = compression.Type

// Compression algorithms.
const (
	CompressionNone   = compression.None
	CompressionGZip   = compression.GZip
	CompressionZstd   = compression.Zstd
	CompressionLZ4    = compression.LZ4
	CompressionSnappy = compression.Snappy
)

// Client executes queries and inserts against one ClickHouse HTTP
// endpoint. It is cheap to share: a transport handle plus immutable
// configuration. Construct it with Builder.
type Client struct {
	httpClient  *http.Client
	url         string
	database    string
	user        string
	password    string
	compression compression.Type
	batchSize   int
	logger      logging.Logger
}

// ClientBuilder accumulates client configuration.
type ClientBuilder struct {
	url         string
	database    string
	user        string
	password    string
	httpClient  *http.Client
	compression compression.Type
	batchSize   int
	logger      logging.Logger
}

// Builder returns a ClientBuilder with defaults: no credentials, no
// compression, DefaultInsertBatch rows per insert chunk, WARN logging.
func Builder() *ClientBuilder {
	return &ClientBuilder{batchSize: DefaultInsertBatch}
}

// WithURL sets the endpoint, e.g. "http://localhost:8123/". Required.
func (b *ClientBuilder) WithURL(u string) *ClientBuilder {
	b.url = u
	return b
}

// WithDatabase sets the X-ClickHouse-Database header.
func (b *ClientBuilder) WithDatabase(database string) *ClientBuilder {
	b.database = database
	return b
}

// WithUser sets the X-ClickHouse-User header.
func (b *ClientBuilder) WithUser(user string) *ClientBuilder {
	b.user = user
	return b
}

// WithPassword sets the X-ClickHouse-Key header.
func (b *ClientBuilder) WithPassword(password string) *ClientBuilder {
	b.password = password
	return b
}

// WithHTTPClient injects a transport. Defaults to http.DefaultClient.
func (b *ClientBuilder) WithHTTPClient(c *http.Client) *ClientBuilder {
	b.httpClient = c
	return b
}

// WithCompression negotiates body compression for requests and responses.
func (b *ClientBuilder) WithCompression(t Compression) *ClientBuilder {
	b.compression = t
	return b
}

// WithInsertBatch overrides the rows-per-chunk batch size of streaming
// inserts.
func (b *ClientBuilder) WithInsertBatch(n int) *ClientBuilder {
	b.batchSize = n
	return b
}

// WithLogger injects a logger. Defaults to a WARN-level stderr logger.
func (b *ClientBuilder) WithLogger(l Logger) *ClientBuilder {
	b.logger = l
	return b
}

// Build validates the configuration and returns the client.
func (b *ClientBuilder) Build() (*Client, error) {
	if b.url == "" {
		return nil, &InvalidParamsError{Err: fmt.Errorf("need to specify url for Client")}
	}
	parsed, err := url.Parse(b.url)
	if err != nil {
		return nil, &InvalidParamsError{Err: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &InvalidParamsError{Err: fmt.Errorf("unsupported url scheme %q", parsed.Scheme)}
	}
	if b.compression != compression.None {
		q := parsed.Query()
		q.Set("enable_http_compression", "1")
		parsed.RawQuery = q.Encode()
	}
	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	batch := b.batchSize
	if batch <= 0 {
		batch = DefaultInsertBatch
	}
	return &Client{
		httpClient:  httpClient,
		url:         parsed.String(),
		database:    b.database,
		user:        b.user,
		password:    b.password,
		compression: b.compression,
		batchSize:   batch,
		logger:      logging.OrDefault(b.logger),
	}, nil
}

// newRequest builds a POST against the endpoint. contentEncoding is set
// for compressed request bodies; Content-Length is left to the transport,
// which knows it for finite readers and switches to chunked otherwise.
func (c *Client) newRequest(ctx context.Context, body io.Reader, contentEncoding string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, &InvalidParamsError{Err: err}
	}
	if c.database != "" {
		req.Header.Set("X-ClickHouse-Database", c.database)
	}
	if c.user != "" {
		req.Header.Set("X-ClickHouse-User", c.user)
	}
	if c.password != "" {
		req.Header.Set("X-ClickHouse-Key", c.password)
	}
	if c.compression != compression.None {
		req.Header.Set("Accept-Encoding", c.compression.ContentEncoding())
	}
	if contentEncoding != "" {
		req.Header.Set("Content-Encoding", contentEncoding)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	c.logger.Debugf(logging.NSHTTP+"POST %s -> %d", req.URL.Path, resp.StatusCode)
	return resp, nil
}

// responseBody wraps resp.Body with the decompressor matching its
// Content-Encoding. The returned closer closes both layers.
func (c *Client) responseBody(resp *http.Response) (io.ReadCloser, error) {
	token := resp.Header.Get("Content-Encoding")
	t, ok := compression.ParseContentEncoding(token)
	if !ok {
		_ = resp.Body.Close()
		return nil, &NetworkError{Err: fmt.Errorf("unexpected Content-Encoding %q", token)}
	}
	decoded, err := compression.NewReader(t, resp.Body)
	if err != nil {
		_ = resp.Body.Close()
		return nil, &NetworkError{Err: err}
	}
	return &layeredBody{outer: decoded, inner: resp.Body}, nil
}

type layeredBody struct {
	outer io.ReadCloser
	inner io.Closer
}

func (l *layeredBody) Read(p []byte) (int, error) { return l.outer.Read(p) }

func (l *layeredBody) Close() error {
	err := l.outer.Close()
	if cerr := l.inner.Close(); err == nil {
		err = cerr
	}
	return err
}

// badResponse drains a non-200 response into a BadResponseError. The body
// is used as the reason when it is readable UTF-8, otherwise the status
// line stands in.
func (c *Client) badResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	reason := fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	body, err := c.responseBody(resp)
	if err == nil {
		raw, rerr := io.ReadAll(io.LimitReader(body, 64<<10))
		if rerr == nil && len(raw) > 0 && utf8.Valid(raw) {
			reason = strings.TrimSpace(string(raw))
		}
		_ = body.Close()
	}
	c.logger.Errorf(logging.NSHTTP+"bad response: %s", reason)
	return &BadResponseError{Status: resp.StatusCode, Reason: reason}
}

// Execute POSTs sql verbatim and discards the response body.
func (c *Client) Execute(ctx context.Context, sql string) error {
	req, err := c.newRequest(ctx, strings.NewReader(sql), "")
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return c.badResponse(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// Query runs sql with the RowBinaryWithNamesAndTypes format appended and
// returns a lazy stream of decoded records. The caller owns the stream and
// must Close it.
func Query[T any, PT RowPtr[T]](ctx context.Context, c *Client, sql string) (*Rows[T, PT], error) {
	full := sql + " FORMAT RowBinaryWithNamesAndTypes"
	req, err := c.newRequest(ctx, strings.NewReader(full), "")
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.badResponse(resp)
	}
	body, err := c.responseBody(resp)
	if err != nil {
		return nil, err
	}
	return newRows[T, PT](ctx, body, c.logger)
}

// FetchAll runs sql and collects every record.
func FetchAll[T any, PT RowPtr[T]](ctx context.Context, c *Client, sql string) ([]T, error) {
	rows, err := Query[T, PT](ctx, c, sql)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []T
	for rows.Next() {
		out = append(out, rows.Row())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchOne runs sql and returns the first record. It returns
// ErrRowNotFound when the query yields no rows; extra rows are discarded.
func FetchOne[T any, PT RowPtr[T]](ctx context.Context, c *Client, sql string) (T, error) {
	var zero T
	rows, err := Query[T, PT](ctx, c, sql)
	if err != nil {
		return zero, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, ErrRowNotFound
	}
	return rows.Row(), nil
}

// Insert writes rows into table in one finite request body, so
// Content-Length is known up front.
func Insert[T any, PT RowPtr[T]](ctx context.Context, c *Client, table string, rows []T) error {
	var buf bytes.Buffer
	cw, err := compression.NewWriter(c.compression, &buf)
	if err != nil {
		return &InvalidParamsError{Err: err}
	}
	if err := writeInsertBody[T, PT](cw, table, sliceRows(rows), c.batchSize, c.logger); err != nil {
		return err
	}
	if err := cw.Close(); err != nil {
		return &NetworkError{Err: err}
	}
	req, err := c.newRequest(ctx, bytes.NewReader(buf.Bytes()), c.compression.ContentEncoding())
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return c.badResponse(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// InsertStream writes a lazy row source into table as a chunked request
// body. Rows are pulled on demand, batchSize per chunk; an error yielded
// by the source aborts the request, and the server rejects the truncated
// body.
func InsertStream[T any, PT RowPtr[T]](ctx context.Context, c *Client, table string, rows iter.Seq2[T, error]) error {
	pr, pw := io.Pipe()
	req, err := c.newRequest(ctx, pr, c.compression.ContentEncoding())
	if err != nil {
		return err
	}

	// The pump's error is the root cause when the source or codec fails;
	// the transport then reports a derived broken-body error, so the pump
	// error wins.
	var pumpErr error
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		cw, err := compression.NewWriter(c.compression, pw)
		if err != nil {
			pumpErr = &InvalidParamsError{Err: err}
			_ = pw.CloseWithError(err)
			return pumpErr
		}
		if err := writeInsertBody[T, PT](cw, table, rows, c.batchSize, c.logger); err != nil {
			pumpErr = err
			_ = pw.CloseWithError(err)
			return err
		}
		if err := cw.Close(); err != nil {
			pumpErr = &NetworkError{Err: err}
			_ = pw.CloseWithError(err)
			return pumpErr
		}
		return pw.Close()
	})
	g.Go(func() error {
		resp, err := c.do(req)
		if err != nil {
			// Unblock the pump; its writes fail from here on.
			_ = pr.CloseWithError(err)
			return err
		}
		if resp.StatusCode != http.StatusOK {
			_ = pr.Close()
			return c.badResponse(resp)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Body.Close()
	})
	err = g.Wait()
	if pumpErr != nil {
		return pumpErr
	}
	return err
}
