package streamhouse

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/aalhour/streamhouse/internal/logging"
)

// chunkedReader serves its parts one per Read call, exercising arbitrary
// chunk boundaries in the response body.
type chunkedReader struct {
	parts [][]byte
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	for len(r.parts) > 0 && len(r.parts[0]) == 0 {
		r.parts = r.parts[1:]
	}
	if len(r.parts) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.parts[0])
	if n == len(r.parts[0]) {
		r.parts = r.parts[1:]
	} else {
		r.parts[0] = r.parts[0][n:]
	}
	return n, nil
}

func bodyOf(parts ...[]byte) io.ReadCloser {
	return io.NopCloser(&chunkedReader{parts: parts})
}

// scenarioA is the literal single-column UInt8 stream:
// header [("name", UInt8)] followed by rows 5 and 23.
var scenarioA = []byte{
	0x01,
	0x04, 'n', 'a', 'm', 'e',
	0x05, 'U', 'I', 'n', 't', '8',
	0x05,
	0x17,
}

func TestStreamScenarioA(t *testing.T) {
	rows, err := newRows[UInt8](context.Background(), bodyOf(scenarioA), logging.Discard)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = rows.Close() }()

	var got []UInt8
	for rows.Next() {
		got = append(got, rows.Row())
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if !reflect.DeepEqual(got, []UInt8{5, 23}) {
		t.Errorf("rows = %v, want [5 23]", got)
	}
}

// nameAge is the minimal two-column record used for the literal-byte
// payload check.
type nameAge struct {
	Name string
	Age  uint8
}

func (p *nameAge) Columns(parent string) []Column {
	return []Column{
		{Name: "name", Type: TypeString},
		{Name: "age", Type: TypeUInt8},
	}
}

func (p *nameAge) Read(b *Bytes) error {
	var err error
	if p.Name, err = b.ReadString(); err != nil {
		return err
	}
	if p.Age, err = b.ReadUInt8(); err != nil {
		return err
	}
	return nil
}

func (p *nameAge) Write(w *Writer) error {
	_ = w.WriteString(p.Name)
	return w.WriteUInt8(p.Age)
}

// TestPayloadLiteral pins the two-row payload encoding of a String+UInt8
// record: {"David", 49} and {"Roundy", 49}.
func TestPayloadLiteral(t *testing.T) {
	w := &Writer{}
	for _, p := range []nameAge{{"David", 49}, {"Roundy", 49}} {
		if err := p.Write(w); err != nil {
			t.Fatal(err)
		}
	}
	want := []byte{
		0x05, 'D', 'a', 'v', 'i', 'd', 0x31,
		0x06, 'R', 'o', 'u', 'n', 'd', 'y', 0x31,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("payload = %x, want %x", w.Bytes(), want)
	}

	body := append(buildHeader(ColumnsOf[nameAge]("")), want...)
	rows, err := newRows[nameAge](context.Background(), bodyOf(body), logging.Discard)
	if err != nil {
		t.Fatal(err)
	}
	var got []nameAge
	for rows.Next() {
		got = append(got, rows.Row())
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []nameAge{{"David", 49}, {"Roundy", 49}}) {
		t.Errorf("rows = %+v", got)
	}
}

// developerBody renders a full response body for the developer record.
func developerBody(devs []developer) []byte {
	body := buildHeader(ColumnsOf[developer](""))
	w := &Writer{}
	for i := range devs {
		_ = devs[i].Write(w)
	}
	return append(body, w.Bytes()...)
}

func TestStreamRecords(t *testing.T) {
	devs := []developer{
		{Name: "David", FavoriteColor: "blue", Age: 49},
		{Name: "Roundy", FavoriteColor: "blue", Age: 49},
	}
	body := developerBody(devs)

	// The two-row payload after the header is the documented literal.
	payload := []byte{
		0x05, 'D', 'a', 'v', 'i', 'd', 0x04, 'b', 'l', 'u', 'e', 0x31,
		0x06, 'R', 'o', 'u', 'n', 'd', 'y', 0x04, 'b', 'l', 'u', 'e', 0x31,
	}
	if !bytes.HasSuffix(body, payload) {
		t.Fatalf("payload = %x", body)
	}

	rows, err := newRows[developer](context.Background(), bodyOf(body), logging.Discard)
	if err != nil {
		t.Fatal(err)
	}
	var got []developer
	for rows.Next() {
		got = append(got, rows.Row())
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, devs) {
		t.Errorf("rows = %+v", got)
	}
}

// TestChunkIndependence splits a valid body at every byte boundary and
// checks the decoded sequence never changes.
func TestChunkIndependence(t *testing.T) {
	devs := []developer{
		{Name: "David", FavoriteColor: "blue", Age: 49},
		{Name: "Roundy", FavoriteColor: "teal", Age: 49},
	}
	body := developerBody(devs)

	for i := 0; i <= len(body); i++ {
		rows, err := newRows[developer](context.Background(), bodyOf(body[:i], body[i:]), logging.Discard)
		if err != nil {
			t.Fatalf("split at %d: %v", i, err)
		}
		var got []developer
		for rows.Next() {
			got = append(got, rows.Row())
		}
		if err := rows.Err(); err != nil {
			t.Fatalf("split at %d: %v", i, err)
		}
		if !reflect.DeepEqual(got, devs) {
			t.Fatalf("split at %d: rows = %+v", i, got)
		}
	}

	// Three-way splits across the header/payload boundary region.
	for i := 0; i < len(body); i += 3 {
		for j := i; j < len(body); j += 5 {
			rows, err := newRows[developer](context.Background(), bodyOf(body[:i], body[i:j], body[j:]), logging.Discard)
			if err != nil {
				t.Fatalf("split at %d/%d: %v", i, j, err)
			}
			var got []developer
			for rows.Next() {
				got = append(got, rows.Row())
			}
			if err := rows.Err(); err != nil || !reflect.DeepEqual(got, devs) {
				t.Fatalf("split at %d/%d: rows = %+v, err = %v", i, j, got, err)
			}
		}
	}
}

// TestTruncationDetection removes suffixes from a valid body: a cut inside
// a row must surface ErrNotEnoughData after a prefix of the rows; a cut on
// a row boundary is a clean, shorter stream. Truncating the header fails
// construction.
func TestTruncationDetection(t *testing.T) {
	devs := []developer{
		{Name: "David", FavoriteColor: "blue", Age: 49},
		{Name: "Roundy", FavoriteColor: "teal", Age: 49},
	}
	headerLen := len(buildHeader(ColumnsOf[developer]("")))
	body := developerBody(devs)

	w := &Writer{}
	_ = devs[0].Write(w)
	firstRowLen := w.Len()

	for cut := 0; cut < len(body); cut++ {
		truncated := body[:cut]
		if cut < headerLen {
			if _, err := newRows[developer](context.Background(), bodyOf(truncated), logging.Discard); err == nil {
				t.Fatalf("cut at %d: header truncation not detected", cut)
			}
			continue
		}
		rows, err := newRows[developer](context.Background(), bodyOf(truncated), logging.Discard)
		if err != nil {
			t.Fatalf("cut at %d: %v", cut, err)
		}
		var got []developer
		for rows.Next() {
			got = append(got, rows.Row())
		}
		rowBoundary := cut == headerLen || cut == headerLen+firstRowLen
		if rowBoundary {
			if err := rows.Err(); err != nil {
				t.Fatalf("cut at %d: clean boundary reported %v", cut, err)
			}
		} else if !errors.Is(rows.Err(), ErrNotEnoughData) {
			t.Fatalf("cut at %d: err = %v, want ErrNotEnoughData", cut, rows.Err())
		}
		for i, d := range got {
			if d != devs[i] {
				t.Fatalf("cut at %d: row %d = %+v", cut, i, d)
			}
		}
	}
}

// TestHeaderSymmetry feeds the writer-emitted insert header back through
// the header reader and negotiation for the same record type.
func TestHeaderSymmetry(t *testing.T) {
	hdr, err := insertHeader("developers", ColumnsOf[developer](""))
	if err != nil {
		t.Fatal(err)
	}
	preamble := []byte("INSERT INTO developers FORMAT RowBinaryWithNamesAndTypes\n")
	if !bytes.HasPrefix(hdr, preamble) {
		t.Fatalf("preamble missing: %q", hdr)
	}
	h, err := readHeader(NewBytes(hdr[len(preamble):]))
	if err != nil {
		t.Fatal(err)
	}
	if err := negotiate(ColumnsOf[developer](""), h); err != nil {
		t.Errorf("negotiate: %v", err)
	}
}

func TestStreamSchemaMismatch(t *testing.T) {
	body := buildHeader([]Column{{Name: "x", Type: TypeString}})
	_, err := newRows[UInt8](context.Background(), bodyOf(body), logging.Discard)
	var wrongTypes *WrongColumnTypesError
	if !errors.As(err, &wrongTypes) {
		t.Fatalf("err = %v, want WrongColumnTypesError", err)
	}
}

func TestStreamInvalidEnumTagTerminates(t *testing.T) {
	colors := TypeEnum8(EnumVariant{"red", 0}, EnumVariant{"blue", 1})
	body := buildHeader([]Column{{Name: "", Type: colors}})
	body = append(body, 0x00, 0x05) // valid row, then undeclared tag 5

	rows, err := newRows[color](context.Background(), bodyOf(body), logging.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if !rows.Next() {
		t.Fatalf("first row rejected: %v", rows.Err())
	}
	if rows.Next() {
		t.Fatal("undeclared tag accepted")
	}
	var tagErr *InvalidTagEncodingError
	if !errors.As(rows.Err(), &tagErr) || tagErr.Tag != 5 {
		t.Fatalf("err = %v, want InvalidTagEncodingError(5)", rows.Err())
	}
	// The reader is terminal after the error.
	if rows.Next() {
		t.Fatal("terminal reader yielded a row")
	}
}

// color is an Enum8-backed scalar used by the stream tests.
type color int8

var colorType = TypeEnum8(EnumVariant{"red", 0}, EnumVariant{"blue", 1})

func (c *color) Columns(parent string) []Column {
	return []Column{{Name: parent, Type: colorType}}
}

func (c *color) Read(b *Bytes) error {
	v, err := b.ReadEnum8(colorType)
	*c = color(v)
	return err
}

func (c *color) Write(w *Writer) error { return w.WriteEnum8(colorType, int8(*c)) }

func TestStreamAll(t *testing.T) {
	devs := []developer{
		{Name: "David", FavoriteColor: "blue", Age: 49},
		{Name: "Roundy", FavoriteColor: "blue", Age: 49},
	}
	rows, err := newRows[developer](context.Background(), bodyOf(developerBody(devs)), logging.Discard)
	if err != nil {
		t.Fatal(err)
	}
	var got []developer
	for d, err := range rows.All() {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, d)
	}
	if !reflect.DeepEqual(got, devs) {
		t.Errorf("All() = %+v", got)
	}

	// Early break closes the stream.
	rows, err = newRows[developer](context.Background(), bodyOf(developerBody(devs)), logging.Discard)
	if err != nil {
		t.Fatal(err)
	}
	for range rows.All() {
		break
	}
	if !rows.closed {
		t.Error("break did not close the stream")
	}
}

func TestStreamCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	devs := []developer{{Name: "David", FavoriteColor: "blue", Age: 49}}
	body := developerBody(devs)

	// The body errors once the context is cancelled, the way an HTTP body
	// does; the stream must end cleanly rather than surface the error.
	rows, err := newRows[developer](ctx, &cancelBody{data: body, ctx: ctx, cancel: cancel}, logging.Discard)
	if err != nil {
		t.Fatal(err)
	}
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		t.Errorf("cancelled stream Err = %v, want nil", err)
	}
}

// cancelBody serves its payload in one read, cancels the context, then
// fails every subsequent read.
type cancelBody struct {
	data   []byte
	ctx    context.Context
	cancel context.CancelFunc
	served bool
}

func (b *cancelBody) Read(p []byte) (int, error) {
	if !b.served {
		b.served = true
		return copy(p, b.data), nil
	}
	b.cancel()
	return 0, b.ctx.Err()
}

func (b *cancelBody) Close() error { return nil }
