package streamhouse

import (
	"bytes"
	"net/netip"
	"testing"
	"time"
)

// roundtripRow encodes r, decodes into out, and fails on leftover bytes.
func roundtripRow(t *testing.T, r Row, out Row) {
	t.Helper()
	w := &Writer{}
	if err := r.Write(w); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b := NewBytes(w.Bytes())
	if err := out.Read(b); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if b.Remaining() != 0 {
		t.Fatalf("decode left %d bytes", b.Remaining())
	}
}

func TestScalarRoundtrip(t *testing.T) {
	t.Run("Bool", func(t *testing.T) {
		for _, v := range []Bool{false, true} {
			var got Bool
			roundtripRow(t, &v, &got)
			if got != v {
				t.Errorf("roundtrip(%v) = %v", v, got)
			}
		}
	})
	t.Run("UInt64", func(t *testing.T) {
		for _, v := range []UInt64{0, 1, 1<<64 - 1} {
			var got UInt64
			roundtripRow(t, &v, &got)
			if got != v {
				t.Errorf("roundtrip(%d) = %d", v, got)
			}
		}
	})
	t.Run("Int8", func(t *testing.T) {
		for _, v := range []Int8{-128, -1, 0, 127} {
			var got Int8
			roundtripRow(t, &v, &got)
			if got != v {
				t.Errorf("roundtrip(%d) = %d", v, got)
			}
		}
	})
	t.Run("Int64", func(t *testing.T) {
		for _, v := range []Int64{-1 << 63, -1, 0, 1<<63 - 1} {
			var got Int64
			roundtripRow(t, &v, &got)
			if got != v {
				t.Errorf("roundtrip(%d) = %d", v, got)
			}
		}
	})
	t.Run("Float64", func(t *testing.T) {
		for _, v := range []Float64{0, -0.5, 1.0 / 137.0, 1e300} {
			var got Float64
			roundtripRow(t, &v, &got)
			if got != v {
				t.Errorf("roundtrip(%v) = %v", v, got)
			}
		}
	})
	t.Run("String", func(t *testing.T) {
		for _, v := range []String{"", "hi", "żółw", String(bytes.Repeat([]byte("x"), 300))} {
			var got String
			roundtripRow(t, &v, &got)
			if got != v {
				t.Errorf("roundtrip(%q) = %q", v, got)
			}
		}
	})
	t.Run("UInt128", func(t *testing.T) {
		v := UInt128{Lo: 0xDEADBEEF, Hi: 0xCAFE}
		var got UInt128
		roundtripRow(t, &v, &got)
		if got != v {
			t.Errorf("roundtrip(%+v) = %+v", v, got)
		}
	})
	t.Run("Int128", func(t *testing.T) {
		v := Int128{Lo: 42, Hi: -1}
		var got Int128
		roundtripRow(t, &v, &got)
		if got != v {
			t.Errorf("roundtrip(%+v) = %+v", v, got)
		}
	})
	t.Run("LCString", func(t *testing.T) {
		v := LCString("rare")
		var got LCString
		roundtripRow(t, &v, &got)
		if got != v {
			t.Errorf("roundtrip(%q) = %q", v, got)
		}
	})
}

func TestBoolReadsNonzeroAsTrue(t *testing.T) {
	var v Bool
	if err := v.Read(NewBytes([]byte{0x17})); err != nil {
		t.Fatal(err)
	}
	if !bool(v) {
		t.Error("0x17 decoded as false")
	}
}

func TestDateTime(t *testing.T) {
	v := DateTime(1700000000)
	w := &Writer{}
	if err := v.Write(w); err != nil {
		t.Fatal(err)
	}
	// Identical to UInt32 seconds since epoch, little-endian.
	if !bytes.Equal(w.Bytes(), []byte{0x00, 0xF1, 0x53, 0x65}) {
		t.Errorf("encoded %x", w.Bytes())
	}
	if got := v.Time(); !got.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Time() = %v", got)
	}
	if got := DateTimeOf(time.Unix(1700000000, 999_999_999).UTC()); got != v {
		t.Errorf("DateTimeOf truncation = %d", got)
	}
}

// TestIPv4Golden pins the octet-reversal: 1.2.3.4 is 04 03 02 01 on the
// wire.
func TestIPv4Golden(t *testing.T) {
	v := IPv4{1, 2, 3, 4}
	w := &Writer{}
	if err := v.Write(w); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(w.Bytes(), []byte{0x04, 0x03, 0x02, 0x01}) {
		t.Fatalf("encoded %x, want 04030201", w.Bytes())
	}

	var got IPv4
	if err := got.Read(NewBytes([]byte{0x04, 0x03, 0x02, 0x01})); err != nil {
		t.Fatal(err)
	}
	if got != v {
		t.Errorf("decoded %v, want %v", got, v)
	}
	if got.String() != "1.2.3.4" {
		t.Errorf("String() = %q", got.String())
	}

	addr := netip.MustParseAddr("10.20.30.40")
	fromAddr, ok := IPv4FromAddr(addr)
	if !ok || fromAddr.Addr() != addr {
		t.Errorf("IPv4FromAddr(%v) = (%v, %v)", addr, fromAddr, ok)
	}
	if _, ok := IPv4FromAddr(netip.MustParseAddr("::1")); ok {
		t.Error("IPv4FromAddr accepted an IPv6 address")
	}
}

func TestIPv6Roundtrip(t *testing.T) {
	addr := netip.MustParseAddr("2001:db8::68")
	v, ok := IPv6FromAddr(addr)
	if !ok {
		t.Fatal("IPv6FromAddr rejected a v6 address")
	}
	var got IPv6
	roundtripRow(t, &v, &got)
	if got != v {
		t.Errorf("roundtrip = %v, want %v", got, v)
	}
	if got.Addr() != addr {
		t.Errorf("Addr() = %v", got.Addr())
	}
	if _, ok := IPv6FromAddr(netip.MustParseAddr("1.2.3.4")); ok {
		t.Error("IPv6FromAddr accepted an IPv4 address")
	}
}

func TestUUIDRoundtrip(t *testing.T) {
	v, err := ParseUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if err != nil {
		t.Fatal(err)
	}
	var got UUID
	roundtripRow(t, &v, &got)
	if got != v {
		t.Errorf("roundtrip = %v, want %v", got, v)
	}
	if got.String() != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Errorf("String() = %q", got.String())
	}
	if _, err := ParseUUID("not-a-uuid"); err == nil {
		t.Error("ParseUUID accepted junk")
	}
}

// TestRowAs exercises the internal-representation adapter from the RowAs
// documentation: one float in Go, seconds-plus-nanos on the wire.
type wireStamp struct {
	Seconds UInt64
	Nanos   UInt32
}

func (s *wireStamp) Columns(parent string) []Column {
	return []Column{
		{Name: "seconds", Type: TypeUInt64},
		{Name: "nanos", Type: TypeUInt32},
	}
}

func (s *wireStamp) Read(b *Bytes) error {
	if err := s.Seconds.Read(b); err != nil {
		return err
	}
	return s.Nanos.Read(b)
}

func (s *wireStamp) Write(w *Writer) error {
	if err := s.Seconds.Write(w); err != nil {
		return err
	}
	return s.Nanos.Write(w)
}

type stamp float64

func (s *stamp) FromInternal(i wireStamp) {
	*s = stamp(float64(i.Seconds) + float64(i.Nanos)*1e-9)
}

func (s *stamp) ToInternal() wireStamp {
	sec := uint64(*s)
	return wireStamp{
		Seconds: UInt64(sec),
		Nanos:   UInt32((float64(*s) - float64(sec)) * 1e9),
	}
}

func (s *stamp) Columns(parent string) []Column { return ColumnsOf[wireStamp](parent) }
func (s *stamp) Read(b *Bytes) error            { return ReadAs[wireStamp](b, s) }
func (s *stamp) Write(w *Writer) error          { return WriteAs[wireStamp](w, s) }

func TestRowAs(t *testing.T) {
	cols := ColumnsOf[stamp]("")
	if len(cols) != 2 || cols[0].Name != "seconds" || cols[1].Name != "nanos" {
		t.Fatalf("delegated columns = %v", cols)
	}

	v := stamp(12345.5)
	var got stamp
	roundtripRow(t, &v, &got)
	if got != v {
		t.Errorf("roundtrip = %v, want %v", got, v)
	}
}
