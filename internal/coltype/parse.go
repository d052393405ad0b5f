package coltype

// parse.go parses the textual column type reported by the server in a
// RowBinaryWithNamesAndTypes header, e.g. "Map(String, Array(UInt8))".
//
// The printer in coltype.go is the exact inverse: Parse(t.String()) == t for
// every constructible type. The parser additionally accepts "," where the
// server prints ", " between arguments.

import (
	"fmt"
	"strings"
)

// UnsupportedColumnError reports a server column type this codec cannot
// represent, or a malformed type string.
type UnsupportedColumnError struct {
	Text string
}

func (e *UnsupportedColumnError) Error() string {
	return fmt.Sprintf("unsupported column type: %s", e.Text)
}

var nullaryByName = map[string]*Type{
	"Bool":     Bool,
	"UInt8":    UInt8,
	"UInt16":   UInt16,
	"UInt32":   UInt32,
	"UInt64":   UInt64,
	"UInt128":  UInt128,
	"Int8":     Int8,
	"Int16":    Int16,
	"Int32":    Int32,
	"Int64":    Int64,
	"Int128":   Int128,
	"Float32":  Float32,
	"Float64":  Float64,
	"String":   String,
	"DateTime": DateTime,
	"UUID":     UUID,
	"IPv4":     IPv4,
	"IPv6":     IPv6,
}

// Parse converts a server-reported type string into its canonical Type.
func Parse(text string) (*Type, error) {
	t, ok := parse(text)
	if !ok {
		return nil, &UnsupportedColumnError{Text: text}
	}
	return t, nil
}

func parse(s string) (*Type, bool) {
	if t, ok := nullaryByName[s]; ok {
		return t, true
	}
	open := strings.IndexByte(s, '(')
	if open < 0 || s[len(s)-1] != ')' {
		return nil, false
	}
	head, body := s[:open], s[open+1:len(s)-1]
	switch head {
	case "FixedString":
		n, ok := parseWidth(body)
		if !ok {
			return nil, false
		}
		return FixedString(n), true
	case "Array":
		elem, ok := parse(body)
		if !ok {
			return nil, false
		}
		return Array(elem), true
	case "Nullable":
		elem, ok := parse(body)
		if !ok {
			return nil, false
		}
		return Nullable(elem), true
	case "LowCardinality":
		elem, ok := parse(body)
		if !ok {
			return nil, false
		}
		return LowCardinality(elem), true
	case "Map":
		parts, ok := splitTopLevel(body)
		if !ok || len(parts) != 2 {
			return nil, false
		}
		key, ok := parse(parts[0])
		if !ok {
			return nil, false
		}
		value, ok := parse(parts[1])
		if !ok {
			return nil, false
		}
		return Map(key, value), true
	case "Tuple":
		parts, ok := splitTopLevel(body)
		if !ok || len(parts) == 0 {
			return nil, false
		}
		elems := make([]*Type, len(parts))
		for i, p := range parts {
			elem, ok := parse(p)
			if !ok {
				return nil, false
			}
			elems[i] = elem
		}
		return Tuple(elems...), true
	case "Enum8":
		variants, ok := parseEnumVariants(body)
		if !ok {
			return nil, false
		}
		return Enum8(variants...), true
	default:
		return nil, false
	}
}

// parseWidth parses an unsigned decimal FixedString width. No sign, no
// spaces, at least one digit, width at least 1.
func parseWidth(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < '0' || b > '9' {
			return 0, false
		}
		n = n*10 + int(b-'0')
		if n > 1<<30 {
			return 0, false
		}
	}
	if n == 0 {
		return 0, false
	}
	return n, true
}

// splitTopLevel splits s at commas that sit at parenthesization depth zero
// and outside single-quoted labels. A single space after each comma is
// consumed; the server prints ", " but bare "," is accepted too.
func splitTopLevel(s string) ([]string, bool) {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch b := s[i]; {
		case inQuote:
			if b == '\\' {
				i++ // skip the escaped byte
			} else if b == '\'' {
				inQuote = false
			}
		case b == '\'':
			inQuote = true
		case b == '(':
			depth++
		case b == ')':
			depth--
			if depth < 0 {
				return nil, false
			}
		case b == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
			if start < len(s) && s[start] == ' ' {
				start++
				i++
			}
		}
	}
	if depth != 0 || inQuote {
		return nil, false
	}
	parts = append(parts, s[start:])
	return parts, true
}

// parseEnumVariants parses "'label' = N, 'label' = N, ...". Labels are
// single-quoted with backslash escapes; discriminants are signed decimal
// int8 literals. Space around "=" is optional.
func parseEnumVariants(s string) ([]EnumVariant, bool) {
	entries, ok := splitTopLevel(s)
	if !ok || len(entries) == 0 {
		return nil, false
	}
	variants := make([]EnumVariant, 0, len(entries))
	seen := make(map[int8]bool, len(entries))
	for _, e := range entries {
		name, rest, ok := parseQuotedLabel(e)
		if !ok {
			return nil, false
		}
		rest = strings.TrimPrefix(rest, " ")
		var found bool
		rest, found = strings.CutPrefix(rest, "=")
		if !found {
			return nil, false
		}
		rest = strings.TrimPrefix(rest, " ")
		value, ok := parseInt8(rest)
		if !ok {
			return nil, false
		}
		if seen[value] {
			return nil, false
		}
		seen[value] = true
		variants = append(variants, EnumVariant{Name: name, Value: value})
	}
	return variants, true
}

// parseQuotedLabel consumes a leading '...' label and returns it unescaped
// along with the remainder of the string.
func parseQuotedLabel(s string) (label, rest string, ok bool) {
	if len(s) == 0 || s[0] != '\'' {
		return "", "", false
	}
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return "", "", false
			}
			i++
			sb.WriteByte(s[i])
		case '\'':
			return sb.String(), s[i+1:], true
		default:
			sb.WriteByte(s[i])
		}
	}
	return "", "", false
}

// parseInt8 parses a signed decimal int8 literal with an optional sign.
func parseInt8(s string) (int8, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
		if s == "" {
			return 0, false
		}
	}
	n := 0
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < '0' || b > '9' {
			return 0, false
		}
		n = n*10 + int(b-'0')
		if n > 256 {
			return 0, false
		}
	}
	if neg {
		n = -n
	}
	if n < -128 || n > 127 {
		return 0, false
	}
	return int8(n), true
}
