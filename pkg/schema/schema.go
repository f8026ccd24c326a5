// Package schema defines SoR column types and sample-based schema inference.
//
// Column types form a total widening order Bool < Int < Float < String: a
// wider type can represent every value a narrower one can. Inference picks,
// per column, the narrowest type compatible with every non-missing value
// observed in a bounded sample; the full parse then judges all data against
// that fixed schema.
package schema

import (
	"strconv"

	"github.com/goccy/go-json"

	"github.com/ajitpratap0/sor/pkg/lexer"
	"github.com/ajitpratap0/sor/pkg/sorerrors"
	stringpool "github.com/ajitpratap0/sor/pkg/strings"
)

// ColumnType represents the data type of a column. The zero value is Bool,
// the narrowest type; the declaration order is the widening order.
type ColumnType uint8

const (
	ColumnTypeBool ColumnType = iota
	ColumnTypeInt
	ColumnTypeFloat
	ColumnTypeString
)

// String returns the canonical upper-case name of the type.
func (t ColumnType) String() string {
	switch t {
	case ColumnTypeBool:
		return "BOOL"
	case ColumnTypeInt:
		return "INT"
	case ColumnTypeFloat:
		return "FLOAT"
	case ColumnTypeString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Widen returns the narrowest type that can represent values of both t and
// other.
func (t ColumnType) Widen(other ColumnType) ColumnType {
	if other > t {
		return other
	}
	return t
}

// CompatibleWith reports whether a value of type other can be stored in a
// column of type t without loss, i.e. t is at least as wide as other.
func (t ColumnType) CompatibleWith(other ColumnType) bool {
	return t >= other
}

// MarshalJSON encodes the type as its canonical name.
func (t ColumnType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes a canonical type name.
func (t *ColumnType) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"BOOL"`:
		*t = ColumnTypeBool
	case `"INT"`:
		*t = ColumnTypeInt
	case `"FLOAT"`:
		*t = ColumnTypeFloat
	case `"STRING"`:
		*t = ColumnTypeString
	default:
		return sorerrors.Newf(sorerrors.ErrorTypeData, "unknown column type %s", string(data))
	}
	return nil
}

// Schema is an ordered sequence of column types, one per column. It is fixed
// once inference completes and immutable thereafter.
type Schema []ColumnType

// Len returns the number of columns.
func (s Schema) Len() int {
	return len(s)
}

// Equal reports whether two schemas have identical types in order.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i, t := range s {
		if other[i] != t {
			return false
		}
	}
	return true
}

// JSON encodes the schema as a JSON array of type names.
func (s Schema) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// ParseJSON decodes a schema from a JSON array of type names.
func ParseJSON(data []byte) (Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeData, "invalid schema JSON")
	}
	return s, nil
}

// TypeOf returns the narrowest column type compatible with a lexed field
// value. The second return is false for missing fields, which are compatible
// with every type and carry no type evidence.
func TypeOf(tok lexer.Token) (ColumnType, bool) {
	if tok.Missing {
		return ColumnTypeBool, false
	}
	if tok.Quoted {
		// Quote-wrapping forces a string, even for numeric payloads.
		return ColumnTypeString, true
	}

	raw := stringpool.BytesToString(tok.Raw)
	if raw == "0" || raw == "1" {
		return ColumnTypeBool, true
	}
	if intLike(tok.Raw) {
		if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return ColumnTypeInt, true
		}
		// Digits that overflow int64 still fit a float column.
		return ColumnTypeFloat, true
	}
	if floatLike(tok.Raw) {
		if _, err := strconv.ParseFloat(raw, 64); err == nil {
			return ColumnTypeFloat, true
		}
	}
	return ColumnTypeString, true
}

// intLike reports whether b is an optional sign followed by one or more
// digits. Leading zeros are allowed: "007" is an integer.
func intLike(b []byte) bool {
	if len(b) > 0 && (b[0] == '+' || b[0] == '-') {
		b = b[1:]
	}
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// floatLike reports whether b is standard decimal or exponent notation:
// an optional sign, digits with an optional fractional part (or a bare
// fractional part), and an optional exponent. Deliberately narrower than
// strconv.ParseFloat, which also accepts "inf", "NaN" and hex floats.
func floatLike(b []byte) bool {
	i := 0
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}

	intDigits := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
		intDigits++
	}

	fracDigits := 0
	if i < len(b) && b[i] == '.' {
		i++
		for i < len(b) && b[i] >= '0' && b[i] <= '9' {
			i++
			fracDigits++
		}
	}

	if intDigits == 0 && fracDigits == 0 {
		return false
	}

	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		i++
		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			i++
		}
		expDigits := 0
		for i < len(b) && b[i] >= '0' && b[i] <= '9' {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false
		}
	}

	return i == len(b)
}
