// Package sqlvalue implements the engine's tagged scalar value and the
// coercion rules applied when a value is assigned to a typed column slot.
package sqlvalue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harrison/sqlengine/errkind"
)

// Kind tags which variant a Value holds.
type Kind int

const (
	// Null is the explicit absence of a value.
	Null Kind = iota
	// Int holds a 64-bit signed integer.
	Int
	// Float holds a 64-bit floating point number.
	Float
	// String holds UTF-8 text.
	String
)

// Dtype is a column's declared scalar type, one of INT, FLOAT, STRING.
type Dtype int

const (
	// DtInt is the INT column type.
	DtInt Dtype = iota
	// DtFloat is the FLOAT column type.
	DtFloat
	// DtString is the STRING column type.
	DtString
)

// ParseDtype maps a case-insensitive dtype keyword to a Dtype.
func ParseDtype(s string) (Dtype, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INT":
		return DtInt, true
	case "FLOAT":
		return DtFloat, true
	case "STRING":
		return DtString, true
	default:
		return 0, false
	}
}

// String renders the dtype the way it appears in schema documents.
func (d Dtype) String() string {
	switch d {
	case DtInt:
		return "INT"
	case DtFloat:
		return "FLOAT"
	case DtString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Value is a scalar belonging to one of three tagged variants plus an
// explicit null. Booleans are never constructed directly by the parser or
// storage layer; they only appear transiently as coercion-rejection cases.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
	isB  bool
}

// NullValue is the singleton null value.
var NullValue = Value{kind: Null}

// NewInt builds an integer Value.
func NewInt(i int64) Value { return Value{kind: Int, i: i} }

// NewFloat builds a float Value.
func NewFloat(f float64) Value { return Value{kind: Float, f: f} }

// NewString builds a string Value.
func NewString(s string) Value { return Value{kind: String, s: s} }

// newBool builds the internal boolean sentinel that FromInterface returns
// for a decoded JSON boolean; Coerce either rejects it or renders it as a
// string, so it is never a resting column value. The parser turns
// "true"/"false" barewords into plain strings, not into this sentinel.
func newBool(b bool) Value { return Value{kind: String, isB: true, b: b} }

// Kind reports the value's tagged variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == Null }

// Int returns the raw integer payload; only meaningful when Kind() == Int.
func (v Value) Int() int64 { return v.i }

// Float returns the raw float payload; only meaningful when Kind() == Float.
func (v Value) Float() float64 { return v.f }

// Str returns the raw string payload; only meaningful when Kind() == String.
func (v Value) Str() string { return v.s }

// Equal implements structural equality across variants. Two nulls are never
// equal to each other under the "both operands non-null" comparison rule
// used by WHERE; callers that need SQL NULL semantics check IsNull first.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Int:
		return v.i == other.i
	case Float:
		return v.f == other.f
	case String:
		return v.s == other.s && v.isB == other.isB && v.b == other.b
	}
	return false
}

// HashKey returns a value suitable as a Go map key that never collides
// across variants: the discriminant is folded into the key alongside the
// payload, so integer 1 and string "1" hash to distinct buckets.
func (v Value) HashKey() interface{} {
	switch v.kind {
	case Int:
		return [2]interface{}{Int, v.i}
	case Float:
		return [2]interface{}{Float, v.f}
	case String:
		return [2]interface{}{String, v.s}
	default:
		return [2]interface{}{Null, nil}
	}
}

// Interface renders v as a plain Go value suitable for JSON encoding:
// nil, int64, float64, or string.
func (v Value) Interface() interface{} {
	switch v.kind {
	case Int:
		return v.i
	case Float:
		return v.f
	case String:
		return v.s
	default:
		return nil
	}
}

// FromInterface builds a Value from a decoded JSON scalar (nil, float64,
// string, or bool). JSON numbers decode as float64; an integral float64 is
// returned as Int and any other as Float. The caller then coerces the
// result against the column's dtype, so an integral value in a FLOAT
// column comes back as Float.
func FromInterface(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return NullValue
	case bool:
		return newBool(x)
	case string:
		return NewString(x)
	case float64:
		if x == float64(int64(x)) {
			return NewInt(int64(x))
		}
		return NewFloat(x)
	case int64:
		return NewInt(x)
	case int:
		return NewInt(int64(x))
	default:
		return NullValue
	}
}

// Coerce assigns raw to a slot of the given dtype, following the table in
// spec §4.3. Null always passes through. Booleans are explicitly rejected
// for INT and FLOAT targets.
func Coerce(raw Value, target Dtype) (Value, error) {
	if raw.IsNull() {
		return NullValue, nil
	}

	if raw.isB {
		switch target {
		case DtInt, DtFloat:
			return Value{}, errkind.Newf(errkind.Schema, "cannot coerce boolean to %s", target)
		case DtString:
			if raw.b {
				return NewString("true"), nil
			}
			return NewString("false"), nil
		}
	}

	switch target {
	case DtInt:
		return coerceToInt(raw)
	case DtFloat:
		return coerceToFloat(raw)
	case DtString:
		return coerceToString(raw), nil
	default:
		return Value{}, errkind.Newf(errkind.Schema, "unsupported dtype %v", target)
	}
}

func coerceToInt(raw Value) (Value, error) {
	switch raw.kind {
	case Int:
		return raw, nil
	case Float:
		if raw.f != float64(int64(raw.f)) {
			return Value{}, errkind.Newf(errkind.Schema, "float %v has no exact integer value", raw.f)
		}
		return NewInt(int64(raw.f)), nil
	case String:
		trimmed := strings.TrimSpace(raw.s)
		if trimmed == "" {
			return Value{}, errkind.New(errkind.Schema, "cannot parse empty string as INT")
		}
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return Value{}, errkind.Wrap(errkind.Schema, fmt.Sprintf("cannot parse %q as INT", raw.s), err)
		}
		return NewInt(n), nil
	default:
		return Value{}, errkind.Newf(errkind.Schema, "cannot coerce %v to INT", raw.kind)
	}
}

func coerceToFloat(raw Value) (Value, error) {
	switch raw.kind {
	case Int:
		return NewFloat(float64(raw.i)), nil
	case Float:
		return raw, nil
	case String:
		trimmed := strings.TrimSpace(raw.s)
		if trimmed == "" {
			return Value{}, errkind.New(errkind.Schema, "cannot parse empty string as FLOAT")
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Value{}, errkind.Wrap(errkind.Schema, fmt.Sprintf("cannot parse %q as FLOAT", raw.s), err)
		}
		return NewFloat(f), nil
	default:
		return Value{}, errkind.Newf(errkind.Schema, "cannot coerce %v to FLOAT", raw.kind)
	}
}

// formatFloat renders f the way Python's str() renders a float: the
// shortest exact decimal, with a trailing ".0" for integral values so
// 10.0 reads as "10.0" rather than "10" (original_source/minidb's
// coercion relies on str(10.0) == "10.0").
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func coerceToString(raw Value) Value {
	switch raw.kind {
	case Int:
		return NewString(strconv.FormatInt(raw.i, 10))
	case Float:
		return NewString(formatFloat(raw.f))
	case String:
		return raw
	default:
		return NewString("")
	}
}

// Compare applies the natural order for op ("<" or ">") between two
// non-null values of compatible dtype: numeric across INT/FLOAT when
// either operand is float, lexicographic for strings. Both operands must
// be non-null; callers enforce that before calling Compare.
func Compare(left, right Value, op string) (bool, error) {
	if left.kind == String || right.kind == String {
		if left.kind != String || right.kind != String {
			return false, errkind.New(errkind.Schema, "cannot order string against numeric value")
		}
		switch op {
		case "<":
			return left.s < right.s, nil
		case ">":
			return left.s > right.s, nil
		default:
			return false, errkind.Newf(errkind.Schema, "unsupported operator %q", op)
		}
	}

	lf := asFloat(left)
	rf := asFloat(right)
	switch op {
	case "<":
		return lf < rf, nil
	case ">":
		return lf > rf, nil
	default:
		return false, errkind.Newf(errkind.Schema, "unsupported operator %q", op)
	}
}

func asFloat(v Value) float64 {
	if v.kind == Int {
		return float64(v.i)
	}
	return v.f
}
