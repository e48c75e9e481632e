package lang

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SubFunctions is the table a [Template] calls into for GET and LENGTH.
type SubFunctions interface {
	// Get resolves the variable name. The missing-variable policy is up to
	// the implementation.
	Get(name string) (any, error)
	// Length returns the element or character count of v.
	Length(v any) (int, error)
}

// Funcs adapts plain functions to [SubFunctions]. A nil Lookup resolves
// every name to nil; a nil Size uses [Length].
type Funcs struct {
	Lookup func(name string) (any, error)
	Size   func(v any) (int, error)
}

// Get implements [SubFunctions].
func (f Funcs) Get(name string) (any, error) {
	if f.Lookup == nil {
		return nil, nil
	}

	return f.Lookup(name)
}

// Length implements [SubFunctions].
func (f Funcs) Length(v any) (int, error) {
	if f.Size == nil {
		return Length(v)
	}

	return f.Size(v)
}

// Map is a [SubFunctions] backed by a map. Missing names resolve to nil.
type Map map[string]any

// Get implements [SubFunctions].
func (m Map) Get(name string) (any, error) { return m[name], nil }

// Length implements [SubFunctions] using [Length].
func (Map) Length(v any) (int, error) { return Length(v) }

// Length is the default LENGTH rule: nil has length 0, a string its rune
// count, and a slice, array or map its element count. Any other value is an
// [ErrNotSized] error.
func Length(v any) (int, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case string:
		return utf8.RuneCountInString(v), nil
	case []any:
		return len(v), nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return 0, nil
		}

		return Length(rv.Elem().Interface())
	default:
		return 0, ErrNotSized.Errorf("%T", v)
	}
}

// Truthy reports whether v counts as true in an IF condition.
// false, zero, NaN, the empty string and nil are false; everything else is
// true.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}

	if f, ok := asFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}

	return true
}

// Text converts an evaluated value to the string a template renders.
//
// Integral numbers print without a fractional part, nil prints as the empty
// string, and slices and arrays print their elements joined by ",".
func Text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	}

	if f, ok := asFloat(v); ok {
		return formatNumber(f)
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 && rv.Kind() == reflect.Slice {
			return string(rv.Bytes())
		}

		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Text(rv.Index(i).Interface())
		}

		return strings.Join(parts, ",")

	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}

		return Text(rv.Elem().Interface())

	default:
		return fmt.Sprint(v)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	if a := math.Abs(f); a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// asFloat converts numeric kinds to float64.
func asFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// toNumber coerces v to a number for a relational comparison. Strings that
// do not hold a number, and non-scalar values, become NaN.
func toNumber(v any) float64 {
	switch v := v.(type) {
	case nil:
		return 0
	case bool:
		if v {
			return 1
		}

		return 0
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}

		return f
	}

	if f, ok := asFloat(v); ok {
		return f
	}

	return math.NaN()
}

// Compare applies op to a and b.
//
// StrictEqual holds only for values of the same kind (number, string, bool,
// nil, or identical other types) that are equal. The ordering operators
// compare two strings lexically and anything else numerically, where NaN
// compares false.
func Compare(a any, op Comparator, b any) bool {
	if op == StrictEqual {
		return strictEqual(a, b)
	}

	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return ordered(strings.Compare(sa, sb), op)
		}
	}

	x, y := toNumber(a), toNumber(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}

	switch {
	case x < y:
		return ordered(-1, op)
	case x > y:
		return ordered(1, op)
	default:
		return ordered(0, op)
	}
}

func ordered(c int, op Comparator) bool {
	switch op {
	case Less:
		return c < 0
	case LessEqual:
		return c <= 0
	case Greater:
		return c > 0
	case GreaterEqual:
		return c >= 0
	case StrictEqual:
		return c == 0
	default:
		return false
	}
}

func strictEqual(a, b any) bool {
	if x, ok := asFloat(a); ok {
		y, ok := asFloat(b)

		return ok && x == y
	}

	switch a := a.(type) {
	case nil:
		return b == nil
	case string:
		s, ok := b.(string)

		return ok && a == s
	case bool:
		t, ok := b.(bool)

		return ok && a == t
	}

	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}

	return reflect.DeepEqual(a, b)
}
