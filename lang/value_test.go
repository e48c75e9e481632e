package lang

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestLength(t *testing.T) {
	arr := [2]int{1, 2}

	tests := []struct {
		name string
		in   any
		want int
	}{
		{"nil", nil, 0},
		{"string", "ABC", 3},
		{"multibyte", "héllo", 5},
		{"any slice", []any{1, "a", nil}, 3},
		{"int slice", []int{1, 2, 3, 4}, 4},
		{"array", arr, 2},
		{"array pointer", &arr, 2},
		{"map", map[string]any{"a": 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Length(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("Length(%v) = %d, %v; want %d", tt.in, got, err, tt.want)
			}
		})
	}

	for _, in := range []any{5, 1.5, true, struct{}{}} {
		if _, err := Length(in); !errors.Is(err, ErrNotSized) {
			t.Errorf("Length(%v) error = %v, want ErrNotSized", in, err)
		}
	}
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{nil, false, 0, 0.0, math.NaN(), "", uint8(0)} {
		if Truthy(v) {
			t.Errorf("Truthy(%#v) = true", v)
		}
	}

	for _, v := range []any{true, 1, -0.5, "0", "false", []any{}, map[string]any{}} {
		if !Truthy(v) {
			t.Errorf("Truthy(%#v) = false", v)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{true, "true"},
		{5, "5"},
		{5.0, "5"},
		{-2.5, "-2.5"},
		{1e21, "1e+21"},
		{0.0000001, "1e-07"},
		{123456789.0, "123456789"},
		{math.Inf(1), "Infinity"},
		{math.NaN(), "NaN"},
		{[]any{1, "b", nil, 2.5}, "1,b,,2.5"},
		{[]string{"x", "y"}, "x,y"},
		{[]byte("raw"), "raw"},
		{2 * time.Second, "2s"},
		{map[string]int{"a": 1}, "map[a:1]"},
	}

	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a    any
		op   Comparator
		b    any
		want bool
	}{
		{1, Less, 2, true},
		{2.0, LessEqual, 2, true},
		{3, Greater, 2.5, true},
		{3, GreaterEqual, 4, false},
		{"abc", Less, "abd", true},
		{"b", Greater, "abc", true},
		{"10", Less, 9, false},
		{"10", Greater, 9, true},
		{"x", Less, 1, false},
		{"x", GreaterEqual, 1, false},
		{nil, Less, 1, true},
		{true, Greater, 0, true},
		{5, StrictEqual, 5.0, true},
		{5, StrictEqual, "5", false},
		{"a", StrictEqual, "a", true},
		{nil, StrictEqual, nil, true},
		{nil, StrictEqual, "", false},
		{false, StrictEqual, false, true},
		{math.NaN(), StrictEqual, math.NaN(), false},
		{[]any{1}, StrictEqual, []any{1}, true},
		{[]any{1}, StrictEqual, []int{1}, false},
	}

	for _, tt := range tests {
		if got := Compare(tt.a, tt.op, tt.b); got != tt.want {
			t.Errorf("Compare(%#v %s %#v) = %v, want %v", tt.a, tt.op, tt.b, got, tt.want)
		}
	}
}

func TestFuncsDefaults(t *testing.T) {
	var fn Funcs

	v, err := fn.Get("anything")
	if v != nil || err != nil {
		t.Errorf("Get = %v, %v", v, err)
	}

	n, err := fn.Length("abcd")
	if n != 4 || err != nil {
		t.Errorf("Length = %d, %v", n, err)
	}

	fn.Size = func(any) (int, error) { return 42, nil }

	if n, _ := fn.Length(nil); n != 42 {
		t.Errorf("custom Length = %d", n)
	}
}
