package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"sentinel", ErrParse, "syntax error"},
		{"wrapped", ErrLex.Errorf("invalid character %q", '#'), "lexical error: invalid character '#'"},
		{
			"column",
			ErrParse.Errorf("expected value").WithColumn(7),
			"syntax error: expected value at column 7",
		},
		{"cause only", (&Error{}).Wrap(errors.New("boom")), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	cause := errors.New("cause")
	err := ErrEvaluate.Wrap(cause).With(slog.String("variable", "X")).WithColumn(3)

	if !errors.Is(err, ErrEvaluate) {
		t.Error("derived error does not match its sentinel")
	}

	if !errors.Is(err, cause) {
		t.Error("derived error does not match its cause")
	}

	if errors.Is(err, ErrParse) {
		t.Error("derived error matches an unrelated sentinel")
	}

	wrapped := fmt.Errorf("render: %w", err)
	if !errors.Is(wrapped, ErrEvaluate) || Column(wrapped) != 3 {
		t.Errorf("fmt-wrapped error lost identity or column: %v", wrapped)
	}

	if ErrEvaluate.Column() != 0 || ErrEvaluate.Unwrap() != nil {
		t.Error("sentinel was mutated")
	}
}

func TestColumnNested(t *testing.T) {
	inner := ErrNotSized.Errorf("int").WithColumn(9)
	outer := ErrEvaluate.Wrap(inner)

	if got := Column(outer); got != 9 {
		t.Errorf("Column = %d, want 9", got)
	}

	if Column(errors.New("plain")) != 0 || Column(nil) != 0 {
		t.Error("Column of foreign error should be 0")
	}
}

func TestErrorLogValue(t *testing.T) {
	err := ErrParse.Errorf("bad").With(slog.String("token", ")")).WithColumn(4)

	got := map[string]string{}
	for _, a := range err.LogValue().Group() {
		got[a.Key] = a.Value.String()
	}

	want := map[string]string{
		"error":  "syntax error",
		"cause":  "bad",
		"column": "4",
		"token":  ")",
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestSnippet(t *testing.T) {
	template := "`ab ${GET(5)}`"

	_, err := Compile(t.Context(), template)
	if err == nil {
		t.Fatal("expected error")
	}

	want := "  | `ab ${GET(5)}`\n" +
		"  | " + strings.Repeat(" ", 10) + "^\n"
	if got := Snippet(template, err); got != want {
		t.Errorf("Snippet:\n%s\nwant:\n%s", got, want)
	}

	if Snippet(template, errors.New("x")) != "" {
		t.Error("Snippet without column should be empty")
	}
}

func TestSnippetMultiline(t *testing.T) {
	template := "`line one\nline ${#}`"

	_, err := Compile(t.Context(), template)
	if err == nil {
		t.Fatal("expected error")
	}

	want := "  | line ${#}`\n" +
		"  | " + strings.Repeat(" ", 7) + "^\n"
	if got := Snippet(template, err); got != want {
		t.Errorf("Snippet:\n%q\nwant:\n%q", got, want)
	}
}
