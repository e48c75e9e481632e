package lang

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/ardnew/tmplc/log"
)

// sampleVars mirrors the variables of the sample data set.
func sampleVars() Map {
	return Map{
		"NUMBER_5":    5,
		"STRING_ABC":  "ABC",
		"STRING_PATH": "./@param",
		"ARR":         []any{1, 2, 3},
		"ZERO":        0,
	}
}

type renderCase struct {
	name     string
	template string
	want     string
	vars     []string
}

var renderCases = []renderCase{
	{"empty", "``", "", nil},
	{"text", "`ABC 123`", "ABC 123", nil},
	{"text whitespace", "`  ABC `", "  ABC ", nil},
	{"number", "`${123}`", "123", nil},
	{"fraction", "`${1.50}`", "1.5", nil},
	{"single quoted", "`${'ABC'}`", "ABC", nil},
	{"double quoted", "`${\"ABC\"}`", "ABC", nil},
	{"boolean", "`${TRUE}${FALSE}`", "truefalse", nil},
	{"empty formula", "`a${}b`", "ab", nil},
	{"get single quote", "`${GET('STRING_ABC')}`", "ABC", []string{"STRING_ABC"}},
	{"get double quote", "`${GET(\"STRING_ABC\")}`", "ABC", []string{"STRING_ABC"}},
	{"get spaced", "`${  GET('STRING_PATH'   )}`", "./@param", []string{"STRING_PATH"}},
	{"get unspaced", "`${GET('STRING_PATH')}`", "./@param", []string{"STRING_PATH"}},
	{"get array", "`${GET('ARR')}`", "1,2,3", []string{"ARR"}},
	{"get missing", "`[${GET('NOPE')}]`", "[]", []string{"NOPE"}},
	{"length string", "`${LENGTH(GET(\"STRING_ABC\"))}`", "3", []string{"STRING_ABC"}},
	{"length array", "`${LENGTH(GET('ARR'))}`", "3", []string{"ARR"}},
	{"length missing", "`${LENGTH(GET('NOPE'))}`", "0", []string{"NOPE"}},
	{"mixed", "`Value: ${GET('NUMBER_5')}!`", "Value: 5!", []string{"NUMBER_5"}},
	{"adjacent", "`${1}${2}`", "12", nil},
	{
		"if greater", "`${IF(GET('NUMBER_5') > 3, 'big', 'small')}`",
		"big", []string{"NUMBER_5"},
	},
	{
		"if less equal", "`${IF(GET('NUMBER_5') <= 3, 'big', 'small')}`",
		"small", []string{"NUMBER_5"},
	},
	{
		"if strict number", "`${IF(GET('NUMBER_5') === 5, 'five', 'other')}`",
		"five", []string{"NUMBER_5"},
	},
	{
		"if strict kind mismatch", "`${IF(GET('NUMBER_5') === '5', 1, 2)}`",
		"2", []string{"NUMBER_5"},
	},
	{
		"if strict string", "`${IF(GET('STRING_ABC') === \"ABC\", 1, 2)}`",
		"1", []string{"STRING_ABC"},
	},
	{"if truthy", "`${IF(GET('STRING_ABC'), 'yes', 'no')}`", "yes", []string{"STRING_ABC"}},
	{"if falsy", "`${IF(GET('NOPE'), 'yes', 'no')}`", "no", []string{"NOPE"}},
	{"if zero", "`${IF(GET('ZERO'), 'x', 'y')}`", "y", []string{"ZERO"}},
	{"if nested false", "`${IF(IF(TRUE, FALSE, TRUE), 'x', 'y')}`", "y", nil},
	{"zero text", "`${GET('ZERO')}`", "0", []string{"ZERO"}},
	{
		"if nested",
		"`${IF(LENGTH(GET('ARR')) >= 3, IF(FALSE, 'a', 'b'), 'c')}`",
		"b", []string{"ARR"},
	},
	{"if numeric string", "`${IF('10' < 9, 'lt', 'ge')}`", "ge", nil},
	{"if strings", "`${IF('abc' < 'abd', 'lt', 'ge')}`", "lt", nil},
	{"if NaN", "`${IF('abc' < 5, 'lt', IF('abc' >= 5, 'ge', 'none'))}`", "none", nil},
	{
		"if result in text",
		"`${GET('STRING_ABC')} has ${IF(LENGTH(GET('STRING_ABC')) === 3, 'three', 'other')} letters`",
		"ABC has three letters", []string{"STRING_ABC", "STRING_ABC"},
	},
}

func TestCompile(t *testing.T) {
	for _, tt := range renderCases {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Compile(t.Context(), tt.template)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.template, err)
			}

			got, err := tmpl.Evaluate(sampleVars())
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}

			if got != tt.want {
				t.Errorf("Evaluate = %q, want %q", got, tt.want)
			}

			if names := tmpl.VariableNames(); !slices.Equal(names, tt.vars) {
				t.Errorf("VariableNames = %q, want %q", names, tt.vars)
			}
		})
	}
}

func TestCompileNotTemplate(t *testing.T) {
	for _, in := range []string{"", "ABC", "${GET('A')}", "`unterminated"} {
		tmpl, err := Compile(t.Context(), in)
		if err != nil {
			t.Fatalf("Compile(%q): %v", in, err)
		}

		got, err := tmpl.Evaluate(sampleVars())
		if err != nil || got != "" {
			t.Errorf("Evaluate = %q, %v; want empty", got, err)
		}

		if len(tmpl.VariableNames()) != 0 || tmpl.AST() != nil {
			t.Errorf("no-op template has names %v or AST", tmpl.VariableNames())
		}
	}
}

func TestCompileMoreThanOneValue(t *testing.T) {
	_, err := Compile(t.Context(), "`${\"ABC\" 123}`")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
}

func TestCompileLexBeforeParse(t *testing.T) {
	// Both a lexical and a structural error; the lexical one wins.
	_, err := Compile(t.Context(), "`${GET(# `")
	if !errors.Is(err, ErrLex) || errors.Is(err, ErrParse) {
		t.Fatalf("error = %v, want only ErrLex", err)
	}
}

func TestCompileIdempotent(t *testing.T) {
	const src = "`${GET('STRING_ABC')}-${LENGTH(GET('ARR'))}`"

	a, err := Compile(t.Context(), src)
	if err != nil {
		t.Fatal(err)
	}

	b, err := Compile(t.Context(), src)
	if err != nil {
		t.Fatal(err)
	}

	ra, _ := a.Evaluate(sampleVars())
	rb, _ := b.Evaluate(sampleVars())

	if ra != rb || ra != "ABC-3" {
		t.Errorf("renders differ: %q vs %q", ra, rb)
	}

	if a.Expr() != b.Expr() {
		t.Errorf("expr differs: %q vs %q", a.Expr(), b.Expr())
	}
}

func TestCompileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := Compile(ctx, "`${1}`"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestVariableNamesOrder(t *testing.T) {
	tmpl, err := Compile(t.Context(),
		"`${GET('B')}${GET('A')}${IF(GET('B'), LENGTH(GET('C')), 1)}`")
	if err != nil {
		t.Fatal(err)
	}

	if got := tmpl.VariableNames(); !slices.Equal(got, []string{"B", "A", "B", "C"}) {
		t.Errorf("VariableNames = %v", got)
	}

	if got := tmpl.UniqueNames(); !slices.Equal(got, []string{"B", "A", "C"}) {
		t.Errorf("UniqueNames = %v", got)
	}

	names := tmpl.VariableNames()
	names[0] = "Z"

	if tmpl.VariableNames()[0] != "B" {
		t.Error("VariableNames exposes internal slice")
	}
}

func TestEvaluateOnlyChosenBranch(t *testing.T) {
	fn := Funcs{Lookup: func(name string) (any, error) {
		if name == "BAD" {
			return nil, errors.New("must not be read")
		}

		return name, nil
	}}

	tmpl, err := Compile(t.Context(), "`${IF(TRUE, GET('OK'), GET('BAD'))}`")
	if err != nil {
		t.Fatal(err)
	}

	got, err := tmpl.Evaluate(fn)
	if err != nil || got != "OK" {
		t.Errorf("Evaluate = %q, %v", got, err)
	}

	if !slices.Equal(tmpl.VariableNames(), []string{"OK", "BAD"}) {
		t.Errorf("VariableNames = %v", tmpl.VariableNames())
	}
}

func TestEvaluateErrors(t *testing.T) {
	errLookup := errors.New("lookup failed")

	t.Run("get", func(t *testing.T) {
		tmpl, err := Compile(t.Context(), "`ab ${GET('X')}`")
		if err != nil {
			t.Fatal(err)
		}

		_, err = tmpl.Evaluate(Funcs{Lookup: func(string) (any, error) {
			return nil, errLookup
		}})

		if !errors.Is(err, ErrEvaluate) || !errors.Is(err, errLookup) {
			t.Errorf("error = %v", err)
		}

		if Column(err) != 6 {
			t.Errorf("Column = %d, want 6", Column(err))
		}
	})

	t.Run("not sized", func(t *testing.T) {
		tmpl, err := Compile(t.Context(), "`${LENGTH(GET('NUMBER_5'))}`")
		if err != nil {
			t.Fatal(err)
		}

		_, err = tmpl.Evaluate(sampleVars())
		if !errors.Is(err, ErrEvaluate) || !errors.Is(err, ErrNotSized) {
			t.Errorf("error = %v", err)
		}
	})
}

type bogusSegment struct{ Span }

func (bogusSegment) Kind() NodeKind { return NodeKind(-1) }
func (bogusSegment) segment()       {}

func TestTranspileUnknownNode(t *testing.T) {
	file := &SourceFile{
		Template: &TemplateString{Segments: []Segment{bogusSegment{}}},
		EOF:      &EndOfFile{},
	}

	if _, err := Transpile(file); !errors.Is(err, ErrInternal) {
		t.Errorf("Transpile error = %v, want ErrInternal", err)
	}

	if _, err := render(file, Map{}); !errors.Is(err, ErrInternal) {
		t.Errorf("render error = %v, want ErrInternal", err)
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	tmpl, err := Compile(t.Context(), "`${IF(GET('NUMBER_5') > 1, GET('STRING_ABC'), 'x')}`")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup

	for range 32 {
		wg.Go(func() {
			if got, err := tmpl.Evaluate(sampleVars()); err != nil || got != "ABC" {
				t.Errorf("Evaluate = %q, %v", got, err)
			}
		})
	}

	wg.Wait()
}

func TestCompileTrace(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelTrace), log.WithFormat(log.FormatJSON))

	if _, err := Compile(t.Context(), "`a${GET('A')}`", WithLogger(logger)); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{`"tokenize complete"`, `"parse complete"`, `"node_count":`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("trace output lacks %s:\n%s", want, buf.String())
		}
	}

	buf.Reset()

	quiet := log.Make(&buf, log.WithLevel(log.LevelInfo))
	if _, err := Compile(t.Context(), "`${1}`", WithLogger(quiet)); err != nil || buf.Len() != 0 {
		t.Errorf("info logger wrote %q (err %v)", buf.String(), err)
	}
}
