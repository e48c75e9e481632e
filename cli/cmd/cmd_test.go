package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/tmplc/lang"
	"github.com/ardnew/tmplc/log"
	"github.com/ardnew/tmplc/vars"
)

// stdio returns a context whose commands read stdin and write to the
// returned buffers.
func stdio(t *testing.T, stdin string) (context.Context, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	ctx := WithStdio(t.Context(), strings.NewReader(stdin), &stdout, &stderr)

	return ctx, &stdout, &stderr
}

func TestInputRead(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tmpl.txt")

	if err := os.WriteFile(file, []byte("`from ${'file'}`\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      Input
		stdin   string
		want    string
		wantErr bool
	}{
		{name: "argument", in: Input{Template: "`arg`"}, want: "`arg`"},
		{name: "file", in: Input{File: file}, want: "`from ${'file'}`"},
		{name: "stdin", stdin: "`stdin`\n", want: "`stdin`"},
		{name: "dash", in: Input{File: "-"}, stdin: "`dash`", want: "`dash`"},
		{name: "both", in: Input{Template: "`a`", File: file}, wantErr: true},
		{name: "missing file", in: Input{File: filepath.Join(dir, "nope")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, _ := stdio(t, tt.stdin)

			got, err := tt.in.read(ctx)
			if tt.wantErr {
				if !errors.Is(err, ErrInput) {
					t.Fatalf("read error = %v, want ErrInput", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("read: %v", err)
			}

			if got != tt.want {
				t.Errorf("read = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInputCompileSnippet(t *testing.T) {
	ctx, _, stderr := stdio(t, "")

	in := Input{Template: "`${GET('A'}`"}

	_, _, err := in.compile(ctx, log.Logger{})
	if !errors.Is(err, ErrCompile) || !errors.Is(err, lang.ErrParse) {
		t.Fatalf("compile error = %v, want ErrCompile wrapping ErrParse", err)
	}

	got := stderr.String()
	if !strings.HasPrefix(got, "  | `${GET('A'}`\n") || !strings.HasSuffix(got, "^\n") {
		t.Errorf("stderr = %q, want a caret snippet", got)
	}
}

func TestUniqueFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	link := filepath.Join(dir, "link.yaml")

	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("X: 1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	if err := os.Symlink(a, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	t.Chdir(dir)

	missing := filepath.Join(dir, "missing.yaml")

	got := uniqueFiles([]string{a, "a.yaml", link, b, missing, a})
	want := []string{a, b, missing}

	if !slices.Equal(got, want) {
		t.Errorf("uniqueFiles = %v, want %v", got, want)
	}
}

func TestVariablesStore(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "vars.yaml")

	if err := os.WriteFile(file, []byte("STRING_ABC: XYZ\nEXTRA: [a, b]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	v := Variables{
		Vars:    []string{file, file},
		Set:     []string{"EXTRA='c'", "N=[1, 2]"},
		Sample:  true,
		Missing: vars.PolicyPlaceholder,
	}

	s, err := v.store(t.Context(), log.Logger{})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"NUMBER_5":   "5",
		"STRING_ABC": "XYZ",
		"EXTRA":      "c",
		"N":          "1,2",
		"MISSING":    vars.Placeholder,
	}

	for name, text := range want {
		got, err := s.Get(name)
		if err != nil {
			t.Fatalf("Get(%s): %v", name, err)
		}

		if lang.Text(got) != text {
			t.Errorf("%s = %q, want %q", name, lang.Text(got), text)
		}
	}

	bad := Variables{Set: []string{"oops"}}
	if _, err := bad.store(t.Context(), log.Logger{}); !errors.Is(err, vars.ErrAssignment) {
		t.Errorf("bad --set error = %v, want ErrAssignment", err)
	}

	missing := Variables{Vars: []string{filepath.Join(dir, "none.yaml")}}
	if _, err := missing.store(t.Context(), log.Logger{}); !errors.Is(err, vars.ErrLoad) {
		t.Errorf("missing --vars error = %v, want ErrLoad", err)
	}
}
