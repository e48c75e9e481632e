package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tmplc/lang"
	"github.com/ardnew/tmplc/log"
	"github.com/ardnew/tmplc/vars"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable name, or fallback when ctx carries no
// kong.Context or the variable is undefined.
func kongVar(ctx context.Context, name, fallback string) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		if v, ok := ktx.Model.Vars()[name]; ok {
			return v
		}
	}

	return fallback
}

type (
	stdinKey  struct{}
	stdoutKey struct{}
	stderrKey struct{}
)

// WithStdio returns a new context.Context whose commands read templates from
// stdin and write to stdout and stderr. Nil streams keep the process streams.
func WithStdio(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
) context.Context {
	if stdin != nil {
		ctx = context.WithValue(ctx, stdinKey{}, stdin)
	}

	if stdout != nil {
		ctx = context.WithValue(ctx, stdoutKey{}, stdout)
	}

	if stderr != nil {
		ctx = context.WithValue(ctx, stderrKey{}, stderr)
	}

	return ctx
}

func stdinFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok {
		return r
	}

	return os.Stdin
}

func stdoutFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey{}).(io.Writer); ok {
		return w
	}

	return os.Stdout
}

func stderrFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stderrKey{}).(io.Writer); ok {
		return w
	}

	return os.Stderr
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Input selects where a command reads its template from. The template
// argument takes precedence; otherwise it is read from --file, or from stdin
// when neither is given.
type Input struct {
	Template string `arg:"" help:"Template text, including the enclosing backticks." name:"template" optional:""`
	File     string `       help:"Read the template from a file or '-' for stdin."                     short:"f" type:"path"`
}

// read returns the template text with trailing line endings removed.
func (in *Input) read(ctx context.Context) (string, error) {
	if in.Template != "" {
		if in.File != "" {
			return "", ErrInput.Wrap(errors.New("template argument and --file are mutually exclusive"))
		}

		return in.Template, nil
	}

	r := stdinFrom(ctx)

	if in.File != "" && in.File != stdinSource {
		f, err := os.Open(in.File)
		if err != nil {
			return "", ErrInput.Wrap(err).With(slog.String("file", in.File))
		}
		defer f.Close()

		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", ErrInput.Wrap(err)
	}

	return strings.TrimRight(string(data), "\r\n"), nil
}

// compile reads and compiles the template. Syntax errors are echoed to
// stderr with a caret under the offending column.
func (in *Input) compile(
	ctx context.Context,
	logger log.Logger,
) (*lang.Template, string, error) {
	src, err := in.read(ctx)
	if err != nil {
		return nil, "", err
	}

	tmpl, err := lang.Compile(ctx, src, lang.WithLogger(logger))
	if err != nil {
		if snippet := lang.Snippet(src, err); snippet != "" {
			fmt.Fprint(stderrFrom(ctx), snippet)
		}

		return nil, src, ErrCompile.Wrap(err).
			With(slog.Int("column", lang.Column(err)))
	}

	return tmpl, src, nil
}

// Engine names accepted by --engine.
const (
	engineInterp = "interp"
	engineExpr   = "expr"
)

// evaluate renders tmpl with the named engine.
func evaluate(tmpl *lang.Template, engine string, fn lang.SubFunctions) (string, error) {
	if engine == engineExpr {
		return tmpl.EvaluateExpr(fn)
	}

	return tmpl.Evaluate(fn)
}

// Variables configures the variable store used to render templates.
type Variables struct {
	Vars    []string    `help:"Load variables from a YAML or JSON file, searched along TMPLC_VARS_PATH." placeholder:"FILE"      sep:"none"`
	Set     []string    `help:"Set a variable; EXPR is an expr-lang literal or a raw string."               placeholder:"NAME=EXPR" sep:"none"`
	Sample  bool        `help:"Preload the sample variables NUMBER_5, STRING_ABC, STRING_PATH and ARR."`
	Missing vars.Policy `help:"Result of GET for undefined names (${missingPolicies})." default:"error"`
}

// store builds the variable store: sample values first, then each --vars
// file in order, then each --set assignment.
func (v *Variables) store(ctx context.Context, logger log.Logger) (*vars.Store, error) {
	opts := []vars.Option{
		vars.WithPolicy(v.Missing),
		vars.WithLogger(logger),
	}

	s := vars.New(opts...)
	if v.Sample {
		s = vars.Sample(opts...)
	}

	paths := make([]string, 0, len(v.Vars))

	for _, name := range v.Vars {
		path, err := vars.Resolve(name)
		if err != nil {
			return nil, err
		}

		paths = append(paths, path)
	}

	if err := s.LoadInto(ctx, uniqueFiles(paths)...); err != nil {
		return nil, err
	}

	for _, assignment := range v.Set {
		if err := s.Assign(assignment); err != nil {
			return nil, err
		}
	}

	logger.DebugContext(ctx, "variables ready",
		slog.Int("count", s.Len()),
		slog.String("missing", s.Policy().String()))

	return s, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// uniqueFiles drops every path that names a file already listed, keeping the
// first occurrence. Paths whose identity cannot be determined are kept.
func uniqueFiles(paths []string) []string {
	seen := make(map[fileKey]struct{}, len(paths))
	out := make([]string, 0, len(paths))

	for _, path := range paths {
		key, ok := keyOf(path)
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		out = append(out, path)
	}

	return out
}

// keyOf resolves symlinks in path and returns its device/inode pair.
func keyOf(path string) (fileKey, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
