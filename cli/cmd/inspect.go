package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/tmplc/lang"
	"github.com/ardnew/tmplc/log"
)

// Output formats accepted by the inspection commands.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// Vars lists the variable names a template reads with GET.
type Vars struct {
	Input `embed:""`

	Unique bool `help:"Print each name once, in order of first use." short:"u"`
}

// Run executes the vars command.
func (v *Vars) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tmpl, _, err := v.compile(ctx, log.With(slog.String("command", "vars")))
	if err != nil {
		return err
	}

	names := tmpl.VariableNames()
	if v.Unique {
		names = tmpl.UniqueNames()
	}

	if len(names) == 0 {
		return nil
	}

	_, err = fmt.Fprintln(stdoutFrom(ctx), strings.Join(names, "\n"))

	return err
}

// Tokens prints the lexemes of a template.
type Tokens struct {
	Input `embed:""`

	Format string `default:"text" enum:"text,json,yaml" help:"Output format."`
	Indent int    `default:"2"                          help:"Indent width for JSON and YAML output." short:"i"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := t.read(ctx)
	if err != nil {
		return err
	}

	tokens, err := lang.Tokenize(src)
	if err != nil {
		if snippet := lang.Snippet(src, err); snippet != "" {
			fmt.Fprint(stderrFrom(ctx), snippet)
		}

		return ErrCompile.Wrap(err)
	}

	log.DebugContext(ctx, "tokenized",
		slog.String("command", "tokens"),
		slog.Int("count", len(tokens)))

	w := stdoutFrom(ctx)

	switch t.Format {
	case formatJSON:
		err = lang.FormatTokensJSON(ctx, w, tokens, t.Indent)
	case formatYAML:
		err = lang.FormatTokensYAML(ctx, w, tokens, t.Indent)
	default:
		err = lang.FormatTokens(w, tokens)
	}

	if err != nil {
		return ErrMarshal.Wrap(err).With(slog.String("format", t.Format))
	}

	return nil
}

// AST prints the syntax tree of a template.
type AST struct {
	Input `embed:""`

	Format string `default:"yaml" enum:"json,yaml" help:"Output format."`
	Indent int    `default:"2"                     help:"Indent width." short:"i"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tmpl, _, err := a.compile(ctx, log.With(slog.String("command", "ast")))
	if err != nil {
		return err
	}

	file := tmpl.AST()
	if file == nil {
		return ErrNoTemplate
	}

	w := stdoutFrom(ctx)

	if a.Format == formatJSON {
		err = file.FormatJSON(ctx, w, a.Indent)
	} else {
		err = file.FormatYAML(ctx, w, a.Indent)
	}

	if err != nil {
		return ErrMarshal.Wrap(err).With(slog.String("format", a.Format))
	}

	return nil
}

// Emit prints the expr-lang program a template compiles to.
type Emit struct {
	Input `embed:""`

	Verify bool `help:"Also compile the program with expr-lang to check it."`
}

// Run executes the emit command.
func (e *Emit) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tmpl, _, err := e.compile(ctx, log.With(slog.String("command", "emit")))
	if err != nil {
		return err
	}

	if e.Verify {
		if _, err := tmpl.CompileExpr(lang.Map{}); err != nil {
			return ErrCompile.Wrap(err)
		}
	}

	_, err = fmt.Fprintln(stdoutFrom(ctx), tmpl.Expr())

	return err
}
