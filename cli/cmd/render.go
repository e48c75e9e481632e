package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/tmplc/log"
)

// Render compiles a template and prints its rendered text.
type Render struct {
	Input     `embed:""`
	Variables `embed:""`

	Engine    string `default:"interp" enum:"interp,expr" help:"Evaluate with the tree interpreter or the expr-lang program."`
	NoNewline bool   `                                    help:"Do not print a trailing newline."                              short:"n"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.With(slog.String("command", "render"))

	tmpl, src, err := r.compile(ctx, logger)
	if err != nil {
		return err
	}

	store, err := r.store(ctx, logger)
	if err != nil {
		return err
	}

	out, err := evaluate(tmpl, r.Engine, store)
	if err != nil {
		return ErrRender.Wrap(err).With(
			slog.String("template", src),
			slog.String("engine", r.Engine),
		)
	}

	logger.DebugContext(ctx, "rendered",
		slog.String("engine", r.Engine),
		slog.Any("variables", tmpl.UniqueNames()),
		slog.Int("length", len(out)))

	w := stdoutFrom(ctx)

	if r.NoNewline {
		_, err = fmt.Fprint(w, out)
	} else {
		_, err = fmt.Fprintln(w, out)
	}

	return err
}
