package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/tmplc/log"
)

// Fmt prints a template in canonical form.
type Fmt struct {
	Input `embed:""`

	Check bool `help:"Exit with an error instead of printing when the template is not canonical." short:"c"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tmpl, src, err := f.compile(ctx, log.With(slog.String("command", "fmt")))
	if err != nil {
		return err
	}

	file := tmpl.AST()
	if file == nil {
		return ErrNoTemplate
	}

	canonical := file.String()

	if f.Check {
		if canonical != src {
			return ErrNotCanonical.With(
				slog.String("template", src),
				slog.String("canonical", canonical),
			)
		}

		return nil
	}

	_, err = fmt.Fprintln(stdoutFrom(ctx), canonical)

	return err
}
