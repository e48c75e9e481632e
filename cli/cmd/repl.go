package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/tmplc/cli/cmd/repl"
	"github.com/ardnew/tmplc/log"
	"github.com/ardnew/tmplc/pkg"
)

// Repl starts the interactive template playground.
type Repl struct {
	Variables `embed:""`

	Engine string `default:"interp" enum:"interp,expr" help:"Initial evaluator."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.With(slog.String("command", "repl"))

	store, err := r.store(ctx, logger)
	if err != nil {
		return err
	}

	return repl.Run(ctx, store, kongVar(ctx, CacheIdentifier, pkg.CacheDir()), r.Engine, logger)
}
