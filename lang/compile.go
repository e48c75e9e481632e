package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/tmplc/log"
)

// Option configures [Compile].
type Option func(*options)

type options struct {
	logger log.Logger
}

// WithLogger sets the logger used to trace each compilation stage.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Compile tokenizes, parses and transpiles template.
//
// Input not enclosed in backticks compiles to a template that renders the
// empty string and references no variables. Compile checks ctx only between
// stages; each stage runs to completion.
func Compile(ctx context.Context, template string, opts ...Option) (*Template, error) {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger.With(slog.Int("template_len", len(template)))

	tokens, err := Tokenize(template)
	if err != nil {
		logger.DebugContext(ctx, "tokenize failed", slog.Any("error", err))

		return nil, err
	}

	logger.TraceContext(ctx, "tokenize complete", slog.Int("token_count", len(tokens)))

	if len(tokens) == 0 {
		return &Template{expr: `""`}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := Parse(template, tokens)
	if err != nil {
		logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	if logger.Enabled(ctx, log.LevelTrace) {
		nodes := 0
		Inspect(file, func(Node) bool { nodes++; return true })

		logger.TraceContext(ctx, "parse complete",
			slog.Int("segment_count", segmentCount(file)),
			slog.Int("node_count", nodes))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := Transpile(file)
	if err != nil {
		logger.DebugContext(ctx, "transpile failed", slog.Any("error", err))

		return nil, err
	}

	logger.TraceContext(ctx, "transpile complete",
		slog.Any("variables", t.names),
		slog.String("expr", t.expr))

	return t, nil
}

func segmentCount(file *SourceFile) int {
	if file.Template == nil {
		return 0
	}

	return len(file.Template.Segments)
}
