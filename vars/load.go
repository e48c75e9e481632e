package vars

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
)

// Load decodes a YAML (or JSON) mapping of variable names to values from r.
func Load(ctx context.Context, r io.Reader) (map[string]any, error) {
	values, err := decode(ctx, r)
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	return values, nil
}

func decode(ctx context.Context, r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any)

	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}

	if err := yaml.UnmarshalContext(ctx, data, &values); err != nil {
		return nil, err
	}

	return values, nil
}

// LoadFile decodes the variable file at path.
func LoadFile(ctx context.Context, path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrLoad.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	values, err := decode(ctx, f)
	if err != nil {
		return nil, ErrLoad.Wrap(fmt.Errorf("%s: %w", path, err)).With(slog.String("path", path))
	}

	return values, nil
}

// LoadInto merges the variable files at paths into s, in order.
func (s *Store) LoadInto(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		resolved, err := Resolve(path)
		if err != nil {
			return err
		}

		values, err := LoadFile(ctx, resolved)
		if err != nil {
			return err
		}

		s.logger.Debug("loaded variables",
			slog.String("path", resolved),
			slog.Int("count", len(values)))

		s.Merge(values)
	}

	return nil
}
