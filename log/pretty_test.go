package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// A bytes.Buffer is not a terminal, so lipgloss renders without color and
// the output can be compared verbatim.

func TestPrettyText(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf,
		WithPretty(true),
		WithFormat(FormatText),
		WithTimeLayout("none"),
	).With(slog.String("cmd", "render"))

	l.Warn("missing variable",
		slog.String("name", "FOO"),
		slog.Int("column", 7),
		slog.Bool("strict", false),
		slog.Duration("elapsed", 1500*time.Millisecond),
	)

	want := "level=WARN msg=missing variable cmd=render name=FOO column=7 " +
		"strict=false elapsed=1.5s\n"
	if got := buf.String(); got != want {
		t.Errorf("output:\n got %q\nwant %q", got, want)
	}
}

func TestPrettyJSON(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf,
		WithPretty(true),
		WithFormat(FormatJSON),
		WithTimeLayout("none"),
	)

	l.WithGroup("vars").Error("load failed",
		slog.Any("err", errors.New("boom")),
		slog.Any("value", nil),
	)

	want := strings.Join([]string{
		"{",
		`  "level": "ERROR",`,
		`  "msg": "load failed",`,
		`  "vars.err": "boom",`,
		`  "vars.value": null`,
		"}",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("output:\n got %q\nwant %q", got, want)
	}
}

func TestPrettyEnabled(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(true), WithLevel(LevelError))
	l.Info("hidden")

	if buf.Len() != 0 {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
