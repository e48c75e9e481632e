package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type prettyStyles struct {
	key, str, num, dur, date, null lipgloss.Style
	yes, no                        lipgloss.Style
	levels                         map[Level]lipgloss.Style
}

// makePrettyStyles binds styles to a renderer for w, so that colors are
// emitted only when w is a terminal supporting them.
func makePrettyStyles(w io.Writer) prettyStyles {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return prettyStyles{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		dur:  fg("5"),
		date: fg("4"),
		null: fg("8").Italic(true),
		yes:  fg("2"),
		no:   fg("1"),
		levels: map[Level]lipgloss.Style{
			LevelTrace: fg("8"),
			LevelDebug: fg("4"),
			LevelInfo:  fg("2"),
			LevelWarn:  fg("3").Bold(true),
			LevelError: fg("1").Bold(true),
		},
	}
}

func (s prettyStyles) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return s.levels[LevelError]
	case l >= slog.LevelWarn:
		return s.levels[LevelWarn]
	case l >= slog.LevelInfo:
		return s.levels[LevelInfo]
	case l >= slog.LevelDebug:
		return s.levels[LevelDebug]
	default:
		return s.levels[LevelTrace]
	}
}

// prettyHandler renders records as colorized "key=value" lines or as indented
// JSON-like objects, depending on format.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	styles prettyStyles
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	prefix string
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	format Format,
) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		styles: makePrettyStyles(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) clone() *prettyHandler {
	c := *h
	c.attrs = c.attrs[:len(c.attrs):len(c.attrs)]

	return &c
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := h.clone()
	for _, a := range attrs {
		a.Key = c.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}

	return c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := h.clone()
	c.prefix += name + "."

	return c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	builtin := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if !a.Equal(slog.Attr{}) {
			fields = append(fields, a)
		}
	}

	if !r.Time.IsZero() {
		builtin(slog.Time(slog.TimeKey, r.Time))
	}

	builtin(slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			builtin(slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	builtin(slog.String(slog.MessageKey, r.Message))

	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.prefix + a.Key
		fields = append(fields, a)

		return true
	})

	buf := new(bytes.Buffer)

	switch h.format {
	case FormatJSON:
		h.writeJSON(buf, r.Level, fields)
	default:
		h.writeText(buf, r.Level, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, level slog.Level, fields []slog.Attr) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.styles.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.renderValue(level, a))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, level slog.Level, fields []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.styles.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")
		buf.WriteString(h.renderValue(level, a))
	}

	buf.WriteString("\n}\n")
}

func (h *prettyHandler) renderValue(level slog.Level, a slog.Attr) string {
	v := a.Value.Resolve()

	quote := func(s string) string {
		if h.format == FormatJSON {
			return strconv.Quote(s)
		}

		return s
	}

	if a.Key == slog.LevelKey {
		return h.styles.level(level).Render(quote(v.String()))
	}

	switch v.Kind() {
	case slog.KindString:
		return h.styles.str.Render(quote(v.String()))

	case slog.KindInt64:
		return h.styles.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.styles.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.styles.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.styles.yes.Render("true")
		}

		return h.styles.no.Render("false")

	case slog.KindDuration:
		return h.styles.dur.Render(quote(v.Duration().String()))

	case slog.KindTime:
		return h.styles.date.Render(quote(v.Time().Format(time.RFC3339)))

	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))
		for _, g := range v.Group() {
			parts = append(parts, g.Key+"="+g.Value.String())
		}

		return h.styles.str.Render(quote(strings.Join(parts, " ")))

	default:
		if v.Any() == nil {
			return h.styles.null.Render("null")
		}

		return h.styles.str.Render(quote(fmt.Sprint(v.Any())))
	}
}
