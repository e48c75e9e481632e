package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every error returned by this package matches at least one of these with
// [errors.Is]. An [ErrEvaluate] error may also match the sentinel of its
// cause, such as [ErrNotSized].
var (
	ErrLex         = NewError("lexical error")
	ErrParse       = NewError("syntax error")
	ErrInternal    = NewError("internal error")
	ErrEvaluate    = NewError("evaluation failed")
	ErrNotSized    = NewError("value has no length")
	ErrExprCompile = NewError("expression compilation failed")
)

// Error represents an error with an optional source column and structured
// logging attributes. It implements both error and slog.LogValuer.
type Error struct {
	msg    string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	column int         // 1-based column in the template body, 0 if unknown
	base   *Error      // Sentinel this error was derived from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
//
// The message has the form "<msg>: <err> at column <N>", omitting each part
// that is not set.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	s := strings.Join(part, ": ")
	if e.column > 0 {
		s += " at column " + strconv.Itoa(e.column)
	}

	return s
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t == e.root()
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// Column returns the 1-based column attached to e, or 0.
func (e *Error) Column() int { return e.column }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.column > 0 {
		attrs = append(attrs, slog.Int("column", e.column))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err
	c.base = e.root()

	return &c
}

// Errorf wraps a formatted error. It is shorthand for
// e.Wrap(fmt.Errorf(format, args...)).
func (e *Error) Errorf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	c.attrs = append(append(c.attrs, e.attrs...), attrs...)
	c.base = e.root()

	return &c
}

// WithColumn returns a copy of e positioned at the given 1-based column.
func (e *Error) WithColumn(column int) *Error {
	c := *e
	c.column = column
	c.base = e.root()

	return &c
}

// Column returns the first column attached to an [*Error] in err's chain,
// or 0 if none is.
func Column(err error) int {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return 0
		}

		if e.column > 0 {
			return e.column
		}

		err = e.err
	}

	return 0
}

// Snippet renders the template line containing the error column with a
// caret beneath it. It returns "" if err carries no column.
//
// Columns count bytes of the template body, which starts after the opening
// backtick, so column N is template[N].
func Snippet(template string, err error) string {
	col := Column(err)
	if col <= 0 || col > len(template) {
		return ""
	}

	start := strings.LastIndexByte(template[:col], '\n') + 1

	end := strings.IndexByte(template[col:], '\n')
	if end < 0 {
		end = len(template)
	} else {
		end += col
	}

	var sb strings.Builder

	sb.WriteString("  | ")
	sb.WriteString(template[start:end])
	sb.WriteString("\n  | ")
	sb.WriteString(strings.Repeat(" ", col-start))
	sb.WriteString("^\n")

	return sb.String()
}
