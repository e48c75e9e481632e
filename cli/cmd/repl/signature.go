package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// signatures lists the parameter names of each keyword that takes arguments.
var signatures = map[string][]string{
	"IF":     {"condition", "then", "else"},
	"GET":    {"name"},
	"LENGTH": {"value"},
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // keyword before the enclosing '('
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall reports the innermost call whose parameter list
// contains the cursor, and which of its arguments the cursor is in.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Parentheses are ASCII, so scanning bytes backward cannot split a rune.
	depth := 0
	open := -1

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			} else {
				depth--
			}
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 && isIdentByte(input[start-1]) {
		start--
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	// Count commas at depth 0, skipping quoted strings.
	argIndex := 0
	depth = 0

	var quote byte

	for i := open + 1; i < cursor; i++ {
		c := input[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			argIndex++
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// renderSignatureHint renders "NAME(param, ...)" with the parameter at
// argIndex highlighted. It returns "" for names without a signature.
func renderSignatureHint(name string, argIndex int) string {
	params, ok := signatures[name]
	if !ok {
		return ""
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == argIndex {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
