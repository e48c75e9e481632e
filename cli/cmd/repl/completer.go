package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tmplc/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "vars", "set", "unset", "tokens", "ast", "emit", "engine",
	"edit", "clear", "quit",
}

// engines are the arguments accepted by the engine command.
var engines = []string{engineInterp, engineExpr}

// isWordBoundary returns true if the rune delimits a completion word. This
// includes whitespace, template delimiters, quotes and formula punctuation.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'`', '$', '{', '}',
		'(', ')', ',',
		'<', '>', '=',
		'\'', '"':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Walk backward from cursor to find word start.
	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	// Walk forward from cursor to find word end.
	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// position classifies a byte offset of a template for completion.
type position int

const (
	posText     position = iota // literal text or an unrelated string
	posFormula                  // formula code between "${" and "}"
	posVariable                 // string literal that is a GET argument
)

// classify reports what kind of template content precedes pos.
func classify(input string, pos int) position {
	var (
		inFormula  bool
		quote      byte
		quoteStart int
	)

	for i := 0; i < pos && i < len(input); i++ {
		c := input[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}

		case !inFormula:
			if c == '$' && i+1 < pos && input[i+1] == '{' {
				inFormula = true
				i++
			}

		case c == '\'' || c == '"':
			quote, quoteStart = c, i

		case c == '}':
			inFormula = false
		}
	}

	switch {
	case !inFormula:
		return posText
	case quote == 0:
		return posFormula
	case isGetArgument(input[:quoteStart]):
		return posVariable
	default:
		return posText
	}
}

// isGetArgument reports whether prefix ends with "GET(" and optional spaces.
func isGetArgument(prefix string) bool {
	prefix = strings.TrimRightFunc(prefix, unicode.IsSpace)

	prefix, ok := strings.CutSuffix(prefix, "(")
	if !ok {
		return false
	}

	return strings.HasSuffix(strings.TrimRightFunc(prefix, unicode.IsSpace), "GET")
}

// candidatesAt returns the completion candidates for a word starting at
// wordStart. browse reports whether all candidates should be offered while
// the word is still empty.
func candidatesAt(
	mode inputMode,
	input string,
	wordStart int,
	names []string,
) (candidates []string, browse bool) {
	if mode == modeCtrl {
		fields := strings.Fields(input[:wordStart])

		switch {
		case len(fields) == 0:
			return ctrlCommands, false
		case len(fields) == 1 && fields[0] == "engine":
			return engines, true
		case len(fields) == 1 && (fields[0] == "set" || fields[0] == "unset"):
			return names, true
		}
	}

	switch classify(input, wordStart) {
	case posFormula:
		return slices.Collect(lang.Keywords()), false
	case posVariable:
		return names, true
	default:
		return nil, false
	}
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches (ranked best-first), the candidate list,
// and the word boundaries.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	candidates, browse := candidatesAt(m.mode, input, wordStart, m.store.Names())
	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if !browse {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1
		if i > 0 && used+entryWidth+ellipsisWidth > width && !last {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Keywords that take arguments get a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle, highlightStyle := suggestionStyle, matchStyle
	if selected {
		baseStyle, highlightStyle = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if _, ok := signatures[match.Str]; ok {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}
