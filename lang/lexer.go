package lang

import "unicode/utf8"

// backtickOffset translates offsets in the template body to offsets in the
// original template, which begins with a backtick.
const backtickOffset = 1

// Tokenize splits a backtick-delimited template into tokens terminated by a
// [TokenEOF] token.
//
// A template that is not enclosed in backticks yields no tokens and no error;
// callers treat that as nothing to compile.
//
// Outside a formula, all text up to "${" or the end of input forms a single
// [TokenString] run, which may be empty. Inside a formula, any character the
// formula grammar does not recognize is an [ErrLex] error.
func Tokenize(template string) ([]Token, error) {
	if len(template) < 2 || template[0] != '`' || template[len(template)-1] != '`' {
		return nil, nil
	}

	s := scanner{src: template[1 : len(template)-1]}

	var tokens []Token

	for {
		kind, err := s.scan()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, Token{
			Lexeme:     s.src[s.start:s.pos],
			Kind:       kind,
			ColumnFrom: s.start + backtickOffset,
			ColumnTo:   s.pos + backtickOffset,
		})

		if kind == TokenEOF {
			return tokens, nil
		}
	}
}

// scanner holds the state of a single Tokenize call.
type scanner struct {
	src     string
	start   int
	pos     int
	formula bool
}

func (s *scanner) peek(offset int) byte {
	if i := s.pos + offset; i < len(s.src) {
		return s.src[i]
	}

	return 0
}

func (s *scanner) errorf(format string, args ...any) error {
	return ErrLex.Errorf(format, args...).WithColumn(s.pos + backtickOffset)
}

func (s *scanner) scan() (TokenKind, error) {
	s.start = s.pos

	if s.pos >= len(s.src) {
		return TokenEOF, nil
	}

	if !s.formula {
		return s.scanText(), nil
	}

	c := s.src[s.pos]

	switch {
	case c == ' ':
		for s.peek(0) == ' ' {
			s.pos++
		}

		return TokenWhitespace, nil

	case c == '"' || c == '\'':
		return s.scanString(c), nil

	case c == '$' && s.peek(1) == '{':
		s.pos += 2

		return TokenDollarBrace, nil

	case c == '}':
		s.pos++
		s.formula = false

		return TokenCloseBrace, nil

	case c == '(':
		s.pos++

		return TokenOpenParen, nil

	case c == ')':
		s.pos++

		return TokenCloseParen, nil

	case c == ',':
		s.pos++

		return TokenComma, nil

	case c == '<' || c == '>':
		kind := TokenLess
		if c == '>' {
			kind = TokenGreater
		}

		s.pos++

		if s.peek(0) == '=' {
			s.pos++
			kind++ // TokenLessEqual, TokenGreaterEqual
		}

		return kind, nil

	case c == '=':
		n := 0
		for s.peek(n) == '=' {
			n++
		}

		if n != 3 {
			return TokenEOF, s.errorf("invalid equality operator %q, expected \"===\"",
				s.src[s.pos:s.pos+n])
		}

		s.pos += n

		return TokenStrictEqual, nil

	case c >= '1' && c <= '9':
		return s.scanNumber(), nil

	case isLetter(c):
		for isLetter(s.peek(0)) {
			s.pos++
		}

		return lookupIdent(s.src[s.start:s.pos]), nil

	default:
		if r, _ := utf8.DecodeRuneInString(s.src[s.pos:]); r != utf8.RuneError {
			return TokenEOF, s.errorf("invalid character %q", r)
		}

		return TokenEOF, s.errorf("invalid byte %q", s.src[s.pos:s.pos+1])
	}
}

// scanText consumes literal text up to the next "${" or the end of input.
func (s *scanner) scanText() TokenKind {
	for s.pos < len(s.src) {
		if s.src[s.pos] == '$' && s.peek(1) == '{' {
			s.formula = true

			break
		}

		s.pos++
	}

	return TokenString
}

// scanString consumes a quoted string. There are no escape sequences; the
// string ends at the next quote character or at the end of input.
func (s *scanner) scanString(quote byte) TokenKind {
	s.pos++

	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++

		if c == quote {
			break
		}
	}

	return TokenString
}

// scanNumber consumes a digit sequence with an optional fractional part.
func (s *scanner) scanNumber() TokenKind {
	for isDigit(s.peek(0)) {
		s.pos++
	}

	if s.peek(0) == '.' {
		s.pos++

		for isDigit(s.peek(0)) {
			s.pos++
		}
	}

	return TokenNumber
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
