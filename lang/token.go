package lang

import (
	"iter"
	"maps"
	"slices"
	"strconv"
)

// TokenKind identifies the lexical class of a [Token].
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenWhitespace
	TokenString
	TokenNumber
	TokenDollarBrace
	TokenCloseBrace
	TokenOpenParen
	TokenCloseParen
	TokenComma
	TokenLess
	TokenLessEqual
	TokenStrictEqual
	TokenGreater
	TokenGreaterEqual
	TokenIdentifier
	TokenIf
	TokenGet
	TokenLength
	TokenTrue
	TokenFalse
)

var tokenKindName = [...]string{
	TokenEOF:          "EOF",
	TokenWhitespace:   "Whitespace",
	TokenString:       "StringLiteral",
	TokenNumber:       "NumericLiteral",
	TokenDollarBrace:  "DollarBrace",
	TokenCloseBrace:   "CloseBrace",
	TokenOpenParen:    "OpenParen",
	TokenCloseParen:   "CloseParen",
	TokenComma:        "Comma",
	TokenLess:         "LessThan",
	TokenLessEqual:    "LessThanEquals",
	TokenStrictEqual:  "StrictEquals",
	TokenGreater:      "GreaterThan",
	TokenGreaterEqual: "GreaterThanEquals",
	TokenIdentifier:   "Identifier",
	TokenIf:           "IF",
	TokenGet:          "GET",
	TokenLength:       "LENGTH",
	TokenTrue:         "TRUE",
	TokenFalse:        "FALSE",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindName) {
		return tokenKindName[k]
	}

	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (k TokenKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsComparator reports whether k is one of the comparison operators.
func (k TokenKind) IsComparator() bool {
	return k >= TokenLess && k <= TokenGreaterEqual
}

// IsKeyword reports whether k is a reserved word.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenIf && k <= TokenFalse
}

// keywords maps reserved words to their token kinds. Keywords are
// case-sensitive. It is never modified.
//
//nolint:gochecknoglobals
var keywords = map[string]TokenKind{
	"IF":     TokenIf,
	"GET":    TokenGet,
	"LENGTH": TokenLength,
	"TRUE":   TokenTrue,
	"FALSE":  TokenFalse,
}

// Keywords returns an iterator over the reserved words in sorted order.
func Keywords() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(keywords)))
}

// lookupIdent returns the keyword kind for ident, or [TokenIdentifier].
func lookupIdent(ident string) TokenKind {
	if k, ok := keywords[ident]; ok {
		return k
	}

	return TokenIdentifier
}

// Token is a lexeme of a template.
//
// ColumnFrom and ColumnTo are byte offsets into the original template,
// including its opening backtick, so that template[ColumnFrom:ColumnTo] is
// the Lexeme. ColumnFrom is also the 1-based column of the token within the
// template body.
type Token struct {
	Lexeme     string    `json:"lexeme"     yaml:"lexeme"`
	Kind       TokenKind `json:"kind"       yaml:"kind"`
	ColumnFrom int       `json:"columnFrom" yaml:"columnFrom"`
	ColumnTo   int       `json:"columnTo"   yaml:"columnTo"`
}

func (t Token) String() string {
	return t.Kind.String() + "(" + strconv.Quote(t.Lexeme) + ")@" +
		strconv.Itoa(t.ColumnFrom)
}
