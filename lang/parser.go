package lang

import (
	"slices"
	"strconv"
)

// Parse builds the AST of template from its tokens, as returned by
// [Tokenize]. Whitespace tokens are ignored.
//
// Errors match [ErrParse] and carry the column of the offending token.
// No partial tree is returned on error.
func Parse(template string, tokens []Token) (*SourceFile, error) {
	p := parser{
		src: template,
		toks: slices.DeleteFunc(slices.Clone(tokens), func(t Token) bool {
			return t.Kind == TokenWhitespace
		}),
	}

	return p.parseSourceFile()
}

type parser struct {
	src  string
	toks []Token
	pos  int
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	return ErrParse.Errorf(format, args...).WithColumn(tok.ColumnFrom)
}

// span returns the Span from the start of first to the end of last.
func (p *parser) span(first, last Token) Span {
	from, to := first.ColumnFrom, last.ColumnTo
	if from < 0 || to > len(p.src) || from > to {
		return Span{From: from, To: to}
	}

	return Span{From: from, To: to, Source: p.src[from:to]}
}

// at returns the token at index i if it precedes limit, and the token at
// limit otherwise. Indexes past limit therefore never match an expected
// kind and report the position of the boundary.
func (p *parser) at(i, limit int) Token {
	if i < limit {
		return p.toks[i]
	}

	return p.toks[limit]
}

func (p *parser) expect(i, limit int, kind TokenKind, what string) (Token, error) {
	tok := p.at(i, limit)
	if tok.Kind != kind {
		return tok, p.errorf(tok, "expected %s, found %s", what, describe(tok))
	}

	return tok, nil
}

func describe(tok Token) string {
	switch {
	case tok.Kind == TokenEOF:
		return "end of template"
	case tok.Kind == TokenCloseBrace:
		return "end of formula"
	case tok.Kind.IsKeyword():
		return "keyword " + tok.Lexeme
	default:
		return strconv.Quote(tok.Lexeme)
	}
}

func (p *parser) parseSourceFile() (*SourceFile, error) {
	if len(p.toks) == 0 || p.toks[len(p.toks)-1].Kind != TokenEOF {
		col := 1
		if len(p.toks) > 0 {
			col = p.toks[len(p.toks)-1].ColumnTo
		}

		return nil, ErrParse.Errorf("missing end of template").WithColumn(col)
	}

	last := len(p.toks) - 1
	eofTok := p.toks[last]
	file := &SourceFile{Span: p.span(p.toks[0], eofTok)}

	if last > 0 {
		tmpl, err := p.parseTemplateString(last)
		if err != nil {
			return nil, err
		}

		file.Template = tmpl
	}

	if p.pos != last {
		return nil, p.errorf(p.toks[p.pos], "not all tokens parsed")
	}

	file.EOF = &EndOfFile{Span: p.span(eofTok, eofTok)}
	p.pos++

	return file, nil
}

func (p *parser) parseTemplateString(limit int) (*TemplateString, error) {
	tmpl := &TemplateString{Span: p.span(p.toks[0], p.toks[limit-1])}

	for p.pos < limit {
		tok := p.toks[p.pos]

		switch tok.Kind {
		case TokenString:
			p.pos++
			tmpl.Segments = append(tmpl.Segments, &StringLiteral{
				Span:  p.span(tok, tok),
				Value: tok.Lexeme,
			})

		case TokenDollarBrace:
			f, err := p.parseFormula()
			if err != nil {
				return nil, err
			}

			tmpl.Segments = append(tmpl.Segments, f)

		default:
			return nil, p.errorf(tok, "expected text or formula, found %s", describe(tok))
		}
	}

	return tmpl, nil
}

// parseFormula parses "${" [Value] "}". The formula ends at the first
// close brace following "${".
func (p *parser) parseFormula() (*Formula, error) {
	open := p.toks[p.pos]

	end := p.find(p.pos+1, len(p.toks), TokenCloseBrace)
	if end < 0 {
		return nil, p.errorf(open, "missing '}' for formula")
	}

	f := &Formula{Span: p.span(open, p.toks[end])}
	p.pos++

	if p.pos < end {
		v, err := p.parseValue(end)
		if err != nil {
			return nil, err
		}

		if p.pos < end {
			tok := p.toks[p.pos]
			if startsValue(tok.Kind) {
				return nil, p.errorf(tok, "formula cannot contain more than one value")
			}

			return nil, p.errorf(tok, "unexpected %s in formula", describe(tok))
		}

		f.Value = v
	}

	p.pos = end + 1

	return f, nil
}

func startsValue(k TokenKind) bool {
	switch k {
	case TokenString, TokenNumber, TokenTrue, TokenFalse,
		TokenGet, TokenLength, TokenIf:
		return true
	default:
		return false
	}
}

// parseValue parses one value from tokens preceding limit.
func (p *parser) parseValue(limit int) (Value, error) {
	tok := p.at(p.pos, limit)

	switch tok.Kind {
	case TokenString:
		p.pos++

		return p.quoted(tok), nil

	case TokenNumber:
		n, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number %q", tok.Lexeme)
		}

		p.pos++

		return &NumericLiteral{Span: p.span(tok, tok), Value: n}, nil

	case TokenTrue, TokenFalse:
		p.pos++

		return &BooleanLiteral{Span: p.span(tok, tok), Value: tok.Kind == TokenTrue}, nil

	case TokenGet:
		return p.parseGet(limit)

	case TokenLength:
		return p.parseLength(limit)

	case TokenIf:
		return p.parseIf(limit)

	default:
		if p.pos >= limit {
			return nil, p.errorf(tok, "expected value, found %s", describe(tok))
		}

		return nil, p.errorf(tok, "unexpected %s, expected value", describe(tok))
	}
}

// quoted converts a quoted string token into a StringLiteral. An
// unterminated string keeps everything after its opening quote.
func (p *parser) quoted(tok Token) *StringLiteral {
	if tok.Lexeme == "" {
		return &StringLiteral{Span: p.span(tok, tok)}
	}

	q := tok.Lexeme[0]

	v := tok.Lexeme[1:]
	if len(v) > 0 && v[len(v)-1] == q {
		v = v[:len(v)-1]
	}

	return &StringLiteral{Span: p.span(tok, tok), Value: v, Quote: q}
}

// parseGet parses GET "(" StringLiteral ")".
func (p *parser) parseGet(limit int) (*GetCall, error) {
	kw := p.toks[p.pos]

	if _, err := p.expect(p.pos+1, limit, TokenOpenParen, "'(' after GET"); err != nil {
		return nil, err
	}

	arg := p.at(p.pos+2, limit)
	if arg.Kind != TokenString || p.pos+2 >= limit {
		return nil, p.errorf(arg, "GET argument must be a string literal, found %s",
			describe(arg))
	}

	closeTok, err := p.expect(p.pos+3, limit, TokenCloseParen, "')' after GET argument")
	if err != nil {
		return nil, err
	}

	p.pos += 4

	return &GetCall{Span: p.span(kw, closeTok), Name: p.quoted(arg)}, nil
}

// parseLength parses LENGTH "(" GetCall ")".
func (p *parser) parseLength(limit int) (*LengthCall, error) {
	kw := p.toks[p.pos]

	if _, err := p.expect(p.pos+1, limit, TokenOpenParen, "'(' after LENGTH"); err != nil {
		return nil, err
	}

	if arg := p.at(p.pos+2, limit); arg.Kind != TokenGet || p.pos+2 >= limit {
		return nil, p.errorf(arg, "LENGTH argument must be a GET call, found %s",
			describe(arg))
	}

	p.pos += 2

	get, err := p.parseGet(limit)
	if err != nil {
		return nil, err
	}

	closeTok, err := p.expect(p.pos, limit, TokenCloseParen, "')' after LENGTH argument")
	if err != nil {
		return nil, err
	}

	p.pos++

	return &LengthCall{Span: p.span(kw, closeTok), Arg: get}, nil
}

// parseIf parses IF "(" Condition "," Value "," Value ")".
//
// Both the closing parenthesis and the two argument commas are located with
// a parenthesis-depth-aware scan, so arguments may nest further calls.
func (p *parser) parseIf(limit int) (*IfExpression, error) {
	kw := p.toks[p.pos]

	openTok, err := p.expect(p.pos+1, limit, TokenOpenParen, "'(' after IF")
	if err != nil {
		return nil, err
	}

	open := p.pos + 1

	end := p.matchParen(open, limit)
	if end < 0 {
		return nil, p.errorf(openTok, "missing ')' for IF")
	}

	commas := p.topLevelCommas(open+1, end)

	switch {
	case len(commas) < 2:
		return nil, p.errorf(p.toks[end],
			"IF expects 3 arguments separated by ',', found %d", len(commas)+1)
	case len(commas) > 2:
		return nil, p.errorf(p.toks[commas[2]],
			"IF expects 3 arguments separated by ',', found %d", len(commas)+1)
	}

	p.pos = open + 1

	cond, err := p.parseCondition(commas[0])
	if err != nil {
		return nil, err
	}

	then, err := p.parseArgument(commas[0]+1, commas[1])
	if err != nil {
		return nil, err
	}

	els, err := p.parseArgument(commas[1]+1, end)
	if err != nil {
		return nil, err
	}

	p.pos = end + 1

	return &IfExpression{
		Span: p.span(kw, p.toks[end]),
		Cond: cond,
		Then: then,
		Else: els,
	}, nil
}

// parseArgument parses a value spanning exactly the tokens [from, limit).
func (p *parser) parseArgument(from, limit int) (Value, error) {
	p.pos = from

	v, err := p.parseValue(limit)
	if err != nil {
		return nil, err
	}

	if p.pos < limit {
		tok := p.toks[p.pos]

		return nil, p.errorf(tok, "unexpected %s after IF argument", describe(tok))
	}

	return v, nil
}

// parseCondition parses Value [Comparator Value] spanning the tokens up to
// limit.
func (p *parser) parseCondition(limit int) (Condition, error) {
	left, err := p.parseValue(limit)
	if err != nil {
		return nil, err
	}

	if p.pos >= limit {
		return left, nil
	}

	opTok := p.toks[p.pos]

	op, ok := comparatorOf(opTok.Kind)
	if !ok {
		return nil, p.errorf(opTok, "expected comparator, found %s", describe(opTok))
	}

	p.pos++

	right, err := p.parseArgument(p.pos, limit)
	if err != nil {
		return nil, err
	}

	from, _ := left.Columns()
	_, to := right.Columns()

	cmp := &BinaryComparison{Left: left, Op: op, Right: right}
	cmp.Span = p.span(Token{ColumnFrom: from}, Token{ColumnTo: to})

	return cmp, nil
}

// find returns the index of the first token of kind in [from, limit), or -1.
func (p *parser) find(from, limit int, kind TokenKind) int {
	for i := from; i < limit; i++ {
		if p.toks[i].Kind == kind {
			return i
		}
	}

	return -1
}

// matchParen returns the index of the parenthesis closing the one at open,
// searching before limit, or -1.
func (p *parser) matchParen(open, limit int) int {
	depth := 0

	for i := open + 1; i < limit; i++ {
		switch p.toks[i].Kind {
		case TokenOpenParen:
			depth++
		case TokenCloseParen:
			if depth == 0 {
				return i
			}

			depth--
		}
	}

	return -1
}

// topLevelCommas returns the indexes of commas in [from, limit) that are not
// enclosed in parentheses.
func (p *parser) topLevelCommas(from, limit int) []int {
	var (
		idx   []int
		depth int
	)

	for i := from; i < limit; i++ {
		switch p.toks[i].Kind {
		case TokenOpenParen:
			depth++
		case TokenCloseParen:
			depth--
		case TokenComma:
			if depth == 0 {
				idx = append(idx, i)
			}
		}
	}

	return idx
}
