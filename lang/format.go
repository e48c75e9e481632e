package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
)

// Format writes the template in canonical form: formulas without
// insignificant whitespace, a single space after each IF comma and around
// comparators, and strings in double quotes unless they contain one.
func (f *SourceFile) Format(w io.Writer) error {
	var sb strings.Builder

	sb.WriteByte('`')

	if f.Template != nil {
		for _, seg := range f.Template.Segments {
			formatNode(&sb, seg)
		}
	}

	sb.WriteByte('`')

	_, err := fmt.Fprintln(w, sb.String())

	return err
}

// String returns the canonical form of the template.
func (f *SourceFile) String() string {
	var sb strings.Builder

	_ = f.Format(&sb)

	return strings.TrimSuffix(sb.String(), "\n")
}

func formatNode(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Formula:
		sb.WriteString("${")

		if n.Value != nil {
			formatNode(sb, n.Value)
		}

		sb.WriteByte('}')

	case *StringLiteral:
		if n.IsText() {
			sb.WriteString(n.Value)

			return
		}

		q := byte('"')
		if strings.IndexByte(n.Value, '"') >= 0 {
			q = '\''
		}

		sb.WriteByte(q)
		sb.WriteString(n.Value)
		sb.WriteByte(q)

	case *NumericLiteral:
		sb.WriteString(n.Text())

	case *BooleanLiteral:
		if n.Value {
			sb.WriteString("TRUE")
		} else {
			sb.WriteString("FALSE")
		}

	case *GetCall:
		sb.WriteString("GET(")
		formatNode(sb, n.Name)
		sb.WriteByte(')')

	case *LengthCall:
		sb.WriteString("LENGTH(")
		formatNode(sb, n.Arg)
		sb.WriteByte(')')

	case *IfExpression:
		sb.WriteString("IF(")
		formatNode(sb, n.Cond)
		sb.WriteString(", ")
		formatNode(sb, n.Then)
		sb.WriteString(", ")
		formatNode(sb, n.Else)
		sb.WriteByte(')')

	case *BinaryComparison:
		formatNode(sb, n.Left)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		formatNode(sb, n.Right)
	}
}

// FormatJSON writes the AST as JSON to the writer.
func (f *SourceFile) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return writeJSON(w, ToMap(f), indent)
}

// FormatYAML writes the AST as YAML to the writer.
func (f *SourceFile) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return writeYAML(ctx, w, ToMap(f), indent)
}

// FormatTokens writes one token per line as aligned columns of kind,
// position and quoted lexeme.
func FormatTokens(w io.Writer, tokens []Token) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, t := range tokens {
		_, err := fmt.Fprintf(tw, "%s\t%d:%d\t%s\n",
			t.Kind, t.ColumnFrom, t.ColumnTo, strconv.Quote(t.Lexeme))
		if err != nil {
			return err
		}
	}

	return tw.Flush()
}

// FormatTokensJSON writes tokens as a JSON array.
func FormatTokensJSON(_ context.Context, w io.Writer, tokens []Token, indent int) error {
	if tokens == nil {
		tokens = []Token{}
	}

	return writeJSON(w, tokens, indent)
}

// FormatTokensYAML writes tokens as a YAML sequence.
func FormatTokensYAML(ctx context.Context, w io.Writer, tokens []Token, indent int) error {
	if tokens == nil {
		tokens = []Token{}
	}

	return writeYAML(ctx, w, tokens, indent)
}

func writeJSON(w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}
