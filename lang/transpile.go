package lang

import (
	"slices"
	"strconv"
	"strings"
)

// Template is a compiled template.
//
// A Template is immutable and safe for concurrent use as long as the
// [SubFunctions] passed to its evaluators are.
type Template struct {
	file  *SourceFile
	names []string
	expr  string
}

// Transpile validates the tree produced by [Parse] and returns the
// corresponding Template.
//
// Variable names are collected in the order GET calls appear in the
// template, including duplicates. An AST node the transpiler does not know
// is an [ErrInternal] error.
func Transpile(file *SourceFile) (*Template, error) {
	if file == nil || file.Template == nil || len(file.Template.Segments) == 0 {
		return &Template{file: file, expr: `""`}, nil
	}

	var (
		t     = &Template{file: file}
		parts = make([]string, 0, len(file.Template.Segments))
	)

	for _, seg := range file.Template.Segments {
		src, err := t.resolve(seg)
		if err != nil {
			return nil, err
		}

		parts = append(parts, "toText("+src+")")
	}

	t.expr = strings.Join(parts, " + ")

	return t, nil
}

// resolve returns the expr-lang source for n, recording variable names.
func (t *Template) resolve(n Node) (string, error) {
	switch n := n.(type) {
	case *Formula:
		if n.Value == nil {
			return `""`, nil
		}

		return t.resolve(n.Value)

	case *StringLiteral:
		return strconv.Quote(n.Value), nil

	case *NumericLiteral:
		// Always a float literal, so integral values never overflow int.
		src := strconv.FormatFloat(n.Value, 'f', -1, 64)
		if !strings.Contains(src, ".") {
			src += ".0"
		}

		return src, nil

	case *BooleanLiteral:
		return strconv.FormatBool(n.Value), nil

	case *GetCall:
		if n.Name == nil {
			return "", ErrInternal.Errorf("GET without argument").WithColumn(n.From)
		}

		t.names = append(t.names, n.Name.Value)

		return "get(" + strconv.Quote(n.Name.Value) + ")", nil

	case *LengthCall:
		if n.Arg == nil {
			return "", ErrInternal.Errorf("LENGTH without argument").WithColumn(n.From)
		}

		arg, err := t.resolve(n.Arg)
		if err != nil {
			return "", err
		}

		return "length(" + arg + ")", nil

	case *IfExpression:
		var part [3]string

		for i, c := range []Node{n.Cond, n.Then, n.Else} {
			src, err := t.resolve(c)
			if err != nil {
				return "", err
			}

			part[i] = src
		}

		return "(isTruthy(" + part[0] + ") ? " + part[1] + " : " + part[2] + ")", nil

	case *BinaryComparison:
		left, err := t.resolve(n.Left)
		if err != nil {
			return "", err
		}

		right, err := t.resolve(n.Right)
		if err != nil {
			return "", err
		}

		fn, ok := comparatorFunc[n.Op]
		if !ok {
			return "", ErrInternal.Errorf("unknown comparator %v", n.Op).WithColumn(n.From)
		}

		return fn + "(" + left + ", " + right + ")", nil

	default:
		return "", ErrInternal.Errorf("unknown node %T", n)
	}
}

// VariableNames returns the names passed to GET, in template order,
// including duplicates.
func (t *Template) VariableNames() []string { return slices.Clone(t.names) }

// UniqueNames returns the names passed to GET in order of first appearance.
func (t *Template) UniqueNames() []string {
	seen := make(map[string]struct{}, len(t.names))
	out := make([]string, 0, len(t.names))

	for _, name := range t.names {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	return out
}

// AST returns the tree the template was compiled from. It is nil for input
// that was not enclosed in backticks.
func (t *Template) AST() *SourceFile { return t.file }

// Expr returns the template as an expr-lang expression over the functions
// get, length, isTruthy, toText and the comparators lt, le, eq, gt, ge.
func (t *Template) Expr() string { return t.expr }

// Evaluate renders the template, resolving GET and LENGTH through fn.
func (t *Template) Evaluate(fn SubFunctions) (string, error) {
	return render(t.file, fn)
}
