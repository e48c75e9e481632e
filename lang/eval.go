package lang

import (
	"log/slog"
	"strings"
)

// render evaluates every segment of file and concatenates the results.
func render(file *SourceFile, fn SubFunctions) (string, error) {
	if file == nil || file.Template == nil {
		return "", nil
	}

	segs := file.Template.Segments
	if len(segs) == 1 {
		v, err := evaluate(segs[0], fn)
		if err != nil {
			return "", err
		}

		return Text(v), nil
	}

	var sb strings.Builder

	for _, seg := range segs {
		v, err := evaluate(seg, fn)
		if err != nil {
			return "", err
		}

		sb.WriteString(Text(v))
	}

	return sb.String(), nil
}

// evaluate interprets a single node.
func evaluate(n Node, fn SubFunctions) (any, error) {
	switch n := n.(type) {
	case *Formula:
		if n.Value == nil {
			return "", nil
		}

		return evaluate(n.Value, fn)

	case *StringLiteral:
		return n.Value, nil

	case *NumericLiteral:
		return n.Value, nil

	case *BooleanLiteral:
		return n.Value, nil

	case *GetCall:
		v, err := fn.Get(n.Name.Value)
		if err != nil {
			return nil, ErrEvaluate.Wrap(err).
				With(slog.String("variable", n.Name.Value)).
				WithColumn(n.From)
		}

		return v, nil

	case *LengthCall:
		v, err := evaluate(n.Arg, fn)
		if err != nil {
			return nil, err
		}

		l, err := fn.Length(v)
		if err != nil {
			return nil, ErrEvaluate.Wrap(err).
				With(slog.String("variable", n.Arg.Name.Value)).
				WithColumn(n.From)
		}

		return float64(l), nil

	case *IfExpression:
		c, err := evaluate(n.Cond, fn)
		if err != nil {
			return nil, err
		}

		if Truthy(c) {
			return evaluate(n.Then, fn)
		}

		return evaluate(n.Else, fn)

	case *BinaryComparison:
		l, err := evaluate(n.Left, fn)
		if err != nil {
			return nil, err
		}

		r, err := evaluate(n.Right, fn)
		if err != nil {
			return nil, err
		}

		return Compare(l, n.Op, r), nil

	default:
		return nil, ErrInternal.Errorf("cannot evaluate %T", n)
	}
}
