package lang

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// comparatorFunc names the expr-lang function implementing each comparator.
// The native expr operators are not used because their coercion rules
// differ from [Compare].
//
//nolint:gochecknoglobals
var comparatorFunc = map[Comparator]string{
	Less:         "lt",
	LessEqual:    "le",
	StrictEqual:  "eq",
	Greater:      "gt",
	GreaterEqual: "ge",
}

// exprOptions declares the functions referenced by [Template.Expr], bound to
// fn.
func exprOptions(fn SubFunctions) []expr.Option {
	opts := []expr.Option{
		expr.Function("get",
			func(params ...any) (any, error) {
				name, _ := params[0].(string)

				return fn.Get(name)
			},
			new(func(string) any),
		),
		expr.Function("length",
			func(params ...any) (any, error) {
				n, err := fn.Length(params[0])
				if err != nil {
					return nil, err
				}

				return float64(n), nil
			},
			new(func(any) float64),
		),
		expr.Function("isTruthy",
			func(params ...any) (any, error) { return Truthy(params[0]), nil },
			new(func(any) bool),
		),
		expr.Function("toText",
			func(params ...any) (any, error) { return Text(params[0]), nil },
			new(func(any) string),
		),
	}

	for op, name := range comparatorFunc {
		opts = append(opts, expr.Function(name,
			func(params ...any) (any, error) {
				return Compare(params[0], op, params[1]), nil
			},
			new(func(any, any) bool),
		))
	}

	return opts
}

// CompileExpr compiles the expr-lang form of the template with its
// functions bound to fn.
func (t *Template) CompileExpr(fn SubFunctions) (*vm.Program, error) {
	program, err := expr.Compile(t.expr, exprOptions(fn)...)
	if err != nil {
		return nil, ErrExprCompile.Wrap(err)
	}

	return program, nil
}

// EvaluateExpr renders the template by running its expr-lang form instead of
// interpreting the tree. It produces the same output as [Template.Evaluate].
func (t *Template) EvaluateExpr(fn SubFunctions) (string, error) {
	program, err := t.CompileExpr(fn)
	if err != nil {
		return "", err
	}

	out, err := expr.Run(program, nil)
	if err != nil {
		return "", ErrEvaluate.Wrap(err)
	}

	return Text(out), nil
}
