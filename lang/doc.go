// Package lang compiles backtick templates with embedded formulas.
//
// A template is a string enclosed in backticks. Literal text is copied to the
// output; "${...}" introduces a formula whose value is rendered in its place.
//
// # Grammar
//
// Informal EBNF:
//
//	SourceFile     → TemplateString? EOF
//	TemplateString → (Text | Formula)*
//	Formula        → '${' Value? '}'
//	Value          → String | Number | TRUE | FALSE | GetCall | LengthCall | IfExpression
//	GetCall        → 'GET' '(' String ')'
//	LengthCall     → 'LENGTH' '(' GetCall ')'
//	IfExpression   → 'IF' '(' Condition ',' Value ',' Value ')'
//	Condition      → Value (Comparator Value)?
//	Comparator     → '<' | '<=' | '===' | '>' | '>='
//
// Strings are quoted with ' or " and have no escape sequences. Numbers are
// unsigned decimals that do not start with 0. Spaces between formula tokens
// are ignored.
//
// # Example
//
//	`Files: ${IF(LENGTH(GET("ARR")) > 2, "many", "few")}`
//
// # Pipeline
//
// [Tokenize] produces tokens, [Parse] builds the AST rooted at a
// [*SourceFile], and [Transpile] turns it into a [*Template]. [Compile] runs
// all three. A Template reports the variables it reads with
// [Template.VariableNames] and renders with [Template.Evaluate], which calls
// back into a [SubFunctions] table for GET and LENGTH.
//
// [Template.Expr] returns an equivalent expr-lang expression, and
// [Template.EvaluateExpr] renders by running it through expr-lang instead of
// interpreting the AST.
//
// # Errors
//
// Errors match one of [ErrLex], [ErrParse], [ErrInternal], [ErrEvaluate] or
// [ErrExprCompile] with [errors.Is], and [Column] reports the 1-based column
// of the offending character within the template body.
package lang
