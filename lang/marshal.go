package lang

import "encoding/json"

// MarshalJSON implements json.Marshaler for SourceFile.
func (f *SourceFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToMap(f))
}

// ToMap converts the tree rooted at n to nested maps suitable for encoding.
//
// Every node has "kind", "from", "to" and "text" keys. Variant fields use
// the names of the corresponding struct fields in lower case, and nodes
// with a variable number of children list them under "segments".
func ToMap(n Node) map[string]any {
	if n == nil {
		return nil
	}

	from, to := n.Columns()
	m := map[string]any{
		"kind": n.Kind().String(),
		"from": from,
		"to":   to,
		"text": n.Text(),
	}

	switch n := n.(type) {
	case *SourceFile:
		if n.Template != nil {
			m["template"] = ToMap(n.Template)
		}

	case *TemplateString:
		segs := make([]any, len(n.Segments))
		for i, s := range n.Segments {
			segs[i] = ToMap(s)
		}

		m["segments"] = segs

	case *Formula:
		if n.Value != nil {
			m["value"] = ToMap(n.Value)
		}

	case *StringLiteral:
		m["value"] = n.Value
		if n.Quote != 0 {
			m["quote"] = string(n.Quote)
		}

	case *NumericLiteral:
		m["value"] = n.Value

	case *BooleanLiteral:
		m["value"] = n.Value

	case *GetCall:
		m["name"] = n.Name.Value

	case *LengthCall:
		m["arg"] = ToMap(n.Arg)

	case *IfExpression:
		m["cond"] = ToMap(n.Cond)
		m["then"] = ToMap(n.Then)
		m["else"] = ToMap(n.Else)

	case *BinaryComparison:
		m["left"] = ToMap(n.Left)
		m["op"] = n.Op.String()
		m["right"] = ToMap(n.Right)
	}

	return m
}
