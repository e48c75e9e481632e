// Package vars provides the variable store that backs GET and LENGTH when
// rendering templates.
//
// A [Store] implements [lang.SubFunctions]. Values are loaded from YAML or
// JSON documents, assigned from "NAME=EXPR" strings, or set directly. A
// [Policy] decides what GET returns for names the store does not hold.
package vars
