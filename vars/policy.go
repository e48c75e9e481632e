package vars

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Policy selects what [Store.Get] returns for an unknown name.
type Policy int

const (
	// PolicyError fails with [ErrUndefined], suggesting similar names.
	PolicyError Policy = iota
	// PolicyPlaceholder returns [Placeholder].
	PolicyPlaceholder
	// PolicyEmpty returns nil, which renders as the empty string.
	PolicyEmpty
)

// DefaultPolicy is the policy of a Store created without [WithPolicy].
const DefaultPolicy = PolicyError

// Placeholder is the value returned for unknown names under
// [PolicyPlaceholder].
const Placeholder = "Undefined Variable"

var policyName = []string{
	PolicyError:       "error",
	PolicyPlaceholder: "placeholder",
	PolicyEmpty:       "empty",
}

func (p Policy) String() string {
	if p >= 0 && int(p) < len(policyName) {
		return policyName[p]
	}

	return fmt.Sprintf("Policy(%d)", int(p))
}

// Policies returns an iterator over the policy names.
func Policies() iter.Seq[string] { return slices.Values(policyName) }

// ParsePolicy parses a policy name, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	i := slices.Index(policyName, strings.ToLower(strings.TrimSpace(s)))
	if i < 0 {
		return DefaultPolicy, ErrPolicy.Wrap(fmt.Errorf("%q (want one of %s)",
			s, strings.Join(policyName, ", ")))
	}

	return Policy(i), nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}

	*p = v

	return nil
}
