package vars

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tmplc/lang"
	"github.com/ardnew/tmplc/log"
)

// maxSuggestions bounds the names offered for an undefined variable.
const maxSuggestions = 3

// Store is a concurrency-safe set of named values.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
	policy Policy
	logger log.Logger
}

var _ lang.SubFunctions = (*Store)(nil)

// Option configures a [Store].
type Option func(*Store)

// WithPolicy sets the policy for unknown names.
func WithPolicy(p Policy) Option {
	return func(s *Store) { s.policy = p }
}

// WithLogger sets the logger used to report lookups.
func WithLogger(logger log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithValues copies values into the store.
func WithValues(values map[string]any) Option {
	return func(s *Store) { maps.Copy(s.values, values) }
}

// New returns an empty Store configured by opts.
func New(opts ...Option) *Store {
	s := &Store{values: make(map[string]any), policy: DefaultPolicy}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Sample returns a store holding the demonstration variables NUMBER_5,
// STRING_ABC, STRING_PATH and ARR.
func Sample(opts ...Option) *Store {
	return New(append([]Option{WithValues(map[string]any{
		"NUMBER_5":    5,
		"STRING_ABC":  "ABC",
		"STRING_PATH": "./@param",
		"ARR":         []any{1, 2, 3},
	})}, opts...)...)
}

// Policy returns the store's missing-variable policy.
func (s *Store) Policy() Policy { return s.policy }

// Set assigns v to name.
func (s *Store) Set(name string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[name] = v
}

// Merge assigns every entry of values, replacing existing names.
func (s *Store) Merge(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maps.Copy(s.values, values)
}

// Replace discards every stored value and stores values instead.
func (s *Store) Replace(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = maps.Clone(values)
	if s.values == nil {
		s.values = make(map[string]any)
	}
}

// Delete removes name, reporting whether it was defined.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.values[name]
	delete(s.values, name)

	return ok
}

// Lookup returns the value of name and whether it is defined.
func (s *Store) Lookup(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[name]

	return v, ok
}

// Names returns the defined names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.values))
}

// Len returns the number of defined names.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.values)
}

// Values returns a copy of the stored values.
func (s *Store) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.values)
}

// Get implements [lang.SubFunctions], applying the store's policy to
// unknown names.
func (s *Store) Get(name string) (any, error) {
	if v, ok := s.Lookup(name); ok {
		return v, nil
	}

	s.logger.Debug("undefined variable",
		slog.String("name", name),
		slog.String("policy", s.policy.String()))

	switch s.policy {
	case PolicyPlaceholder:
		return Placeholder, nil

	case PolicyEmpty:
		return nil, nil

	default:
		err := ErrUndefined.Wrap(fmt.Errorf("%q", name)).With(slog.String("name", name))

		if similar := s.Suggest(name); len(similar) > 0 {
			err = ErrUndefined.Wrap(fmt.Errorf("%q (did you mean %s?)",
				name, strings.Join(similar, ", "))).With(slog.String("name", name))
		}

		return nil, err
	}
}

// Length implements [lang.SubFunctions]. A false, zero or empty value has
// length 0; anything else is measured by [lang.Length].
func (s *Store) Length(v any) (int, error) {
	if !lang.Truthy(v) {
		return 0, nil
	}

	return lang.Length(v)
}

// Suggest returns up to three defined names that fuzzily match name, best
// match first.
func (s *Store) Suggest(name string) []string {
	names := s.Names()
	matches := fuzzy.Find(name, names)

	if len(matches) == 0 {
		// Also try the reverse direction so that longer queries, such as a
		// misspelled name, still match shorter candidates.
		for _, n := range names {
			if len(fuzzy.Find(n, []string{name})) > 0 {
				matches = append(matches, fuzzy.Match{Str: n})
			}
		}
	}

	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}

		out = append(out, m.Str)
	}

	return out
}

// Assign parses a "NAME=EXPR" assignment and stores the result.
func (s *Store) Assign(assignment string) error {
	name, v, err := ParseAssignment(assignment)
	if err != nil {
		return err
	}

	s.Set(name, v)

	return nil
}

// ParseAssignment splits "NAME=EXPR" at the first '=' and evaluates EXPR as
// an expr-lang expression, so that numbers, quoted strings, booleans, lists
// and maps keep their type. If EXPR does not evaluate, the raw text is used
// as a string.
func ParseAssignment(assignment string) (string, any, error) {
	name, src, ok := strings.Cut(assignment, "=")
	name = strings.TrimSpace(name)

	if !ok || name == "" || strings.ContainsAny(name, " \t") {
		return "", nil, ErrAssignment.Wrap(fmt.Errorf("%q (want NAME=VALUE)", assignment))
	}

	if strings.TrimSpace(src) == "" {
		return name, src, nil
	}

	// An empty environment makes bare identifiers a compile error, so that
	// unquoted words fall back to strings.
	env := map[string]any{}

	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return name, src, nil
	}

	v, err := expr.Run(program, env)
	if err != nil {
		return name, src, nil
	}

	return name, v, nil
}
