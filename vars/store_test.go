package vars

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/ardnew/tmplc/lang"
)

func TestStoreGetPolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		want    any
		wantErr bool
	}{
		{"error", PolicyError, nil, true},
		{"placeholder", PolicyPlaceholder, Placeholder, false},
		{"empty", PolicyEmpty, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Sample(WithPolicy(tt.policy))

			got, err := s.Get("MISSING")
			if tt.wantErr {
				if !errors.Is(err, ErrUndefined) {
					t.Fatalf("Get error = %v, want ErrUndefined", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Get: %v", err)
			}

			if got != tt.want {
				t.Errorf("Get = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStoreGetDefined(t *testing.T) {
	s := Sample()

	for name, want := range map[string]string{
		"NUMBER_5":    "5",
		"STRING_ABC":  "ABC",
		"STRING_PATH": "./@param",
		"ARR":         "1,2,3",
	} {
		v, err := s.Get(name)
		if err != nil {
			t.Fatalf("Get(%s): %v", name, err)
		}

		if got := lang.Text(v); got != want {
			t.Errorf("Get(%s) = %q, want %q", name, got, want)
		}
	}
}

func TestStoreSuggest(t *testing.T) {
	s := Sample()

	_, err := s.Get("NUMBR")
	if err == nil {
		t.Fatal("expected error")
	}

	if !strings.Contains(err.Error(), "did you mean NUMBER_5") {
		t.Errorf("error %q lacks suggestion", err)
	}

	if got := s.Suggest("NUMBER_55"); !slices.Contains(got, "NUMBER_5") {
		t.Errorf("Suggest(NUMBER_55) = %v", got)
	}

	if got := s.Suggest("zzz"); len(got) != 0 {
		t.Errorf("Suggest(zzz) = %v, want none", got)
	}
}

func TestStoreLength(t *testing.T) {
	s := New()

	tests := []struct {
		name    string
		in      any
		want    int
		wantErr bool
	}{
		{"nil", nil, 0, false},
		{"empty string", "", 0, false},
		{"string", "ABC", 3, false},
		{"slice", []any{1, 2, 3}, 3, false},
		{"zero", 0, 0, false},
		{"false", false, 0, false},
		{"number", 5, 0, true},
		{"true", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Length(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Length error = %v, wantErr %v", err, tt.wantErr)
			}

			if got != tt.want {
				t.Errorf("Length = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStoreNamesAndMerge(t *testing.T) {
	s := New(WithValues(map[string]any{"B": 1}))
	s.Merge(map[string]any{"A": 2, "B": 3})

	if got := s.Names(); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("Names = %v", got)
	}

	if v, ok := s.Lookup("B"); !ok || v != 3 {
		t.Errorf("Lookup(B) = %v, %v", v, ok)
	}

	if s.Len() != 2 {
		t.Errorf("Len = %d", s.Len())
	}

	values := s.Values()
	values["C"] = 4

	if _, ok := s.Lookup("C"); ok {
		t.Error("Values returned the live map")
	}
}

func TestStoreConcurrent(t *testing.T) {
	s := New()

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Go(func() {
			s.Set(strings.Repeat("X", i+1), i)
			_, _ = s.Get("X")
			_ = s.Names()
		})
	}

	wg.Wait()

	if s.Len() != 8 {
		t.Errorf("Len = %d, want 8", s.Len())
	}
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantText string
		wantErr  bool
	}{
		{in: "N=5", wantName: "N", wantText: "5"},
		{in: "S='a b'", wantName: "S", wantText: "a b"},
		{in: "P=./@param", wantName: "P", wantText: "./@param"},
		{in: "L=[1, 2, 3]", wantName: "L", wantText: "1,2,3"},
		{in: "B=true", wantName: "B", wantText: "true"},
		{in: " W =hello", wantName: "W", wantText: "hello"},
		{in: "E=", wantName: "E", wantText: ""},
		{in: "K=a=b", wantName: "K", wantText: "a=b"},
		{in: "novalue", wantErr: true},
		{in: "=5", wantErr: true},
		{in: "A B=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, v, err := ParseAssignment(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrAssignment) {
					t.Fatalf("error = %v, want ErrAssignment", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseAssignment: %v", err)
			}

			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}

			if got := lang.Text(v); got != tt.wantText {
				t.Errorf("value = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestStoreRendersTemplate(t *testing.T) {
	s := Sample()

	if err := s.Assign("GREETING='hi'"); err != nil {
		t.Fatal(err)
	}

	tmpl, err := lang.Compile(t.Context(),
		"`${GET('GREETING')} ${LENGTH(GET('ARR'))} ${LENGTH(GET('NONE'))}`")
	if err != nil {
		t.Fatal(err)
	}

	s.Set("NONE", nil)

	got, err := tmpl.Evaluate(s)
	if err != nil {
		t.Fatal(err)
	}

	if got != "hi 3 0" {
		t.Errorf("Evaluate = %q, want %q", got, "hi 3 0")
	}
}

func TestPolicyText(t *testing.T) {
	for name := range Policies() {
		var p Policy
		if err := p.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", name, err)
		}

		if p.String() != name {
			t.Errorf("round trip %s = %s", name, p)
		}
	}

	if _, err := ParsePolicy("bogus"); !errors.Is(err, ErrPolicy) {
		t.Errorf("ParsePolicy(bogus) error = %v", err)
	}

	if got := Policy(9).String(); got != "Policy(9)" {
		t.Errorf("String = %q", got)
	}
}

func TestStoreReplaceDelete(t *testing.T) {
	s := Sample()

	if !s.Delete("ARR") || s.Delete("ARR") {
		t.Error("Delete should report only the first removal")
	}

	s.Replace(map[string]any{"ONLY": 1})

	if got := s.Names(); !slices.Equal(got, []string{"ONLY"}) {
		t.Errorf("Names after Replace = %v", got)
	}

	s.Replace(nil)
	s.Set("X", 1)

	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}
