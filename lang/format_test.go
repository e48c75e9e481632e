package lang

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"``", "``"},
		{"`plain`", "`plain`"},
		{"`a${  GET('X' ) }b`", "`a${GET(\"X\")}b`"},
		{
			"`${IF(1<2,\"y\",'n')}`",
			"`${IF(1 < 2, \"y\", \"n\")}`",
		},
		{
			"`${IF(LENGTH( GET(\"A\") )===3,TRUE,FALSE)}`",
			"`${IF(LENGTH(GET(\"A\")) === 3, TRUE, FALSE)}`",
		},
		{"`${'say \"hi\"'}`", "`${'say \"hi\"'}`"},
		{"`${ }`", "`${}`"},
		{"`${1.50}`", "`${1.50}`"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			file := mustParse(t, tt.in)

			var buf bytes.Buffer
			if err := file.Format(&buf); err != nil {
				t.Fatal(err)
			}

			if got := buf.String(); got != tt.want+"\n" {
				t.Errorf("Format = %q, want %q", got, tt.want)
			}

			// Canonical output is a fixed point.
			if again := mustParse(t, tt.want).String(); again != tt.want {
				t.Errorf("reformat = %q", again)
			}
		})
	}
}

func TestFormatJSON(t *testing.T) {
	file := mustParse(t, "`x${IF(GET('A') > 1, 'y', LENGTH(GET('B')))}`")

	var buf bytes.Buffer
	if err := file.FormatJSON(t.Context(), &buf, 2); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if got["kind"] != "SourceFile" {
		t.Errorf("kind = %v", got["kind"])
	}

	segs := got["template"].(map[string]any)["segments"].([]any)
	if len(segs) != 2 {
		t.Fatalf("segments = %v", segs)
	}

	value := segs[1].(map[string]any)["value"].(map[string]any)
	if value["kind"] != "IfExpression" {
		t.Errorf("formula value kind = %v", value["kind"])
	}

	cond := value["cond"].(map[string]any)
	if cond["op"] != ">" || cond["left"].(map[string]any)["name"] != "A" {
		t.Errorf("cond = %v", cond)
	}

	compact, err := json.Marshal(file)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Contains(compact, []byte(`"kind":"LengthCall"`)) {
		t.Errorf("MarshalJSON output missing LengthCall: %s", compact)
	}
}

func TestFormatYAML(t *testing.T) {
	file := mustParse(t, "`${GET('NAME')}`")

	var buf bytes.Buffer
	if err := file.FormatYAML(t.Context(), &buf, 2); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"kind: SourceFile", "kind: GetCall", "name: NAME"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("YAML missing %q:\n%s", want, buf.String())
		}
	}
}

func TestFormatTokens(t *testing.T) {
	tokens, err := Tokenize("`a${1}`")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := FormatTokens(&buf, tokens); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(tokens) {
		t.Fatalf("got %d lines for %d tokens:\n%s", len(lines), len(tokens), buf.String())
	}

	if f := strings.Fields(lines[2]); len(f) != 3 || f[0] != "NumericLiteral" || f[1] != "4:5" || f[2] != `"1"` {
		t.Errorf("line 2 = %q", lines[2])
	}

	buf.Reset()

	if err := FormatTokensJSON(t.Context(), &buf, tokens, 0); err != nil {
		t.Fatal(err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded[1]["kind"] != "DollarBrace" || decoded[1]["columnFrom"] != float64(2) {
		t.Errorf("token 1 = %v", decoded[1])
	}

	buf.Reset()

	if err := FormatTokensYAML(t.Context(), &buf, tokens, 2); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "kind: CloseBrace") {
		t.Errorf("YAML tokens:\n%s", buf.String())
	}
}
