package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/tmplc/vars"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		render Render
		stdin  string
		want   string
	}{
		{
			name: "interp",
			render: Render{
				Input:     Input{Template: "`n=${GET('NUMBER_5')} len=${LENGTH(GET('ARR'))}`"},
				Variables: Variables{Sample: true},
				Engine:    engineInterp,
			},
			want: "n=5 len=3\n",
		},
		{
			name: "expr",
			render: Render{
				Input:     Input{Template: "`${IF(GET('NUMBER_5') > 4, 'big', 'small')}`"},
				Variables: Variables{Sample: true},
				Engine:    engineExpr,
			},
			want: "big\n",
		},
		{
			name: "no newline",
			render: Render{
				Input:     Input{Template: "`${GET('X')}`"},
				Variables: Variables{Set: []string{"X=42"}},
				NoNewline: true,
			},
			want: "42",
		},
		{
			name:   "stdin",
			render: Render{Variables: Variables{Missing: vars.PolicyEmpty}},
			stdin:  "`[${GET('NOPE')}]`\n",
			want:   "[]\n",
		},
		{
			name:   "not a template",
			render: Render{Input: Input{Template: "plain text"}},
			want:   "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, stdout, _ := stdio(t, tt.stdin)

			if err := tt.render.Run(ctx); err != nil {
				t.Fatalf("Run: %v", err)
			}

			if got := stdout.String(); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	t.Run("syntax", func(t *testing.T) {
		ctx, stdout, stderr := stdio(t, "")

		r := Render{Input: Input{Template: "`${GET(}`"}}

		if err := r.Run(ctx); !errors.Is(err, ErrCompile) {
			t.Fatalf("Run error = %v, want ErrCompile", err)
		}

		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", stdout.String())
		}

		if !strings.Contains(stderr.String(), "^") {
			t.Errorf("stderr = %q, want caret snippet", stderr.String())
		}
	})

	t.Run("undefined", func(t *testing.T) {
		ctx, _, _ := stdio(t, "")

		r := Render{
			Input:     Input{Template: "`${GET('NUMBR_5')}`"},
			Variables: Variables{Sample: true},
		}

		err := r.Run(ctx)
		if !errors.Is(err, ErrRender) || !errors.Is(err, vars.ErrUndefined) {
			t.Fatalf("Run error = %v, want ErrRender wrapping ErrUndefined", err)
		}

		if !strings.Contains(err.Error(), "NUMBER_5") {
			t.Errorf("error %q lacks suggestion", err)
		}
	})
}
