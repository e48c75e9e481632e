package repl

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistoryPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load of missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"`${GET('A')}`", modeEval},
		{"vars", modeCtrl},
		{"`${GET('A')}`", modeEval}, // moves to the end
		{"  ", modeEval},            // ignored
		{"vars", modeEval},          // same line, other mode
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	want := []HistoryEntry{
		{"vars", modeCtrl},
		{"`${GET('A')}`", modeEval},
		{"vars", modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Fatalf("Entries = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "C:vars\nE:`${GET('A')}`\nE:vars\n" {
		t.Errorf("file = %q", got)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded = %v, want %v", got, want)
	}

	if _, err := reloaded.Entry(3); err != ErrOutOfBounds {
		t.Errorf("Entry(3) error = %v, want ErrOutOfBounds", err)
	}
}

func TestHistoryLegacyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	if err := os.WriteFile(path, []byte("plain\nC:quit\n\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{{"plain", modeEval}, {"quit", modeCtrl}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries = %v, want %v", got, want)
	}
}

func TestHistoryLimit(t *testing.T) {
	h := NewHistory("")

	for i := range maxHistory + 5 {
		if err := h.Add(string(rune('a'+i%26))+string(rune('0'+i/26%10))+string(rune('A'+i/260)), modeEval); err != nil {
			t.Fatal(err)
		}
	}

	if h.Len() != maxHistory {
		t.Errorf("Len = %d, want %d", h.Len(), maxHistory)
	}
}
