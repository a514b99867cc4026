package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeKeepsParagraphBreaks(t *testing.T) {
	in := "first  paragraph\twith   tabs\r\n\r\nsecond\rparagraph"
	got := Normalize(in)
	want := "first paragraph with tabs\n\nsecond\nparagraph"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeStripsNulBytes(t *testing.T) {
	got := Normalize("Arti\x00cle 5")
	if strings.Contains(got, "\x00") {
		t.Errorf("Normalize() = %q, still contains NUL", got)
	}
}

func TestExtractTextPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("Chapter I\r\n\r\nArticle 1 text"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText() error: %v", err)
	}
	if got != "Chapter I\n\nArticle 1 text" {
		t.Errorf("ExtractText() = %q", got)
	}
}

func TestExtractTextMissingFile(t *testing.T) {
	if _, err := ExtractText(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("ExtractText() on missing file succeeded, want error")
	}
}
