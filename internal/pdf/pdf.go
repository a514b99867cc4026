package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rsc.io/pdf"
)

// ExtractText returns the text content of a document. PDF pages are read
// with rsc.io/pdf; .txt files are passed through. The result keeps page and
// line breaks so downstream paragraph splitting still works.
func ExtractText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return Normalize(string(data)), nil
	}

	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, t := range p.Content().Text {
			sb.WriteString(strings.ReplaceAll(t.S, "\x00", ""))
		}
		sb.WriteString("\n")
	}
	return Normalize(sb.String()), nil
}

// Normalize cleans extracted text without destroying paragraph structure:
// line endings become \n, tabs become spaces, space runs collapse, but
// blank lines survive.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\t", " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}
