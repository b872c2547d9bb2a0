package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/at-ishikawa/outliner/internal/outline"
	"github.com/at-ishikawa/outliner/internal/pdf"
)

// PDFFont returns the core PDF font for the family.
func (f FontFamily) PDFFont() string {
	switch f {
	case FontSerif:
		return pdf.FontTimes
	case FontMono:
		return pdf.FontCourier
	default:
		return pdf.FontHelvetica
	}
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// FileName returns a file name without extension for an exported note.
func FileName(title, noteID string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if name == "" {
		return noteID
	}
	return name
}

// WriteMarkdown writes the markdown rendering into dir and returns the file path.
func WriteMarkdown(f outline.Forest, opts Options, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}
	path := filepath.Join(dir, name+".md")
	if err := os.WriteFile(path, []byte(Markdown(f, opts)), 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return path, nil
}

// PDF writes the markdown rendering into dir and converts it next to it. It returns the
// absolute path of the PDF file.
func PDF(f outline.Forest, opts Options, dir, name string) (string, error) {
	markdownPath, err := WriteMarkdown(f, opts, dir, name)
	if err != nil {
		return "", err
	}
	pdfPath, err := pdf.ConvertMarkdownToPDF(markdownPath, opts.Font.PDFFont())
	if err != nil {
		return "", fmt.Errorf("pdf.ConvertMarkdownToPDF(%s) > %w", markdownPath, err)
	}
	return pdfPath, nil
}
