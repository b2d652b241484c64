// Package document turns uploaded resumes and job descriptions into plain text.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	ErrUnsupported = errors.New("unsupported document format")
	ErrNoText      = errors.New("document contains no extractable text")
)

// Format is a supported input format
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// DetectFormat maps a filename to a Format by extension
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt":
		return FormatText, nil
	case ".md":
		return FormatMarkdown, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(filename))
	}
}

// Extract returns the text content of data. The result is never blank on success.
func Extract(filename string, data []byte) (string, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	case FormatHTML:
		text, err = extractHTML(data)
	default:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupported)
		}
		text = string(data)
	}
	if err != nil {
		return "", err
	}

	text = normalize(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// normalize trims each line and collapses runs of blank lines
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
