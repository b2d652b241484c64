package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
