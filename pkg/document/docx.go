package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return wordXMLText(doc.Editable().GetContent())
}

// wordXMLText pulls run text out of word/document.xml. Paragraphs and
// breaks become newlines, tabs become spaces.
func wordXMLText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse docx xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString(" ")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
