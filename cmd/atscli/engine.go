package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go-resume-matcher/pkg/atsscore"
	"go-resume-matcher/pkg/document"
	"go-resume-matcher/pkg/security"
)

func newEngine() (*atsscore.Engine, error) {
	if stopWordsFile == "" {
		return atsscore.NewEngine(), nil
	}
	sw, err := atsscore.LoadStopWords(stopWordsFile)
	if err != nil {
		return nil, fmt.Errorf("loading stop words: %w", err)
	}
	return atsscore.NewEngine(atsscore.WithStopWords(sw)), nil
}

// readDocument returns the plain text of a local resume or job description file
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	name := filepath.Base(path)
	if v := security.ValidateDocument(name, data); !v.Valid {
		return "", fmt.Errorf("%s: %s", name, v.Error)
	}
	text, err := document.Extract(name, data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return text, nil
}
