package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Normalized file extension
	DetectedMIME string // MIME type sniffed from content, without parameters
	Error        string // Error message if validation failed
}

var ErrExtensionNotAllowed = errors.New("file extension not allowed")

// Magic byte signatures for binary document types
var magicBytes = map[string][][]byte{
	".pdf":  {{0x25, 0x50, 0x44, 0x46}}, // %PDF
	".docx": {{0x50, 0x4B, 0x03, 0x04}}, // ZIP (PK..)
}

// MIME types accepted for each extension. Never includes application/octet-stream.
var allowedMIMETypes = map[string]map[string]bool{
	".pdf": {"application/pdf": true},
	".docx": {
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		"application/zip": true,
	},
	".txt":  {"text/plain": true},
	".md":   {"text/plain": true},
	".html": {"text/html": true, "text/plain": true},
	".htm":  {"text/html": true, "text/plain": true},
}

// DetectMIME sniffs content and strips parameters such as charset
func DetectMIME(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}

// ValidateDocument performs 3-layer validation of a resume or job description file:
// 1. Extension whitelist check
// 2. Magic byte verification for binary formats
// 3. Sniffed MIME type must match the extension
func ValidateDocument(filename string, data []byte) FileValidationResult {
	result := FileValidationResult{}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	// Layer 1: Extension whitelist
	mimes, ok := allowedMIMETypes[ext]
	if !ok {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if len(data) == 0 {
		result.Error = "file is empty"
		return result
	}

	// Layer 2: Magic bytes
	if sigs, binary := magicBytes[ext]; binary {
		if !hasPrefix(data, sigs) {
			result.Error = "file content does not match extension"
			return result
		}
	} else if !utf8.Valid(data) {
		result.Error = "text file is not valid UTF-8"
		return result
	}

	// Layer 3: MIME whitelist
	result.DetectedMIME = DetectMIME(data)
	if !mimes[result.DetectedMIME] {
		result.Error = "MIME type not allowed: " + result.DetectedMIME
		return result
	}

	result.Valid = true
	return result
}

func hasPrefix(data []byte, signatures [][]byte) bool {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// ValidateFileExtension checks only the extension (for quick pre-validation)
func ValidateFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedMIMETypes[ext]; !ok {
		return ErrExtensionNotAllowed
	}
	return nil
}

// GetAllowedExtensions returns the sorted extension whitelist for error messages
func GetAllowedExtensions() []string {
	extensions := make([]string, 0, len(allowedMIMETypes))
	for ext := range allowedMIMETypes {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
