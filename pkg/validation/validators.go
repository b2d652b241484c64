package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Object keys: path segments of letters, digits and . _ - separated by /
	objectKeyRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+(/[A-Za-z0-9._-]+)*$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("notblank", NotBlank)
	_ = v.RegisterValidation("object_key", ObjectKey)
}

// NotBlank rejects strings made only of whitespace
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimFunc(fl.Field().String(), unicode.IsSpace) != ""
}

// ObjectKey validates a storage key. Traversal segments and absolute paths are rejected.
func ObjectKey(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	if len(val) > 512 || !objectKeyRegex.MatchString(val) {
		return false
	}
	for _, seg := range strings.Split(val, "/") {
		if seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
