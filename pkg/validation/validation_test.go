package validation_test

import (
	"errors"
	"testing"

	"go-resume-matcher/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type keyedRequest struct {
	ResumeKey      string `validate:"required,object_key"`
	JobDescription string `validate:"required,notblank"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

func TestObjectKey(t *testing.T) {
	v := newValidator()
	tests := []struct {
		key   string
		valid bool
	}{
		{"resumes/2024/jane-doe.pdf", true},
		{"cv_final.docx", true},
		{"../etc/passwd", false},
		{"resumes/./cv.pdf", false},
		{"/absolute.pdf", false},
		{"resumes//cv.pdf", false},
		{"space in name.pdf", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := v.Struct(keyedRequest{ResumeKey: tt.key, JobDescription: "Go developer"})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	v := newValidator()

	t.Run("Should describe each failed field", func(t *testing.T) {
		err := v.Struct(keyedRequest{ResumeKey: "", JobDescription: "   "})
		msgs := validation.FormatValidationErrors(err)
		assert.Equal(t, []string{
			"Resume key: is required",
			"Job description: must not be blank",
		}, msgs)
	})

	t.Run("Should pass through other errors", func(t *testing.T) {
		assert.Equal(t, []string{"boom"}, validation.FormatValidationErrors(errors.New("boom")))
	})
}
