package document_test

import (
	"testing"

	"go-resume-matcher/pkg/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	t.Run("Should return plain text normalized", func(t *testing.T) {
		text, err := document.Extract("resume.txt", []byte("  Jane   Doe \r\n\r\n\r\nGo developer\n"))
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe\n\nGo developer", text)
	})

	t.Run("Should keep markdown as text", func(t *testing.T) {
		text, err := document.Extract("resume.md", []byte("# Skills\n- React\n- TypeScript\n"))
		require.NoError(t, err)
		assert.Equal(t, "# Skills\n- React\n- TypeScript", text)
	})

	t.Run("Should drop scripts and styles from html", func(t *testing.T) {
		page := `<html><head><title>Job</title><style>p{color:red}</style></head>
<body><h1>Senior Engineer</h1><script>alert("x")</script><p>Kubernetes &amp; Terraform</p></body></html>`
		text, err := document.Extract("jd.HTML", []byte(page))
		require.NoError(t, err)
		assert.Contains(t, text, "Senior Engineer")
		assert.Contains(t, text, "Kubernetes & Terraform")
		assert.NotContains(t, text, "alert")
		assert.NotContains(t, text, "color")
		assert.NotContains(t, text, "Job")
	})

	t.Run("Should reject unknown extensions", func(t *testing.T) {
		_, err := document.Extract("resume.odt", []byte("text"))
		assert.ErrorIs(t, err, document.ErrUnsupported)
	})

	t.Run("Should reject blank documents", func(t *testing.T) {
		_, err := document.Extract("resume.txt", []byte(" \n\t\n"))
		assert.ErrorIs(t, err, document.ErrNoText)
	})

	t.Run("Should fail on a corrupt pdf", func(t *testing.T) {
		_, err := document.Extract("resume.pdf", []byte("%PDF-1.4 truncated"))
		assert.Error(t, err)
	})

	t.Run("Should fail on a corrupt docx", func(t *testing.T) {
		_, err := document.Extract("resume.docx", []byte("PK\x03\x04 truncated"))
		assert.Error(t, err)
	})
}

func TestDetectFormat(t *testing.T) {
	for name, want := range map[string]document.Format{
		"a.pdf":  document.FormatPDF,
		"a.DOCX": document.FormatDOCX,
		"a.txt":  document.FormatText,
		"a.md":   document.FormatMarkdown,
		"a.htm":  document.FormatHTML,
	} {
		got, err := document.DetectFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}
