package security_test

import (
	"context"
	"testing"

	"go-resume-matcher/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSecurityLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sl := security.NewSecurityLogger(zap.New(core), "resume-matcher", "test")
	ctx := context.Background()

	t.Run("Should hash uploaded filenames", func(t *testing.T) {
		sl.LogUploadRejected(ctx, "jane-doe-resume.pdf", "req-1", "MIME type not allowed", 42)

		entries := logs.FilterMessage(string(security.EventUploadRejected)).All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, security.HashValue("jane-doe-resume.pdf"), fields["subject_value"])
		assert.NotContains(t, fields["subject_value"], "jane")
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("Should log malware at error level", func(t *testing.T) {
		sl.LogMalwareDetected(ctx, "cv.docx", "req-2", "clamav", "Eicar-Signature")

		entries := logs.FilterMessage(string(security.EventMalwareDetected)).All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Contains(t, entries[0].ContextMap()["details"], "Eicar-Signature")
	})

	t.Run("Should tag every event with its severity", func(t *testing.T) {
		sl.LogValidationFailed(ctx, "203.0.113.9", "req-3", "/v1/resume/keywords", []string{"JobDescription"})

		entries := logs.FilterMessage(string(security.EventValidationFailed)).All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "INFO", entries[0].ContextMap()["severity"])
	})
}

func TestGetSeverity(t *testing.T) {
	assert.Equal(t, security.SeverityCRITICAL, security.GetSeverity(security.EventMalwareDetected))
	assert.Equal(t, security.SeverityMEDIUM, security.GetSeverity(security.EventType("unknown")))
	assert.True(t, security.IsHighOrAbove(security.EventPanicRecovered))
	assert.False(t, security.IsHighOrAbove(security.EventRateLimitTriggered))
}
