package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUploadRejected     EventType = "upload_rejected"
	EventMalwareDetected    EventType = "malware_detected"
	EventValidationFailed   EventType = "validation_failed"
	EventPanicRecovered     EventType = "panic_recovered"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Level        string                 `json:"level"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "ip", "file", "key"
	SubjectValue string                 `json:"subject_value,omitempty"` // hashed unless it is an IP
	IP           string                 `json:"ip,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger writes audit events through zap, separate from the slog application log
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var defaultLogger *SecurityLogger

// InitSecurityLogger builds the production zap logger and installs it as the default
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	sl := NewSecurityLogger(logger, serviceName, environment)
	defaultLogger = sl
	return sl
}

// NewSecurityLogger wraps an existing zap logger
func NewSecurityLogger(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// DefaultLogger returns the default security logger instance
func DefaultLogger() *SecurityLogger {
	if defaultLogger == nil {
		return InitSecurityLogger("resume-matcher", getEnvironment())
	}
	return defaultLogger
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	severity := GetSeverity(event.Event)
	level := severity.zapLevel()
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(severity)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// LogUploadRejected records a document that failed validation. Filenames are hashed.
func (sl *SecurityLogger) LogUploadRejected(ctx context.Context, filename, requestID, reason string, size int) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventUploadRejected,
		SubjectType:  "file",
		SubjectValue: HashValue(filename),
		RequestID:    requestID,
		Details:      map[string]interface{}{"reason": reason, "size": size},
	})
}

func (sl *SecurityLogger) LogMalwareDetected(ctx context.Context, filename, requestID, scanner, threat string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventMalwareDetected,
		SubjectType:  "file",
		SubjectValue: HashValue(filename),
		RequestID:    requestID,
		Details:      map[string]interface{}{"scanner": scanner, "threat": threat},
	})
}

func (sl *SecurityLogger) LogValidationFailed(ctx context.Context, ip, requestID, endpoint string, fields []string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventValidationFailed,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint, "errors": fields},
	})
}

func (sl *SecurityLogger) LogPanicRecovered(ctx context.Context, ip, requestID, endpoint string, recovered interface{}) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventPanicRecovered,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]interface{}{"endpoint": endpoint, "panic": recovered},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

// getEnvironment determines the current environment
func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
