package security

import "go.uber.org/zap/zapcore"

// Severity represents the severity level of a security event.
// It is derived from EventType, never supplied by callers.
type Severity string

const (
	SeverityINFO     Severity = "INFO"
	SeverityMEDIUM   Severity = "MEDIUM"
	SeverityWARN     Severity = "WARN"
	SeverityHIGH     Severity = "HIGH"
	SeverityCRITICAL Severity = "CRITICAL"
)

// EventSeverityMap defines the hard-coded severity for each event type
var EventSeverityMap = map[EventType]Severity{
	EventValidationFailed:   SeverityINFO,
	EventRateLimitTriggered: SeverityWARN,
	EventUploadRejected:     SeverityWARN,
	EventPanicRecovered:     SeverityHIGH,
	EventMalwareDetected:    SeverityCRITICAL,
}

// GetSeverity returns the severity for an event type.
// Unmapped types default to MEDIUM.
func GetSeverity(eventType EventType) Severity {
	if severity, ok := EventSeverityMap[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

// IsHighOrAbove returns true if the event is HIGH or CRITICAL severity
func IsHighOrAbove(eventType EventType) bool {
	severity := GetSeverity(eventType)
	return severity == SeverityHIGH || severity == SeverityCRITICAL
}

// zapLevel maps a severity to the zap level it is written at
func (s Severity) zapLevel() zapcore.Level {
	switch s {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH, SeverityCRITICAL:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
