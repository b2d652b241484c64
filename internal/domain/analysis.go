package domain

import (
	"context"
	"errors"
	"time"

	"go-resume-matcher/pkg/atsscore"

	"github.com/google/uuid"
)

// ============================================================================
// Errors
// ============================================================================

var (
	ErrNotFound            = errors.New("analysis not found")
	ErrMissingInput        = errors.New("resume and job description are required")
	ErrAnalysisFailed      = errors.New("failed to analyze resume")
	ErrStorageDisabled     = errors.New("storage is not configured")
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrDocumentRejected    = errors.New("document rejected")
	ErrDocumentTooLarge    = errors.New("document too large")
)

// ============================================================================
// Requests / Responses
// ============================================================================

// AnalyzeRequest is the body of POST /resume/analyze
type AnalyzeRequest struct {
	Resume         string `json:"resume" binding:"required"`
	JobDescription string `json:"jobDescription" binding:"required"`
}

// AnalyzeResponse is the success body of every analyze endpoint
type AnalyzeResponse struct {
	Analysis []atsscore.SectionAnalysis `json:"analysis"`
}

// StoredAnalyzeRequest analyzes a resume already uploaded to object storage
type StoredAnalyzeRequest struct {
	ResumeKey      string `json:"resumeKey" binding:"required,object_key"`
	JobDescription string `json:"jobDescription" binding:"required"`
}

type KeywordRequest struct {
	JobDescription string `json:"jobDescription" binding:"required,notblank"`
	Resume         string `json:"resume,omitempty"`
}

// KeywordInsight is one extracted keyword. InResume is nil when no resume was sent.
type KeywordInsight struct {
	Keyword  string `json:"keyword"`
	Count    int    `json:"count"`
	InResume *bool  `json:"inResume,omitempty"`
}

type KeywordResponse struct {
	Keywords []KeywordInsight `json:"keywords"`
}

// ============================================================================
// Persisted history
// ============================================================================

type AnalysisSource string

const (
	SourceJSON   AnalysisSource = "json"
	SourceUpload AnalysisSource = "upload"
	SourceStored AnalysisSource = "stored"
)

// AnalysisRecord is the stored summary of an analysis. Raw resume text is never kept.
type AnalysisRecord struct {
	ID                 uuid.UUID                  `json:"id"`
	ResumeHash         string                     `json:"resumeHash"`
	JobDescriptionHash string                     `json:"jobDescriptionHash"`
	Keywords           []string                   `json:"keywords"`
	Sections           []atsscore.SectionAnalysis `json:"analysis"`
	OverallScore       int                        `json:"overallScore"`
	Source             AnalysisSource             `json:"source"`
	CreatedAt          time.Time                  `json:"createdAt"`
}

// AnalysisOutcome is what the analysis usecase hands back to delivery
type AnalysisOutcome struct {
	ID     *uuid.UUID
	Result atsscore.Result
	Cached bool
}

// AnalysisCompletedEvent is published after every fresh analysis
type AnalysisCompletedEvent struct {
	ID           string         `json:"id,omitempty"`
	RequestID    string         `json:"requestId,omitempty"`
	Source       AnalysisSource `json:"source"`
	OverallScore int            `json:"overallScore"`
	Scores       map[string]int `json:"scores"`
	KeywordCount int            `json:"keywordCount"`
	OccurredAt   time.Time      `json:"occurredAt"`
}

// ============================================================================
// Ports
// ============================================================================

type AnalysisRepository interface {
	Save(ctx context.Context, record *AnalysisRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*AnalysisRecord, error)
	ListRecent(ctx context.Context, limit, offset int) ([]AnalysisRecord, int64, error)
}

// AnalysisCache stores engine results keyed by an input digest
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*atsscore.Result, bool)
	Set(ctx context.Context, key string, result atsscore.Result) error
}

type AnalysisPublisher interface {
	Publish(ctx context.Context, event AnalysisCompletedEvent) error
}

// DocumentStore reads uploaded resumes from object storage
type DocumentStore interface {
	Fetch(ctx context.Context, key string) ([]byte, string, error)
}

// ExportFile is a rendered download
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type AnalysisUsecase interface {
	Analyze(ctx context.Context, req AnalyzeRequest, source AnalysisSource) (*AnalysisOutcome, error)
	Keywords(ctx context.Context, req KeywordRequest) (*KeywordResponse, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*AnalysisRecord, error)
	ListAnalyses(ctx context.Context, limit, offset int) ([]AnalysisRecord, int64, error)
	ExportAnalysis(ctx context.Context, id uuid.UUID, format string) (*ExportFile, error)
}

type DocumentUsecase interface {
	ExtractUpload(ctx context.Context, filename string, data []byte) (string, error)
	ExtractStored(ctx context.Context, key string) (string, error)
}

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}
