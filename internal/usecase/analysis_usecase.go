package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go-resume-matcher/internal/domain"
	"go-resume-matcher/pkg/atsscore"
	"go-resume-matcher/pkg/export"
	"go-resume-matcher/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	sideEffectTimeout = 5 * time.Second
)

// Scorer is the keyword engine as seen by the usecase
type Scorer interface {
	Analyze(resume, jobDescription string) atsscore.Result
	KeywordCounts(text string) []atsscore.KeywordCount
}

type analysisUsecase struct {
	engine    Scorer
	repo      domain.AnalysisRepository // nil disables history
	cache     domain.AnalysisCache      // nil disables caching
	publisher domain.AnalysisPublisher  // nil disables events
}

// NewAnalysisUsecase wires the engine with its optional collaborators. Any of repo, cache
// and publisher may be nil.
func NewAnalysisUsecase(engine Scorer, repo domain.AnalysisRepository, cache domain.AnalysisCache, publisher domain.AnalysisPublisher) domain.AnalysisUsecase {
	return &analysisUsecase{
		engine:    engine,
		repo:      repo,
		cache:     cache,
		publisher: publisher,
	}
}

// CacheKey is the hex sha256 of resume, a NUL separator and the job description
func CacheKey(resume, jobDescription string) string {
	h := sha256.New()
	h.Write([]byte(resume))
	h.Write([]byte{0})
	h.Write([]byte(jobDescription))
	return hex.EncodeToString(h.Sum(nil))
}

func hashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (u *analysisUsecase) Analyze(ctx context.Context, req domain.AnalyzeRequest, source domain.AnalysisSource) (*domain.AnalysisOutcome, error) {
	if req.Resume == "" || req.JobDescription == "" {
		return nil, domain.ErrMissingInput
	}

	key := CacheKey(req.Resume, req.JobDescription)
	if u.cache != nil {
		if cached, ok := u.cache.Get(ctx, key); ok {
			return &domain.AnalysisOutcome{Result: *cached, Cached: true}, nil
		}
	}

	result, err := u.score(ctx, req.Resume, req.JobDescription)
	if err != nil {
		return nil, err
	}

	outcome := &domain.AnalysisOutcome{Result: result}
	record := &domain.AnalysisRecord{
		ID:                 uuid.New(),
		ResumeHash:         hashText(req.Resume),
		JobDescriptionHash: hashText(req.JobDescription),
		Keywords:           result.Keywords,
		Sections:           result.Sections,
		OverallScore:       result.OverallScore(),
		Source:             source,
		CreatedAt:          time.Now().UTC(),
	}
	if u.saveSideEffects(ctx, key, record, result) {
		id := record.ID
		outcome.ID = &id
	}
	return outcome, nil
}

// score runs the engine, turning a panic into ErrAnalysisFailed
func (u *analysisUsecase) score(ctx context.Context, resume, jobDescription string) (result atsscore.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.ErrorContext(ctx, "Analysis panicked", "panic", r, "request_id", requestID(ctx))
			err = fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, r)
		}
	}()
	return u.engine.Analyze(resume, jobDescription), nil
}

// saveSideEffects persists the record, then caches and publishes concurrently. The event
// carries the record id only when the save succeeded. Failures are logged and never reach
// the caller. It reports whether the record was persisted.
func (u *analysisUsecase) saveSideEffects(ctx context.Context, key string, record *domain.AnalysisRecord, result atsscore.Result) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	reqID := requestID(ctx)
	saved := false
	if u.repo != nil {
		if err := u.repo.Save(ctx, record); err != nil {
			logger.Log.ErrorContext(ctx, "Failed to save analysis", "error", err, "request_id", reqID)
		} else {
			saved = true
		}
	}

	var g errgroup.Group
	if u.cache != nil {
		g.Go(func() error {
			if err := u.cache.Set(ctx, key, result); err != nil {
				logger.Log.WarnContext(ctx, "Failed to cache analysis", "error", err, "request_id", reqID)
			}
			return nil
		})
	}
	if u.publisher != nil {
		g.Go(func() error {
			if err := u.publisher.Publish(ctx, completedEvent(record, reqID, saved)); err != nil {
				logger.Log.WarnContext(ctx, "Failed to publish analysis event", "error", err, "request_id", reqID)
			}
			return nil
		})
	}
	_ = g.Wait()
	return saved
}

func completedEvent(record *domain.AnalysisRecord, reqID string, withID bool) domain.AnalysisCompletedEvent {
	scores := make(map[string]int, len(record.Sections))
	for _, s := range record.Sections {
		scores[s.Section.String()] = s.ATSScore
	}
	event := domain.AnalysisCompletedEvent{
		RequestID:    reqID,
		Source:       record.Source,
		OverallScore: record.OverallScore,
		Scores:       scores,
		KeywordCount: len(record.Keywords),
		OccurredAt:   record.CreatedAt,
	}
	if withID {
		event.ID = record.ID.String()
	}
	return event
}

func (u *analysisUsecase) Keywords(ctx context.Context, req domain.KeywordRequest) (*domain.KeywordResponse, error) {
	if strings.TrimSpace(req.JobDescription) == "" {
		return nil, domain.ErrMissingInput
	}

	counts := u.engine.KeywordCounts(req.JobDescription)
	resumeLower := strings.ToLower(req.Resume)

	insights := make([]domain.KeywordInsight, 0, len(counts))
	for _, kc := range counts {
		insight := domain.KeywordInsight{Keyword: kc.Keyword, Count: kc.Count}
		if req.Resume != "" {
			found := strings.Contains(resumeLower, kc.Keyword)
			insight.InResume = &found
		}
		insights = append(insights, insight)
	}
	return &domain.KeywordResponse{Keywords: insights}, nil
}

func (u *analysisUsecase) GetAnalysis(ctx context.Context, id uuid.UUID) (*domain.AnalysisRecord, error) {
	if u.repo == nil {
		return nil, domain.ErrStorageDisabled
	}
	return u.repo.GetByID(ctx, id)
}

func (u *analysisUsecase) ListAnalyses(ctx context.Context, limit, offset int) ([]domain.AnalysisRecord, int64, error) {
	if u.repo == nil {
		return nil, 0, domain.ErrStorageDisabled
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return u.repo.ListRecent(ctx, limit, offset)
}

func (u *analysisUsecase) ExportAnalysis(ctx context.Context, id uuid.UUID, format string) (*domain.ExportFile, error) {
	record, err := u.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}

	data, contentType, filename, err := export.Render(format, export.Report{
		ID:           record.ID.String(),
		CreatedAt:    record.CreatedAt,
		OverallScore: record.OverallScore,
		Keywords:     record.Keywords,
		Sections:     record.Sections,
	})
	if err != nil {
		return nil, err
	}
	return &domain.ExportFile{Filename: filename, ContentType: contentType, Data: data}, nil
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(domain.KeyRequestID).(string); ok {
		return id
	}
	return ""
}
