package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-resume-matcher/config"
	v1 "go-resume-matcher/internal/delivery/http/v1"
	"go-resume-matcher/internal/domain"
	"go-resume-matcher/internal/usecase"
	"go-resume-matcher/pkg/atsscore"
	"go-resume-matcher/pkg/security"
	"go-resume-matcher/pkg/security/antivirus"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	sampleJD     = "We need a developer skilled in React and TypeScript with strong Communication."
	sampleResume = "Experienced React developer. Strong Communication skills."
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockAnalysisUsecase struct {
	mock.Mock
}

func (m *MockAnalysisUsecase) Analyze(ctx context.Context, req domain.AnalyzeRequest, source domain.AnalysisSource) (*domain.AnalysisOutcome, error) {
	args := m.Called(ctx, req, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisOutcome), args.Error(1)
}

func (m *MockAnalysisUsecase) Keywords(ctx context.Context, req domain.KeywordRequest) (*domain.KeywordResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KeywordResponse), args.Error(1)
}

func (m *MockAnalysisUsecase) GetAnalysis(ctx context.Context, id uuid.UUID) (*domain.AnalysisRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisRecord), args.Error(1)
}

func (m *MockAnalysisUsecase) ListAnalyses(ctx context.Context, limit, offset int) ([]domain.AnalysisRecord, int64, error) {
	args := m.Called(ctx, limit, offset)
	records, _ := args.Get(0).([]domain.AnalysisRecord)
	return records, args.Get(1).(int64), args.Error(2)
}

func (m *MockAnalysisUsecase) ExportAnalysis(ctx context.Context, id uuid.UUID, format string) (*domain.ExportFile, error) {
	args := m.Called(ctx, id, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportFile), args.Error(1)
}

type panickingScorer struct{}

func (panickingScorer) Analyze(resume, jobDescription string) atsscore.Result { panic("boom") }
func (panickingScorer) KeywordCounts(text string) []atsscore.KeywordCount  { panic("boom") }

func testConfig() *config.Config {
	return &config.Config{
		RateLimitWindowSeconds:    60,
		RateLimitGlobalThreshold:  1000,
		RateLimitAnalyzeThreshold: 1000,
		MaxUploadBytes:            1 << 20,
		AllowedOrigins:            []string{"*"},
	}
}

func newRouter(analysisUC domain.AnalysisUsecase) *gin.Engine {
	secLog := security.NewSecurityLogger(zap.NewNop(), "resume-matcher", "test")
	documentUC := usecase.NewDocumentUsecase(nil, antivirus.NewNoOpScanner(), secLog, 1<<20)
	return v1.NewRouter(v1.RouterDeps{
		AnalysisUC:     analysisUC,
		DocumentUC:     documentUC,
		HealthUC:       usecase.NewHealthUsecase(map[string]usecase.Pinger{"redis": nil, "database": nil}),
		SecurityLogger: secLog,
		Config:         testConfig(),
	})
}

func realUsecase() domain.AnalysisUsecase {
	return usecase.NewAnalysisUsecase(atsscore.NewEngine(), nil, nil, nil)
}

func postJSON(r http.Handler, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorField(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestAnalyze(t *testing.T) {
	r := newRouter(realUsecase())

	t.Run("Should score every section of the sample", func(t *testing.T) {
		payload, _ := json.Marshal(domain.AnalyzeRequest{Resume: sampleResume, JobDescription: sampleJD})
		w := postJSON(r, "/v1/resume/analyze", string(payload))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "MISS", w.Header().Get(v1.HeaderCache))
		assert.Empty(t, w.Header().Get(v1.HeaderAnalysisID))

		var res domain.AnalyzeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Len(t, res.Analysis, 4)
		for _, s := range res.Analysis {
			assert.Equal(t, 57, s.ATSScore)
			assert.Equal(t, []string{"developer", "react", "strong", "communication"}, s.Matches)
			assert.Equal(t, []string{"need", "skilled", "typescript"}, s.Missing)
			assert.Len(t, s.Suggestions, 3)
			assert.NotNil(t, s.WeakItems)
			assert.Empty(t, s.WeakItems)
		}
		assert.Contains(t, w.Body.String(), `"weakItems":[]`)
	})

	t.Run("Should reject missing fields", func(t *testing.T) {
		for _, body := range []string{
			`{"resume":"x"}`,
			`{"jobDescription":"x"}`,
			`{"resume":"","jobDescription":"x"}`,
			`not json`,
		} {
			w := postJSON(r, "/v1/resume/analyze", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			assert.Equal(t, "Resume and job description are required", errorField(t, w), body)
		}
	})

	t.Run("Should accept whitespace-only text", func(t *testing.T) {
		w := postJSON(r, "/v1/resume/analyze", `{"resume":"   ","jobDescription":"   "}`)
		require.Equal(t, http.StatusOK, w.Code)

		var res domain.AnalyzeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		for _, s := range res.Analysis {
			assert.Equal(t, 0, s.ATSScore)
			assert.Empty(t, s.Matches)
		}
	})

	t.Run("Should hide engine panics behind the analyze message", func(t *testing.T) {
		pr := newRouter(usecase.NewAnalysisUsecase(panickingScorer{}, nil, nil, nil))
		w := postJSON(pr, "/v1/resume/analyze", `{"resume":"a","jobDescription":"b"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to analyze resume", errorField(t, w))
		assert.NotContains(t, w.Body.String(), "boom")
	})

	t.Run("Should report persisted and cached results in headers", func(t *testing.T) {
		uc := new(MockAnalysisUsecase)
		id := uuid.New()
		uc.On("Analyze", mock.Anything, mock.Anything, domain.SourceJSON).
			Return(&domain.AnalysisOutcome{ID: &id, Cached: true, Result: atsscore.Result{Sections: []atsscore.SectionAnalysis{}}}, nil)

		w := postJSON(newRouter(uc), "/v1/resume/analyze", `{"resume":"a","jobDescription":"b"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id.String(), w.Header().Get(v1.HeaderAnalysisID))
		assert.Equal(t, "HIT", w.Header().Get(v1.HeaderCache))
	})

	t.Run("Should map unexpected errors to the analyze message", func(t *testing.T) {
		uc := new(MockAnalysisUsecase)
		uc.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db exploded"))

		w := postJSON(newRouter(uc), "/v1/resume/analyze", `{"resume":"a","jobDescription":"b"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to analyze resume", errorField(t, w))
	})
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, f := range files {
		part, err := mw.CreateFormFile(field, f[0])
		require.NoError(t, err)
		_, err = part.Write([]byte(f[1]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestAnalyzeUpload(t *testing.T) {
	r := newRouter(realUsecase())

	send := func(body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/resume/analyze/upload", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("Should analyze a text resume with a text job description", func(t *testing.T) {
		body, ct := multipartBody(t,
			map[string]string{"jobDescription": sampleJD},
			map[string][2]string{"resume": {"resume.txt", sampleResume}},
		)
		w := send(body, ct)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res domain.AnalyzeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, 57, res.Analysis[0].ATSScore)
	})

	t.Run("Should read the job description from a file", func(t *testing.T) {
		body, ct := multipartBody(t, nil, map[string][2]string{
			"resume":             {"resume.md", sampleResume},
			"jobDescriptionFile": {"jd.txt", sampleJD},
		})
		w := send(body, ct)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("Should require the job description", func(t *testing.T) {
		body, ct := multipartBody(t, nil, map[string][2]string{"resume": {"resume.txt", sampleResume}})
		w := send(body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Resume and job description are required", errorField(t, w))
	})

	t.Run("Should reject disallowed extensions", func(t *testing.T) {
		body, ct := multipartBody(t,
			map[string]string{"jobDescription": sampleJD},
			map[string][2]string{"resume": {"resume.exe", "MZ"}},
		)
		w := send(body, ct)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("Should reject a fake PDF", func(t *testing.T) {
		body, ct := multipartBody(t,
			map[string]string{"jobDescription": sampleJD},
			map[string][2]string{"resume": {"resume.pdf", "plain text pretending"}},
		)
		w := send(body, ct)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestUploadQuota(t *testing.T) {
	broken := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer broken.Close()

	secLog := security.NewSecurityLogger(zap.NewNop(), "resume-matcher", "test")
	r := v1.NewRouter(v1.RouterDeps{
		AnalysisUC:     realUsecase(),
		DocumentUC:     usecase.NewDocumentUsecase(nil, antivirus.NewNoOpScanner(), secLog, 1<<20),
		SecurityLogger: secLog,
		UploadLimiter:  security.NewUploadLimiter(1, 1).WithClient(func() *goredis.Client { return broken }),
		Config:         testConfig(),
	})

	body, ct := multipartBody(t,
		map[string]string{"jobDescription": sampleJD},
		map[string][2]string{"resume": {"resume.txt", sampleResume}},
	)
	req := httptest.NewRequest(http.MethodPost, "/v1/resume/analyze/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestAnalyzeStored(t *testing.T) {
	r := newRouter(realUsecase())

	t.Run("Should report storage as unavailable when not configured", func(t *testing.T) {
		w := postJSON(r, "/v1/resume/analyze/stored", `{"resumeKey":"resumes/a.pdf","jobDescription":"x"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Should reject traversal keys", func(t *testing.T) {
		w := postJSON(r, "/v1/resume/analyze/stored", `{"resumeKey":"../etc/passwd","jobDescription":"x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorField(t, w), "Resume key")
	})
}

func TestKeywords(t *testing.T) {
	r := newRouter(realUsecase())

	t.Run("Should rank keywords and flag resume presence", func(t *testing.T) {
		w := postJSON(r, "/v1/resume/keywords", `{"jobDescription":"golang golang kubernetes","resume":"I write Golang"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data domain.KeywordResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data.Keywords, 2)
		assert.Equal(t, "golang", body.Data.Keywords[0].Keyword)
		assert.Equal(t, 2, body.Data.Keywords[0].Count)
		require.NotNil(t, body.Data.Keywords[0].InResume)
		assert.True(t, *body.Data.Keywords[0].InResume)
		assert.False(t, *body.Data.Keywords[1].InResume)
	})

	t.Run("Should reject a blank job description", func(t *testing.T) {
		w := postJSON(r, "/v1/resume/keywords", `{"jobDescription":"   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHistory(t *testing.T) {
	get := func(r http.Handler, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("Should return 503 without a database", func(t *testing.T) {
		w := get(newRouter(realUsecase()), "/v1/resume/analyses")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Should pass paging to the usecase", func(t *testing.T) {
		uc := new(MockAnalysisUsecase)
		uc.On("ListAnalyses", mock.Anything, 5, 10).Return([]domain.AnalysisRecord{}, int64(0), nil)

		w := get(newRouter(uc), "/v1/resume/analyses?limit=5&offset=10")
		assert.Equal(t, http.StatusOK, w.Code)
		uc.AssertExpectations(t)
	})

	t.Run("Should reject bad ids", func(t *testing.T) {
		w := get(newRouter(realUsecase()), "/v1/resume/analyses/not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should map missing analyses to 404", func(t *testing.T) {
		uc := new(MockAnalysisUsecase)
		id := uuid.New()
		uc.On("GetAnalysis", mock.Anything, id).Return(nil, domain.ErrNotFound)

		w := get(newRouter(uc), "/v1/resume/analyses/"+id.String())
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Not found", errorField(t, w))
	})

	t.Run("Should send exports as attachments", func(t *testing.T) {
		uc := new(MockAnalysisUsecase)
		id := uuid.New()
		uc.On("ExportAnalysis", mock.Anything, id, "csv").Return(&domain.ExportFile{
			Filename:    "resume_analysis_20260101_000000.csv",
			ContentType: "text/csv; charset=utf-8",
			Data:        []byte("SECTION\n"),
		}, nil)

		w := get(newRouter(uc), "/v1/resume/analyses/"+id.String()+"/export?format=csv")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `attachment; filename="resume_analysis_20260101_000000.csv"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "SECTION\n", w.Body.String())
	})

	t.Run("Should reject unknown export formats", func(t *testing.T) {
		w := get(newRouter(new(MockAnalysisUsecase)), "/v1/resume/analyses/"+uuid.New().String()+"/export?format=pdf")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(realUsecase()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Data["status"])
	assert.Equal(t, "disabled", body.Data["redis"])
}
