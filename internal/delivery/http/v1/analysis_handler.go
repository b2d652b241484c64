package v1

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"go-resume-matcher/internal/delivery/http/response"
	"go-resume-matcher/internal/domain"
	"go-resume-matcher/pkg/apperror"
	"go-resume-matcher/pkg/logger"
	"go-resume-matcher/pkg/security"
	"go-resume-matcher/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	HeaderAnalysisID = "X-Analysis-ID"
	HeaderCache      = "X-Cache"

	// multipart framing allowance on top of the two file parts
	multipartOverhead = 1 << 20
)

type AnalysisHandler struct {
	analysisUC    domain.AnalysisUsecase
	documentUC    domain.DocumentUsecase
	secLog        *security.SecurityLogger
	uploadLimiter *security.UploadLimiter // nil disables upload quotas
	maxBytes      int64
}

// NewAnalysisHandler registers the resume analysis routes. analyze receives the stricter
// rate-limited group.
func NewAnalysisHandler(public, analyze *gin.RouterGroup, analysisUC domain.AnalysisUsecase, documentUC domain.DocumentUsecase, secLog *security.SecurityLogger, uploadLimiter *security.UploadLimiter, maxBytes int64) {
	handler := &AnalysisHandler{
		analysisUC:    analysisUC,
		documentUC:    documentUC,
		secLog:        secLog,
		uploadLimiter: uploadLimiter,
		maxBytes:      maxBytes,
	}

	analyze.POST("/resume/analyze", handler.Analyze)
	analyze.POST("/resume/analyze/upload", handler.AnalyzeUpload)
	analyze.POST("/resume/analyze/stored", handler.AnalyzeStored)
	analyze.POST("/resume/keywords", handler.Keywords)

	history := public.Group("/resume/analyses")
	{
		history.GET("", handler.ListAnalyses)
		history.GET("/:id", handler.GetAnalysis)
		history.GET("/:id/export", handler.ExportAnalysis)
	}
}

// Analyze godoc
// @Summary      Score a resume against a job description
// @Description  Extracts the top job-description keywords and scores the resume for the summary, experience, skills and education sections
// @Tags         resume
// @Accept       json
// @Produce      json
// @Param        request  body      domain.AnalyzeRequest  true  "Resume and job description text"
// @Success      200      {object}  domain.AnalyzeResponse
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /resume/analyze [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logValidation(c, err)
		_ = c.Error(apperror.BadRequest(msgMissingInput))
		return
	}
	h.analyze(c, req, domain.SourceJSON)
}

// AnalyzeUpload godoc
// @Summary      Score an uploaded resume file
// @Description  Accepts a PDF, DOCX, TXT, MD or HTML resume. The job description is sent as text or as a second file.
// @Tags         resume
// @Accept       multipart/form-data
// @Produce      json
// @Param        resume              formData  file    true   "Resume document"
// @Param        jobDescription      formData  string  false  "Job description text"
// @Param        jobDescriptionFile  formData  file    false  "Job description document"
// @Success      200  {object}  domain.AnalyzeResponse
// @Failure      400  {object}  response.Response
// @Failure      413  {object}  response.Response
// @Failure      415  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /resume/analyze/upload [post]
func (h *AnalysisHandler) AnalyzeUpload(c *gin.Context) {
	if !h.allowUpload(c) {
		return
	}
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*h.maxBytes+multipartOverhead)
	}

	resumeHeader, err := c.FormFile("resume")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			_ = c.Error(apperror.TooLarge("Document exceeds the upload size limit"))
			return
		}
		_ = c.Error(apperror.BadRequest(msgMissingInput))
		return
	}

	resume, err := h.extractPart(c, resumeHeader)
	if err != nil {
		_ = c.Error(toAppError(err, msgAnalysisFailed))
		return
	}

	jobDescription := c.PostForm("jobDescription")
	if jobDescription == "" {
		if jdHeader, err := c.FormFile("jobDescriptionFile"); err == nil {
			jobDescription, err = h.extractPart(c, jdHeader)
			if err != nil {
				_ = c.Error(toAppError(err, msgAnalysisFailed))
				return
			}
		}
	}

	h.analyze(c, domain.AnalyzeRequest{Resume: resume, JobDescription: jobDescription}, domain.SourceUpload)
}

// AnalyzeStored godoc
// @Summary      Score a resume held in object storage
// @Tags         resume
// @Accept       json
// @Produce      json
// @Param        request  body      domain.StoredAnalyzeRequest  true  "Object key and job description"
// @Success      200      {object}  domain.AnalyzeResponse
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Failure      503      {object}  response.Response
// @Router       /resume/analyze/stored [post]
func (h *AnalysisHandler) AnalyzeStored(c *gin.Context) {
	var req domain.StoredAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err, msgMissingInput)
		return
	}

	resume, err := h.documentUC.ExtractStored(c.Request.Context(), req.ResumeKey)
	if err != nil {
		_ = c.Error(toAppError(err, msgAnalysisFailed))
		return
	}
	h.analyze(c, domain.AnalyzeRequest{Resume: resume, JobDescription: req.JobDescription}, domain.SourceStored)
}

// Keywords godoc
// @Summary      Extract key skills from a job description
// @Description  Returns the ranked keywords and, when a resume is sent, whether each one appears in it
// @Tags         resume
// @Accept       json
// @Produce      json
// @Param        request  body      domain.KeywordRequest  true  "Job description and optional resume"
// @Success      200      {object}  response.Response{data=domain.KeywordResponse}
// @Failure      400      {object}  response.Response
// @Router       /resume/keywords [post]
func (h *AnalysisHandler) Keywords(c *gin.Context) {
	var req domain.KeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err, "Job description is required")
		return
	}

	res, err := h.analysisUC.Keywords(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(toAppError(err, "Failed to extract keywords"))
		return
	}
	response.Success(c, http.StatusOK, "Keywords extracted", res)
}

// ListAnalyses godoc
// @Summary      List recent analyses
// @Tags         history
// @Produce      json
// @Param        limit   query     int  false  "Page size (default: 20, max: 100)"
// @Param        offset  query     int  false  "Rows to skip"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      503     {object}  response.Response
// @Router       /resume/analyses [get]
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		_ = c.Error(apperror.BadRequest("limit must be an integer"))
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		_ = c.Error(apperror.BadRequest("offset must be a non-negative integer"))
		return
	}

	records, total, err := h.analysisUC.ListAnalyses(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(toAppError(err, "Failed to list analyses"))
		return
	}

	response.Success(c, http.StatusOK, "Analyses retrieved", gin.H{
		"items":  records,
		"total":  total,
		"offset": offset,
	})
}

// GetAnalysis godoc
// @Summary      Get one stored analysis
// @Tags         history
// @Produce      json
// @Param        id   path      string  true  "Analysis ID"
// @Success      200  {object}  response.Response{data=domain.AnalysisRecord}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /resume/analyses/{id} [get]
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.analysisUC.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(toAppError(err, "Failed to load analysis"))
		return
	}
	response.Success(c, http.StatusOK, "Analysis retrieved", record)
}

// ExportAnalysis godoc
// @Summary      Download a stored analysis
// @Tags         history
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        id      path   string  true   "Analysis ID"
// @Param        format  query  string  false  "xlsx (default) or csv"
// @Success      200  {file}    file
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /resume/analyses/{id}/export [get]
func (h *AnalysisHandler) ExportAnalysis(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	if format != "xlsx" && format != "csv" {
		_ = c.Error(apperror.BadRequest("Export format must be xlsx or csv"))
		return
	}

	file, err := h.analysisUC.ExportAnalysis(c.Request.Context(), id, format)
	if err != nil {
		_ = c.Error(toAppError(err, "Failed to export analysis"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// allowUpload applies the per-IP upload quota and answers 429 when it is spent
func (h *AnalysisHandler) allowUpload(c *gin.Context) bool {
	if h.uploadLimiter == nil {
		return true
	}

	allowed, retryAfter, err := h.uploadLimiter.AllowUpload(c.Request.Context(), c.ClientIP())
	if err != nil {
		logger.Log.DebugContext(c.Request.Context(), "Upload quota check degraded", "error", err, "request_id", response.RequestID(c))
	}
	if allowed {
		return true
	}

	c.Header("Retry-After", strconv.Itoa(retryAfter))
	if h.secLog != nil {
		h.secLog.LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), response.RequestID(c), c.FullPath())
	}
	response.Abort(c, http.StatusTooManyRequests, "Upload limit exceeded. Please try again later.")
	return false
}

func (h *AnalysisHandler) analyze(c *gin.Context, req domain.AnalyzeRequest, source domain.AnalysisSource) {
	outcome, err := h.analysisUC.Analyze(c.Request.Context(), req, source)
	if err != nil {
		_ = c.Error(toAppError(err, msgAnalysisFailed))
		return
	}

	if outcome.ID != nil {
		c.Header(HeaderAnalysisID, outcome.ID.String())
	}
	if outcome.Cached {
		c.Header(HeaderCache, "HIT")
	} else {
		c.Header(HeaderCache, "MISS")
	}
	c.JSON(http.StatusOK, domain.AnalyzeResponse{Analysis: outcome.Result.Sections})
}

// extractPart reads one uploaded file, stopping one byte past the limit so the
// usecase can tell an oversized file apart
func (h *AnalysisHandler) extractPart(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", apperror.BadRequest("Could not read uploaded file")
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxBytes > 0 {
		r = io.LimitReader(f, h.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", apperror.TooLarge("Document exceeds the upload size limit")
		}
		return "", apperror.BadRequest("Could not read uploaded file")
	}
	return h.documentUC.ExtractUpload(c.Request.Context(), fh.Filename, data)
}

// bindError answers 400. A missing field gets requiredMsg; other rule failures list the fields.
func (h *AnalysisHandler) bindError(c *gin.Context, err error, requiredMsg string) {
	h.logValidation(c, err)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() != "required" {
				response.Abort(c, http.StatusBadRequest, strings.Join(validation.FormatValidationErrors(err), "; "))
				return
			}
		}
	}
	_ = c.Error(apperror.BadRequest(requiredMsg))
}

func (h *AnalysisHandler) logValidation(c *gin.Context, err error) {
	if h.secLog == nil {
		return
	}
	var fields []string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
	}
	h.secLog.LogValidationFailed(c.Request.Context(), c.ClientIP(), response.RequestID(c), c.FullPath(), fields)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperror.BadRequest("Invalid analysis ID"))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
