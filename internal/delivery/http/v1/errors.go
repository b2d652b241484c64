package v1

import (
	"errors"
	"net/http"

	"go-resume-matcher/internal/domain"
	"go-resume-matcher/pkg/apperror"
	"go-resume-matcher/pkg/export"
)

const (
	msgMissingInput   = "Resume and job description are required"
	msgAnalysisFailed = "Failed to analyze resume"
)

// toAppError maps usecase errors to client-facing errors. fallback is used for anything
// unrecognised so internal detail never leaks.
func toAppError(err error, fallback string) *apperror.AppError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrMissingInput):
		return apperror.BadRequest(msgMissingInput)
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound("Not found")
	case errors.Is(err, domain.ErrStorageDisabled):
		return apperror.Unavailable("Storage is not configured", err)
	case errors.Is(err, domain.ErrDocumentTooLarge):
		return apperror.TooLarge("Document exceeds the upload size limit")
	case errors.Is(err, domain.ErrUnsupportedDocument):
		return apperror.UnsupportedMedia(err.Error())
	case errors.Is(err, domain.ErrDocumentRejected):
		return apperror.Unprocessable(err.Error(), err)
	case errors.Is(err, export.ErrUnsupportedFormat):
		return apperror.BadRequest("Export format must be xlsx or csv")
	}
	return apperror.New(http.StatusInternalServerError, fallback, err)
}
