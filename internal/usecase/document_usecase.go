package usecase

import (
	"context"
	"errors"
	"fmt"
	"path"

	"go-resume-matcher/internal/domain"
	"go-resume-matcher/pkg/document"
	"go-resume-matcher/pkg/logger"
	"go-resume-matcher/pkg/security"
	"go-resume-matcher/pkg/security/antivirus"
	"go-resume-matcher/pkg/storage"
)

type documentUsecase struct {
	store    domain.DocumentStore // nil disables stored analysis
	scanner  antivirus.Scanner
	secLog   *security.SecurityLogger
	maxBytes int64
}

// NewDocumentUsecase builds the upload pipeline: size check, validation, malware scan, extraction.
func NewDocumentUsecase(store domain.DocumentStore, scanner antivirus.Scanner, secLog *security.SecurityLogger, maxBytes int64) domain.DocumentUsecase {
	if scanner == nil {
		scanner = antivirus.NewNoOpScanner()
	}
	return &documentUsecase{
		store:    store,
		scanner:  scanner,
		secLog:   secLog,
		maxBytes: maxBytes,
	}
}

func (u *documentUsecase) ExtractUpload(ctx context.Context, filename string, data []byte) (string, error) {
	return u.extract(ctx, filename, data)
}

func (u *documentUsecase) ExtractStored(ctx context.Context, key string) (string, error) {
	if u.store == nil {
		return "", domain.ErrStorageDisabled
	}

	data, _, err := u.store.Fetch(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrObjectNotFound):
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, key)
		case errors.Is(err, storage.ErrObjectTooLarge):
			return "", domain.ErrDocumentTooLarge
		}
		return "", fmt.Errorf("failed to fetch resume: %w", err)
	}
	return u.extract(ctx, path.Base(key), data)
}

func (u *documentUsecase) extract(ctx context.Context, filename string, data []byte) (string, error) {
	reqID := requestID(ctx)

	if u.maxBytes > 0 && int64(len(data)) > u.maxBytes {
		u.reject(ctx, filename, "too_large", len(data))
		return "", domain.ErrDocumentTooLarge
	}

	if err := security.ValidateFileExtension(filename); err != nil {
		u.reject(ctx, filename, err.Error(), len(data))
		return "", fmt.Errorf("%w: allowed types are %v", domain.ErrUnsupportedDocument, security.GetAllowedExtensions())
	}

	if v := security.ValidateDocument(filename, data); !v.Valid {
		u.reject(ctx, filename, v.Error, len(data))
		return "", fmt.Errorf("%w: %s", domain.ErrDocumentRejected, v.Error)
	}

	scan := u.scanner.Scan(ctx, filename, data)
	if scan.Error != nil {
		logger.Log.ErrorContext(ctx, "Malware scan failed", "scanner", scan.ScannerName, "error", scan.Error, "request_id", reqID)
		return "", fmt.Errorf("%w: malware scan unavailable", domain.ErrDocumentRejected)
	}
	if scan.Infected {
		if u.secLog != nil {
			u.secLog.LogMalwareDetected(ctx, filename, reqID, scan.ScannerName, scan.ThreatName)
		}
		return "", fmt.Errorf("%w: malware detected", domain.ErrDocumentRejected)
	}

	text, err := document.Extract(filename, data)
	if err != nil {
		switch {
		case errors.Is(err, document.ErrUnsupported):
			return "", fmt.Errorf("%w: %v", domain.ErrUnsupportedDocument, err)
		case errors.Is(err, document.ErrNoText):
			return "", fmt.Errorf("%w: no extractable text", domain.ErrDocumentRejected)
		}
		logger.Log.WarnContext(ctx, "Document extraction failed", "error", err, "request_id", reqID)
		return "", fmt.Errorf("%w: could not read document", domain.ErrDocumentRejected)
	}
	return text, nil
}

func (u *documentUsecase) reject(ctx context.Context, filename, reason string, size int) {
	if u.secLog != nil {
		u.secLog.LogUploadRejected(ctx, filename, requestID(ctx), reason, size)
	}
}
