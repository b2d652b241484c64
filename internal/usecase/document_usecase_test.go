package usecase_test

import (
	"context"
	"strings"
	"testing"

	"go-resume-matcher/internal/domain"
	"go-resume-matcher/internal/usecase"
	"go-resume-matcher/pkg/security"
	"go-resume-matcher/pkg/security/antivirus"
	"go-resume-matcher/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type infectedScanner struct{}

func (infectedScanner) Scan(ctx context.Context, filename string, data []byte) antivirus.ScanResult {
	return antivirus.ScanResult{Infected: true, ThreatName: "Eicar-Signature", ScannerName: "test"}
}
func (infectedScanner) Name() string                       { return "test" }
func (infectedScanner) Available(ctx context.Context) bool { return true }

func newDocumentUsecase(store domain.DocumentStore, scanner antivirus.Scanner) domain.DocumentUsecase {
	secLog := security.NewSecurityLogger(zap.NewNop(), "resume-matcher", "test")
	return usecase.NewDocumentUsecase(store, scanner, secLog, 1024)
}

func TestExtractUpload(t *testing.T) {
	ctx := context.Background()
	uc := newDocumentUsecase(nil, nil)

	t.Run("Should extract a text resume", func(t *testing.T) {
		text, err := uc.ExtractUpload(ctx, "resume.txt", []byte("Experienced React developer.\n"))
		require.NoError(t, err)
		assert.Equal(t, "Experienced React developer.", text)
	})

	t.Run("Should reject oversized files", func(t *testing.T) {
		_, err := uc.ExtractUpload(ctx, "resume.txt", []byte(strings.Repeat("a", 1025)))
		assert.ErrorIs(t, err, domain.ErrDocumentTooLarge)
	})

	t.Run("Should reject unsupported extensions", func(t *testing.T) {
		_, err := uc.ExtractUpload(ctx, "resume.exe", []byte("MZ"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
	})

	t.Run("Should reject spoofed content", func(t *testing.T) {
		_, err := uc.ExtractUpload(ctx, "resume.pdf", []byte("plain text, not a pdf"))
		assert.ErrorIs(t, err, domain.ErrDocumentRejected)
	})

	t.Run("Should reject infected files", func(t *testing.T) {
		_, err := newDocumentUsecase(nil, infectedScanner{}).ExtractUpload(ctx, "resume.txt", []byte("hello resume"))
		assert.ErrorIs(t, err, domain.ErrDocumentRejected)
		assert.Contains(t, err.Error(), "malware")
	})
}

func TestExtractStored(t *testing.T) {
	ctx := context.Background()

	t.Run("Should require a configured store", func(t *testing.T) {
		_, err := newDocumentUsecase(nil, nil).ExtractStored(ctx, "resumes/cv.txt")
		assert.ErrorIs(t, err, domain.ErrStorageDisabled)
	})

	t.Run("Should fetch and extract", func(t *testing.T) {
		store := new(MockDocumentStore)
		store.On("Fetch", mock.Anything, "resumes/jane/cv.txt").Return([]byte("Go and Kubernetes"), "text/plain", nil)

		text, err := newDocumentUsecase(store, nil).ExtractStored(ctx, "resumes/jane/cv.txt")
		require.NoError(t, err)
		assert.Equal(t, "Go and Kubernetes", text)
	})

	t.Run("Should map missing objects to not found", func(t *testing.T) {
		store := new(MockDocumentStore)
		store.On("Fetch", mock.Anything, "missing.pdf").Return(nil, "", storage.ErrObjectNotFound)

		_, err := newDocumentUsecase(store, nil).ExtractStored(ctx, "missing.pdf")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
