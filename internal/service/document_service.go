package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bidrecon/internal/config"
	"bidrecon/internal/domain"
	"bidrecon/internal/extractor"
	"bidrecon/internal/port"
)

// DocumentUploadInput is the DTO for document upload requests.
type DocumentUploadInput struct {
	SessionID string
	Kind      domain.DocumentKind
	File      multipart.File
	Header    *multipart.FileHeader
}

// DocumentUploadResult reports what one upload produced: the archived
// document, the number of line items replacing the previous set for that
// kind, and any normalization warnings.
type DocumentUploadResult struct {
	Document  domain.DocumentMeta `json:"document"`
	ItemCount int                 `json:"item_count"`
	ModelUsed string              `json:"model_used,omitempty"`
	Warnings  []string            `json:"warnings,omitempty"`
}

// DocumentService defines the document intake contract.
type DocumentService interface {
	Upload(ctx context.Context, input *DocumentUploadInput) (*DocumentUploadResult, error)
	GetDownloadURL(ctx context.Context, sessionID string, docID uuid.UUID) (string, error)
}

type documentService struct {
	sessions    port.SessionStore
	storage     port.ObjectStorage
	llm         port.DocumentExtractor
	spreadsheet port.DocumentExtractor
	cfg         *config.S3Config
}

// NewDocumentService creates a new DocumentService implementation. PDF
// uploads go through the LLM extractor, spreadsheets through the
// spreadsheet extractor.
func NewDocumentService(
	sessions port.SessionStore,
	storage port.ObjectStorage,
	llmExtractor port.DocumentExtractor,
	spreadsheetExtractor port.DocumentExtractor,
	cfg *config.S3Config,
) DocumentService {
	return &documentService{
		sessions:    sessions,
		storage:     storage,
		llm:         llmExtractor,
		spreadsheet: spreadsheetExtractor,
		cfg:         cfg,
	}
}

func (s *documentService) Upload(ctx context.Context, input *DocumentUploadInput) (*DocumentUploadResult, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	// Plan quantities come off drawing sheets; there is no spreadsheet form.
	if input.Kind == domain.DocumentKindPlan && fileType != domain.FileTypePDF {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	fileBytes, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(fileBytes)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic-byte check; the extension alone is not trusted.
	detected := http.DetectContentType(fileBytes)
	if !domain.AllowedContentTypes[detected] {
		return nil, domain.ErrUnsupportedFileType
	}

	docID := uuid.New()
	contentType := fileType.ContentType()
	storageKey := fmt.Sprintf("sessions/%s/documents/%s/%s/%s",
		input.SessionID, input.Kind, docID, input.Header.Filename)

	log.Printf("documentService.Upload: archiving %s (%s, %d bytes) as %s for session %s",
		input.Header.Filename, contentType, len(fileBytes), input.Kind, input.SessionID)

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         storageKey,
		Body:        bytes.NewReader(fileBytes),
		ContentType: contentType,
		Size:        int64(len(fileBytes)),
	})
	if err != nil {
		log.Printf("documentService.Upload: archive failed for session %s: %v", input.SessionID, err)
		return nil, domain.ErrUploadFailed
	}

	out, err := s.extract(ctx, fileBytes, contentType, fileType, input.Kind)
	if err != nil {
		log.Printf("documentService.Upload: extraction failed for session %s: %v", input.SessionID, err)
		var rlErr *extractor.RateLimitError
		if errors.As(err, &rlErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	source := input.Kind.Source()
	for i := range out.Items {
		out.Items[i].Source = source
		out.Items[i].Position = i
	}

	meta := domain.DocumentMeta{
		ID:           docID,
		SessionID:    input.SessionID,
		Kind:         input.Kind,
		OriginalName: input.Header.Filename,
		FileType:     fileType,
		FileSize:     int64(len(fileBytes)),
		StorageKey:   storageKey,
		ItemCount:    len(out.Items),
		UploadedAt:   time.Now().UTC(),
	}

	// Replacing a collection invalidates any report computed from the old one.
	_, err = s.sessions.Update(ctx, input.SessionID, func(st *domain.SessionState) {
		switch input.Kind {
		case domain.DocumentKindRFP:
			st.RFPItems = out.Items
			if out.ProjectInfo != nil {
				st.ProjectInfo = *out.ProjectInfo
			}
		case domain.DocumentKindBid:
			st.BidItems = out.Items
		case domain.DocumentKindPlan:
			st.PlanItems = out.Items
		}
		st.Documents = append(st.Documents, meta)
		st.Report = nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}

	return &DocumentUploadResult{
		Document:  meta,
		ItemCount: len(out.Items),
		ModelUsed: out.ModelUsed,
		Warnings:  out.Warnings,
	}, nil
}

func (s *documentService) extract(ctx context.Context, fileBytes []byte, contentType string, fileType domain.FileType, kind domain.DocumentKind) (*port.ExtractOutput, error) {
	in := port.ExtractInput{
		FileBytes:   fileBytes,
		ContentType: contentType,
		Kind:        kind,
	}
	if fileType == domain.FileTypePDF {
		return s.llm.Extract(ctx, in)
	}
	return s.spreadsheet.Extract(ctx, in)
}

func (s *documentService) GetDownloadURL(ctx context.Context, sessionID string, docID uuid.UUID) (string, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	for i := range state.Documents {
		if state.Documents[i].ID == docID {
			return s.storage.GetPresignedURL(ctx, s.cfg.Bucket, state.Documents[i].StorageKey, s.cfg.PresignExpiry)
		}
	}
	return "", domain.ErrNotFound
}
