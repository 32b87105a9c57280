package port

import (
	"context"

	"bidrecon/internal/domain"
)

// ExtractInput carries one uploaded document into an LLM extractor.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
	Kind        domain.DocumentKind
}

// ExtractOutput is the normalized result of extracting line items from a
// document. Warnings record normalization decisions (generated identifiers,
// de-duplicated item numbers, unrecognized units) without failing the run.
type ExtractOutput struct {
	Items       []domain.LineItem
	ProjectInfo *domain.ProjectInfo
	ModelUsed   string
	Warnings    []string
}

// DocumentExtractor abstracts LLM-based line-item extraction.
type DocumentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
