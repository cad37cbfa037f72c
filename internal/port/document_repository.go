package port

import (
	"context"

	"github.com/google/uuid"

	"pajakos/internal/domain"
)

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	ListByParsingStatus(ctx context.Context, status domain.ParsingStatus, offset, limit int) ([]domain.Document, int, error)
	ListByReviewStatus(ctx context.Context, status domain.ReviewStatus, offset, limit int) ([]domain.Document, int, error)
	// ClaimQueued atomically moves up to limit queued documents to processing
	// and returns them. Two workers never claim the same document.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error)
	UpdateParseResult(ctx context.Context, doc *domain.Document) error
	UpdateReviewStatus(ctx context.Context, doc *domain.Document) error
	Requeue(ctx context.Context, docID uuid.UUID) error
	Delete(ctx context.Context, docID uuid.UUID) error
}
