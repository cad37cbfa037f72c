package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pajakos/internal/domain"
	"pajakos/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO documents (
		id, source_name, raw_payload, payload_key,
		parse_result, parse_status, confidence,
		parsing_status, parsing_error, parse_attempts, parsed_at,
		review_status, reviewed_by, reviewed_at, reviewer_notes,
		created_by, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7,
		$8, $9, $10, $11,
		$12, $13, $14, $15,
		$16, $17, $18
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.SourceName, doc.RawPayload, doc.PayloadKey,
		doc.ParseResult, doc.ParseStatus, doc.Confidence,
		doc.ParsingStatus, doc.ParsingError, doc.ParseAttempts, doc.ParsedAt,
		doc.ReviewStatus, doc.ReviewedBy, doc.ReviewedAt, doc.ReviewerNotes,
		doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents")
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs,
		"SELECT * FROM documents ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) ListByParsingStatus(ctx context.Context, status domain.ParsingStatus, offset, limit int) ([]domain.Document, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents WHERE parsing_status = $1", status)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByParsingStatus count: %w", err)
	}

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs,
		`SELECT * FROM documents WHERE parsing_status = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByParsingStatus: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) ListByReviewStatus(ctx context.Context, status domain.ReviewStatus, offset, limit int) ([]domain.Document, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents WHERE review_status = $1", status)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByReviewStatus count: %w", err)
	}

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs,
		`SELECT * FROM documents WHERE review_status = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByReviewStatus: %w", err)
	}
	return docs, total, nil
}

// ClaimQueued uses SKIP LOCKED so concurrent workers split the queue instead
// of blocking on it.
func (r *documentRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		`UPDATE documents SET parsing_status = $1, updated_at = $2
		 WHERE id IN (
			SELECT id FROM documents WHERE parsing_status = $3
			ORDER BY created_at ASC LIMIT $4
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.ParsingStatusProcessing, time.Now().UTC(), domain.ParsingStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ClaimQueued: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) UpdateParseResult(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			parse_result = $1, parse_status = $2, confidence = $3,
			parsing_status = $4, parsing_error = $5, parse_attempts = $6,
			parsed_at = $7, review_status = $8, updated_at = $9
		 WHERE id = $10`,
		doc.ParseResult, doc.ParseStatus, doc.Confidence,
		doc.ParsingStatus, doc.ParsingError, doc.ParseAttempts,
		doc.ParsedAt, doc.ReviewStatus, doc.UpdatedAt,
		doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateParseResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) UpdateReviewStatus(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			review_status = $1, reviewed_by = $2, reviewed_at = $3,
			reviewer_notes = $4, updated_at = $5
		 WHERE id = $6`,
		doc.ReviewStatus, doc.ReviewedBy, doc.ReviewedAt,
		doc.ReviewerNotes, doc.UpdatedAt,
		doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateReviewStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) Requeue(ctx context.Context, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET parsing_status = $1, parsing_error = '', updated_at = $2
		 WHERE id = $3`,
		domain.ParsingStatusQueued, time.Now().UTC(), docID)
	if err != nil {
		return fmt.Errorf("documentRepo.Requeue: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = $1", docID)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
