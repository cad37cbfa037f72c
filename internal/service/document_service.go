package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"pajakos/internal/config"
	"pajakos/internal/domain"
	"pajakos/internal/faktur"
	"pajakos/internal/parser"
	"pajakos/internal/port"
)

// IngestDocumentInput is the DTO for submitting a raw OCR payload.
type IngestDocumentInput struct {
	SourceName string
	Payload    faktur.RawDocument
	CreatedBy  uuid.UUID
}

// UpdateReviewInput is the DTO for resolving a document review.
type UpdateReviewInput struct {
	DocumentID uuid.UUID
	ReviewerID uuid.UUID
	Status     domain.ReviewStatus
	Notes      string
}

// DocumentService defines the document lifecycle contract: intake, parsing,
// review and retrieval.
type DocumentService interface {
	Ingest(ctx context.Context, input *IngestDocumentInput) (*domain.Document, error)
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	GetParseResult(ctx context.Context, docID uuid.UUID) (*faktur.ParseResult, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	ListByParsingStatus(ctx context.Context, status domain.ParsingStatus, offset, limit int) ([]domain.Document, int, error)
	ListReviewQueue(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	UpdateReview(ctx context.Context, input *UpdateReviewInput) (*domain.Document, error)
	RetryParse(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	PayloadURL(ctx context.Context, docID uuid.UUID) (string, error)
	Delete(ctx context.Context, docID uuid.UUID) error
	ParseDocument(ctx context.Context, doc *domain.Document)
}

type documentService struct {
	docRepo  port.DocumentRepository
	userRepo port.UserRepository
	pipeline *parser.Pipeline
	storage  port.ObjectStorage
	email    port.EmailSender
	s3cfg    config.S3Config
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	userRepo port.UserRepository,
	pipeline *parser.Pipeline,
	storage port.ObjectStorage,
	email port.EmailSender,
	s3cfg config.S3Config,
) DocumentService {
	return &documentService{
		docRepo:  docRepo,
		userRepo: userRepo,
		pipeline: pipeline,
		storage:  storage,
		email:    email,
		s3cfg:    s3cfg,
	}
}

func (s *documentService) Ingest(ctx context.Context, input *IngestDocumentInput) (*domain.Document, error) {
	if strings.TrimSpace(input.Payload.Text) == "" && len(input.Payload.Tokens) == 0 {
		return nil, domain.ErrEmptyPayload
	}

	payloadJSON, err := json.Marshal(input.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	doc := &domain.Document{
		ID:            uuid.New(),
		SourceName:    input.SourceName,
		RawPayload:    payloadJSON,
		ParseResult:   json.RawMessage("{}"),
		ParsingStatus: domain.ParsingStatusQueued,
		ReviewStatus:  domain.ReviewStatusNotRequired,
		CreatedBy:     input.CreatedBy,
	}

	// Archive the payload verbatim before anything touches it. Archive
	// failure is not fatal: the payload also lives in the documents row.
	key := fmt.Sprintf("payloads/%s.json", doc.ID)
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(payloadJSON),
		ContentType: "application/json",
		Size:        int64(len(payloadJSON)),
	})
	if err != nil {
		log.Printf("documentService.Ingest: payload archive failed for %s: %v", doc.ID, err)
	} else {
		doc.PayloadKey = key
	}

	log.Printf("documentService.Ingest: creating document %s (source %q)", doc.ID, input.SourceName)

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	// Copy before launching goroutine so the caller's value is independent of background work
	result := *doc

	go s.parseInBackground(doc.ID)

	return &result, nil
}

func (s *documentService) parseInBackground(docID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Re-fetch so this goroutine and the queue worker never parse from
	// different snapshots of the same document.
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		log.Printf("documentService.parseInBackground: failed to get document %s: %v", docID, err)
		return
	}
	if doc.ParsingStatus != domain.ParsingStatusQueued {
		log.Printf("documentService.parseInBackground: document %s already claimed (%s), skipping", docID, doc.ParsingStatus)
		return
	}
	doc.ParseAttempts++
	doc.ParsingStatus = domain.ParsingStatusProcessing
	if err := s.docRepo.UpdateParseResult(ctx, doc); err != nil {
		log.Printf("documentService.parseInBackground: failed to set processing status for %s: %v", docID, err)
		return
	}

	s.ParseDocument(ctx, doc)
}

// ParseDocument runs the extraction pipeline over the document's raw payload
// and persists the outcome. The doc must already be in processing status
// with ParseAttempts incremented. It is called by both parseInBackground and
// the queue worker.
func (s *documentService) ParseDocument(ctx context.Context, doc *domain.Document) {
	var raw faktur.RawDocument
	if err := json.Unmarshal(doc.RawPayload, &raw); err != nil {
		s.failParsing(ctx, doc, fmt.Sprintf("decoding payload: %v", err))
		return
	}

	result := s.pipeline.Parse(raw)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		s.failParsing(ctx, doc, fmt.Sprintf("encoding parse result: %v", err))
		return
	}

	now := time.Now().UTC()
	doc.ParseResult = resultJSON
	doc.ParseStatus = string(result.Status)
	doc.Confidence = result.Confidence
	doc.ParsingStatus = domain.ParsingStatusCompleted
	doc.ParsingError = ""
	doc.ParsedAt = &now
	if result.Status == faktur.StatusNeedsReview {
		doc.ReviewStatus = domain.ReviewStatusPending
	} else {
		doc.ReviewStatus = domain.ReviewStatusNotRequired
	}

	if err := s.docRepo.UpdateParseResult(ctx, doc); err != nil {
		log.Printf("documentService.ParseDocument: failed to save results for %s: %v", doc.ID, err)
		return
	}

	log.Printf("documentService.ParseDocument: document %s parsed: status=%s confidence=%.3f reasons=%v",
		doc.ID, result.Status, result.Confidence, result.ReasonCodes)

	if result.Status == faktur.StatusNeedsReview {
		s.notifyReviewers(ctx, doc, result.ReasonCodes)
	}
}

// notifyReviewers sends a review-requested notification to every active
// reviewer. Delivery failures are logged, never surfaced: the review queue
// itself is the source of truth.
func (s *documentService) notifyReviewers(ctx context.Context, doc *domain.Document, reasons []faktur.ReasonCode) {
	if s.email == nil {
		return
	}
	reviewers, err := s.userRepo.ListByRole(ctx, domain.RoleReviewer)
	if err != nil {
		log.Printf("documentService.notifyReviewers: listing reviewers for %s: %v", doc.ID, err)
		return
	}
	reasonStrs := make([]string, 0, len(reasons))
	for _, r := range reasons {
		reasonStrs = append(reasonStrs, string(r))
	}
	for _, rv := range reviewers {
		if err := s.email.SendReviewRequested(ctx, rv.Email, rv.FullName, doc.ID.String(), reasonStrs); err != nil {
			log.Printf("documentService.notifyReviewers: sending to %s for %s: %v", rv.Email, doc.ID, err)
		}
	}
}

func (s *documentService) failParsing(ctx context.Context, doc *domain.Document, errMsg string) {
	log.Printf("documentService.failParsing: document %s failed: %s", doc.ID, errMsg)
	doc.ParsingStatus = domain.ParsingStatusFailed
	doc.ParsingError = errMsg
	if err := s.docRepo.UpdateParseResult(ctx, doc); err != nil {
		log.Printf("documentService.failParsing: failed to update status for %s: %v", doc.ID, err)
	}
}

func (s *documentService) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, docID)
}

func (s *documentService) GetParseResult(ctx context.Context, docID uuid.UUID) (*faktur.ParseResult, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.ParsingStatus != domain.ParsingStatusCompleted {
		return nil, domain.ErrDocumentNotParsed
	}
	var result faktur.ParseResult
	if err := json.Unmarshal(doc.ParseResult, &result); err != nil {
		return nil, fmt.Errorf("decoding parse result for %s: %w", docID, err)
	}
	return &result, nil
}

func (s *documentService) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.List(ctx, offset, limit)
}

func (s *documentService) ListByParsingStatus(ctx context.Context, status domain.ParsingStatus, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.ListByParsingStatus(ctx, status, offset, limit)
}

func (s *documentService) ListReviewQueue(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.ListByReviewStatus(ctx, domain.ReviewStatusPending, offset, limit)
}

func (s *documentService) UpdateReview(ctx context.Context, input *UpdateReviewInput) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.ParsingStatus != domain.ParsingStatusCompleted {
		return nil, domain.ErrDocumentNotParsed
	}
	if doc.ReviewStatus != domain.ReviewStatusPending {
		return nil, domain.ErrReviewNotPending
	}

	now := time.Now().UTC()
	doc.ReviewStatus = input.Status
	doc.ReviewedBy = &input.ReviewerID
	doc.ReviewedAt = &now
	doc.ReviewerNotes = input.Notes

	if err := s.docRepo.UpdateReviewStatus(ctx, doc); err != nil {
		return nil, fmt.Errorf("updating review status: %w", err)
	}
	return doc, nil
}

func (s *documentService) RetryParse(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	doc.ParsingStatus = domain.ParsingStatusQueued
	doc.ParsingError = ""
	doc.ParseResult = json.RawMessage("{}")
	doc.ParseStatus = ""
	doc.Confidence = 0
	doc.ParsedAt = nil
	doc.ReviewStatus = domain.ReviewStatusNotRequired
	doc.ReviewedBy = nil
	doc.ReviewedAt = nil
	doc.ReviewerNotes = ""
	if err := s.docRepo.UpdateParseResult(ctx, doc); err != nil {
		return nil, fmt.Errorf("resetting document for retry: %w", err)
	}
	if err := s.docRepo.UpdateReviewStatus(ctx, doc); err != nil {
		return nil, fmt.Errorf("resetting review for retry: %w", err)
	}

	log.Printf("documentService.RetryParse: retrying parsing for document %s", docID)

	// Copy before launching goroutine so the caller's value is independent of background work
	result := *doc

	go s.parseInBackground(doc.ID)

	return &result, nil
}

func (s *documentService) PayloadURL(ctx context.Context, docID uuid.UUID) (string, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return "", err
	}
	if doc.PayloadKey == "" {
		return "", domain.ErrNotFound
	}
	return s.storage.GetPresignedURL(ctx, s.s3cfg.Bucket, doc.PayloadKey, s.s3cfg.PresignExpiry)
}

func (s *documentService) Delete(ctx context.Context, docID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc.PayloadKey != "" {
		if err := s.storage.Delete(ctx, s.s3cfg.Bucket, doc.PayloadKey); err != nil {
			log.Printf("documentService.Delete: deleting archived payload for %s: %v", docID, err)
		}
	}
	return s.docRepo.Delete(ctx, docID)
}
