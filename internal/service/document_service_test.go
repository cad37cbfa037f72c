package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pajakos/internal/config"
	"pajakos/internal/domain"
	"pajakos/internal/faktur"
	"pajakos/internal/parser"
	"pajakos/internal/port"
	"pajakos/internal/service"
	"pajakos/mocks"
)

const sampleFakturText = `FAKTUR PAJAK
Kode dan Nomor Seri Faktur Pajak: 010.000-25.00000001
Jakarta, 17 Maret 2025
1. 100000000001 Jasa Konsultasi Manajemen 1.000.000,00 1.000.000,00 110.000,00
Harga Jual / Penggantian / Uang Muka / Termin 1.000.000,00
Dasar Pengenaan Pajak 1.000.000,00
Total PPN 110.000,00`

type documentServiceMocks struct {
	docRepo  *mocks.MockDocumentRepo
	userRepo *mocks.MockUserRepo
	storage  *mocks.MockObjectStorage
	email    *mocks.MockEmailSender
}

func newDocumentService() (service.DocumentService, *documentServiceMocks) {
	m := &documentServiceMocks{
		docRepo:  new(mocks.MockDocumentRepo),
		userRepo: new(mocks.MockUserRepo),
		storage:  new(mocks.MockObjectStorage),
		email:    new(mocks.MockEmailSender),
	}
	svc := service.NewDocumentService(
		m.docRepo, m.userRepo, parser.DefaultPipeline(), m.storage, m.email,
		config.S3Config{Bucket: "test-bucket", PresignExpiry: 3600},
	)
	return svc, m
}

func rawPayload(t *testing.T, text string) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(faktur.RawDocument{Text: text})
	require.NoError(t, err)
	return data
}

func TestDocumentService_Ingest_EmptyPayloadRejected(t *testing.T) {
	svc, m := newDocumentService()

	doc, err := svc.Ingest(context.Background(), &service.IngestDocumentInput{
		SourceName: "empty.pdf",
		Payload:    faktur.RawDocument{Text: "   "},
		CreatedBy:  uuid.New(),
	})

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrEmptyPayload)
	m.docRepo.AssertNotCalled(t, "Create")
}

func TestDocumentService_Ingest_Success(t *testing.T) {
	svc, m := newDocumentService()

	m.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "s3://test-bucket/payloads"}, nil)
	m.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	// The intake goroutine re-fetches the document; cutting it off here keeps
	// the test synchronous.
	m.docRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrDocumentNotFound).Maybe()

	creator := uuid.New()
	doc, err := svc.Ingest(context.Background(), &service.IngestDocumentInput{
		SourceName: "faktur_maret.pdf",
		Payload:    faktur.RawDocument{Text: sampleFakturText},
		CreatedBy:  creator,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ParsingStatusQueued, doc.ParsingStatus)
	assert.Equal(t, domain.ReviewStatusNotRequired, doc.ReviewStatus)
	assert.Equal(t, creator, doc.CreatedBy)
	assert.Equal(t, "payloads/"+doc.ID.String()+".json", doc.PayloadKey)
	m.docRepo.AssertExpectations(t)
}

func TestDocumentService_Ingest_ArchiveFailureIsNotFatal(t *testing.T) {
	svc, m := newDocumentService()

	m.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	m.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	m.docRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrDocumentNotFound).Maybe()

	doc, err := svc.Ingest(context.Background(), &service.IngestDocumentInput{
		SourceName: "faktur.pdf",
		Payload:    faktur.RawDocument{Text: sampleFakturText},
		CreatedBy:  uuid.New(),
	})

	require.NoError(t, err)
	assert.Empty(t, doc.PayloadKey)
}

func TestDocumentService_ParseDocument_Approved(t *testing.T) {
	svc, m := newDocumentService()

	doc := &domain.Document{
		ID:            uuid.New(),
		RawPayload:    rawPayload(t, sampleFakturText),
		ParsingStatus: domain.ParsingStatusProcessing,
		ParseAttempts: 1,
	}
	m.docRepo.On("UpdateParseResult", mock.Anything, doc).Return(nil)

	svc.ParseDocument(context.Background(), doc)

	assert.Equal(t, domain.ParsingStatusCompleted, doc.ParsingStatus)
	assert.Equal(t, string(faktur.StatusApproved), doc.ParseStatus)
	assert.Equal(t, domain.ReviewStatusNotRequired, doc.ReviewStatus)
	assert.Equal(t, 1.0, doc.Confidence)
	assert.NotNil(t, doc.ParsedAt)
	m.userRepo.AssertNotCalled(t, "ListByRole")
	m.email.AssertNotCalled(t, "SendReviewRequested")
}

func TestDocumentService_ParseDocument_NeedsReviewNotifiesReviewers(t *testing.T) {
	svc, m := newDocumentService()

	doc := &domain.Document{
		ID:            uuid.New(),
		RawPayload:    rawPayload(t, "no recognizable content"),
		ParsingStatus: domain.ParsingStatusProcessing,
		ParseAttempts: 1,
	}
	reviewer := domain.User{Email: "reviewer@test.com", FullName: "Test Reviewer", Role: domain.RoleReviewer}

	m.docRepo.On("UpdateParseResult", mock.Anything, doc).Return(nil)
	m.userRepo.On("ListByRole", mock.Anything, domain.RoleReviewer).Return([]domain.User{reviewer}, nil)
	m.email.On("SendReviewRequested", mock.Anything, reviewer.Email, reviewer.FullName, doc.ID.String(), mock.Anything).Return(nil)

	svc.ParseDocument(context.Background(), doc)

	assert.Equal(t, domain.ParsingStatusCompleted, doc.ParsingStatus)
	assert.Equal(t, string(faktur.StatusNeedsReview), doc.ParseStatus)
	assert.Equal(t, domain.ReviewStatusPending, doc.ReviewStatus)
	m.email.AssertExpectations(t)
}

func TestDocumentService_ParseDocument_MalformedPayloadFails(t *testing.T) {
	svc, m := newDocumentService()

	doc := &domain.Document{
		ID:            uuid.New(),
		RawPayload:    json.RawMessage(`{broken`),
		ParsingStatus: domain.ParsingStatusProcessing,
	}
	m.docRepo.On("UpdateParseResult", mock.Anything, doc).Return(nil)

	svc.ParseDocument(context.Background(), doc)

	assert.Equal(t, domain.ParsingStatusFailed, doc.ParsingStatus)
	assert.NotEmpty(t, doc.ParsingError)
}

func TestDocumentService_GetParseResult_NotParsed(t *testing.T) {
	svc, m := newDocumentService()

	docID := uuid.New()
	m.docRepo.On("GetByID", mock.Anything, docID).
		Return(&domain.Document{ID: docID, ParsingStatus: domain.ParsingStatusQueued}, nil)

	result, err := svc.GetParseResult(context.Background(), docID)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrDocumentNotParsed)
}

func TestDocumentService_UpdateReview_Success(t *testing.T) {
	svc, m := newDocumentService()

	docID := uuid.New()
	reviewerID := uuid.New()
	m.docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{
		ID:            docID,
		ParsingStatus: domain.ParsingStatusCompleted,
		ReviewStatus:  domain.ReviewStatusPending,
	}, nil)
	m.docRepo.On("UpdateReviewStatus", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	doc, err := svc.UpdateReview(context.Background(), &service.UpdateReviewInput{
		DocumentID: docID,
		ReviewerID: reviewerID,
		Status:     domain.ReviewStatusApproved,
		Notes:      "totals verified against the scan",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusApproved, doc.ReviewStatus)
	require.NotNil(t, doc.ReviewedBy)
	assert.Equal(t, reviewerID, *doc.ReviewedBy)
	assert.NotNil(t, doc.ReviewedAt)
}

func TestDocumentService_UpdateReview_NotPending(t *testing.T) {
	svc, m := newDocumentService()

	docID := uuid.New()
	m.docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{
		ID:            docID,
		ParsingStatus: domain.ParsingStatusCompleted,
		ReviewStatus:  domain.ReviewStatusNotRequired,
	}, nil)

	doc, err := svc.UpdateReview(context.Background(), &service.UpdateReviewInput{
		DocumentID: docID,
		ReviewerID: uuid.New(),
		Status:     domain.ReviewStatusApproved,
	})

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrReviewNotPending)
	m.docRepo.AssertNotCalled(t, "UpdateReviewStatus")
}

func TestDocumentService_PayloadURL(t *testing.T) {
	svc, m := newDocumentService()

	docID := uuid.New()
	m.docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{
		ID:         docID,
		PayloadKey: "payloads/abc.json",
	}, nil)
	m.storage.On("GetPresignedURL", mock.Anything, "test-bucket", "payloads/abc.json", int64(3600)).
		Return("https://signed.example/abc", nil)

	url, err := svc.PayloadURL(context.Background(), docID)

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/abc", url)
}

func TestDocumentService_PayloadURL_NoArchive(t *testing.T) {
	svc, m := newDocumentService()

	docID := uuid.New()
	m.docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{ID: docID}, nil)

	url, err := svc.PayloadURL(context.Background(), docID)

	assert.Empty(t, url)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Delete_RemovesArchivedPayload(t *testing.T) {
	svc, m := newDocumentService()

	docID := uuid.New()
	m.docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{
		ID:         docID,
		PayloadKey: "payloads/abc.json",
	}, nil)
	m.storage.On("Delete", mock.Anything, "test-bucket", "payloads/abc.json").Return(nil)
	m.docRepo.On("Delete", mock.Anything, docID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), docID))
	m.storage.AssertExpectations(t)
	m.docRepo.AssertExpectations(t)
}

func TestDocumentService_RetryParse_ResetsDocument(t *testing.T) {
	svc, m := newDocumentService()

	docID := uuid.New()
	reviewedBy := uuid.New()
	reviewedAt := time.Now()
	m.docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{
		ID:            docID,
		ParsingStatus: domain.ParsingStatusFailed,
		ParsingError:  "decoding payload: boom",
		ReviewStatus:  domain.ReviewStatusRejected,
		ReviewedBy:    &reviewedBy,
		ReviewedAt:    &reviewedAt,
		Confidence:    0.4,
	}, nil).Once()
	m.docRepo.On("UpdateParseResult", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	m.docRepo.On("UpdateReviewStatus", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	// Background re-fetch after the reset.
	m.docRepo.On("GetByID", mock.Anything, docID).Return(nil, domain.ErrDocumentNotFound).Maybe()

	doc, err := svc.RetryParse(context.Background(), docID)

	require.NoError(t, err)
	assert.Equal(t, domain.ParsingStatusQueued, doc.ParsingStatus)
	assert.Empty(t, doc.ParsingError)
	assert.Equal(t, domain.ReviewStatusNotRequired, doc.ReviewStatus)
	assert.Nil(t, doc.ReviewedBy)
	assert.Equal(t, 0.0, doc.Confidence)
}
