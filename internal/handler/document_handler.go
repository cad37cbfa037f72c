package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pajakos/internal/csvexport"
	"pajakos/internal/domain"
	"pajakos/internal/faktur"
	"pajakos/internal/service"
)

// DocumentHandler handles document intake, parsing and review endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Create handles POST /api/v1/documents
func (h *DocumentHandler) Create(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var req struct {
		SourceName string             `json:"source_name" binding:"required"`
		Payload    faktur.RawDocument `json:"payload" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "source_name and payload are required")
		return
	}

	doc, err := h.documentService.Ingest(c.Request.Context(), &service.IngestDocumentInput{
		SourceName: req.SourceName,
		Payload:    req.Payload,
		CreatedBy:  userID,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, doc)
}

// GetByID handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// GetResult handles GET /api/v1/documents/:id/result
func (h *DocumentHandler) GetResult(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	result, err := h.documentService.GetParseResult(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// List handles GET /api/v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	if statusStr := c.Query("parsing_status"); statusStr != "" {
		docs, total, err := h.documentService.ListByParsingStatus(c.Request.Context(), domain.ParsingStatus(statusStr), offset, limit)
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
		return
	}

	docs, total, err := h.documentService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ReviewQueue handles GET /api/v1/documents/review-queue
func (h *DocumentHandler) ReviewQueue(c *gin.Context) {
	offset, limit := parsePagination(c)

	docs, total, err := h.documentService.ListReviewQueue(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Review handles POST /api/v1/documents/:id/review
func (h *DocumentHandler) Review(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	var req struct {
		Status domain.ReviewStatus `json:"status" binding:"required"`
		Notes  string              `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "status is required")
		return
	}
	if req.Status != domain.ReviewStatusApproved && req.Status != domain.ReviewStatusRejected {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "status must be 'approved' or 'rejected'")
		return
	}

	doc, err := h.documentService.UpdateReview(c.Request.Context(), &service.UpdateReviewInput{
		DocumentID: docID,
		ReviewerID: userID,
		Status:     req.Status,
		Notes:      req.Notes,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// Retry handles POST /api/v1/documents/:id/retry
func (h *DocumentHandler) Retry(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	doc, err := h.documentService.RetryParse(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, doc)
}

// PayloadURL handles GET /api/v1/documents/:id/payload-url
func (h *DocumentHandler) PayloadURL(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	url, err := h.documentService.PayloadURL(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Delete handles DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), docID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "document deleted"})
}

const exportBatchLimit = 10000

// Export handles GET /api/v1/documents/export?format=csv|xlsx
func (h *DocumentHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "format must be 'csv' or 'xlsx'")
		return
	}

	docs, _, err := h.documentService.List(c.Request.Context(), 0, exportBatchLimit)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename("documents", format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if format == "xlsx" {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := csvexport.WriteXLSX(c.Writer, docs); err != nil {
			HandleError(c, err)
		}
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteDocuments(docs); err != nil {
		return
	}
	w.Flush()
}

// parsePagination extracts offset/limit query parameters with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
