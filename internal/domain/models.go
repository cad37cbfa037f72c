package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated user.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document is one ingested faktur pajak: the raw OCR payload, the queue
// state and the parse outcome. RawPayload is immutable after intake; every
// parse attempt reads it fresh and replaces ParseResult wholesale.
type Document struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	SourceName    string          `db:"source_name" json:"source_name"`
	RawPayload    json.RawMessage `db:"raw_payload" json:"raw_payload"`
	PayloadKey    string          `db:"payload_key" json:"payload_key"`
	ParseResult   json.RawMessage `db:"parse_result" json:"parse_result"`
	ParseStatus   string          `db:"parse_status" json:"parse_status"`
	Confidence    float64         `db:"confidence" json:"confidence"`
	ParsingStatus ParsingStatus   `db:"parsing_status" json:"parsing_status"`
	ParsingError  string          `db:"parsing_error" json:"parsing_error"`
	ParseAttempts int             `db:"parse_attempts" json:"parse_attempts"`
	ParsedAt      *time.Time      `db:"parsed_at" json:"parsed_at"`
	ReviewStatus  ReviewStatus    `db:"review_status" json:"review_status"`
	ReviewedBy    *uuid.UUID      `db:"reviewed_by" json:"reviewed_by"`
	ReviewedAt    *time.Time      `db:"reviewed_at" json:"reviewed_at"`
	ReviewerNotes string          `db:"reviewer_notes" json:"reviewer_notes"`
	CreatedBy     uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
