package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrInsufficientRole   = errors.New("role not permitted for this operation")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrEmptyPayload       = errors.New("document payload is empty")
	ErrDocumentNotParsed  = errors.New("document has not been parsed yet")
	ErrDocumentNotQueued  = errors.New("document is not queued for parsing")
	ErrReviewNotPending   = errors.New("document is not pending review")
	ErrUploadFailed       = errors.New("payload upload to storage failed")
)
