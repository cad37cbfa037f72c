package port

import "context"

// EmailSender defines the contract for reviewer notifications.
type EmailSender interface {
	// SendReviewRequested notifies a reviewer that a document was routed to
	// manual review, with the reason codes that triggered it.
	SendReviewRequested(ctx context.Context, toEmail, toName, documentID string, reasons []string) error
}
