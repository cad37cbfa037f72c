package noop

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pajakos/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates a no-op EmailSender that logs review URLs to stdout.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendReviewRequested(_ context.Context, toEmail, toName, documentID string, reasons []string) error {
	reviewURL := fmt.Sprintf("%s/review/%s", s.frontendURL, documentID)
	log.Printf("[NOOP EMAIL] Review requested for %s (%s): doc %s [%s] %s",
		toName, toEmail, documentID, strings.Join(reasons, ", "), reviewURL)
	return nil
}
