package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendReviewRequested(ctx context.Context, toEmail, toName, documentID string, reasons []string) error {
	args := m.Called(ctx, toEmail, toName, documentID, reasons)
	return args.Error(0)
}
