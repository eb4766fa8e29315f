package services

import (
	"context"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// Summarize reports ledger balance and active loan principal in two reference currencies.
	Summarize(ctx context.Context, ledgerID, referenceA, referenceB, userID string) (*domain.Summary, error)
}
