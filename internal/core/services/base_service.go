package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	"github.com/SscSPs/finance_assistant/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Now returns the current UTC time from the service clock.
func (s *BaseService) Now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a recoverable problem
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// authorizeLedger loads the ledger and checks that userID owns it.
// An empty userID skips the ownership check (trusted in-process callers).
func authorizeLedger(ctx context.Context, repo portsrepo.LedgerReader, ledgerID, userID string) (*domain.Ledger, error) {
	if ledgerID == "" {
		return nil, apperrors.NewValidationError("ledger id is required")
	}
	ledger, err := repo.FindLedgerByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if userID != "" && ledger.OwnerID != userID {
		return nil, fmt.Errorf("%w: ledger %s does not belong to user %s", apperrors.ErrForbidden, ledgerID, userID)
	}
	return ledger, nil
}
