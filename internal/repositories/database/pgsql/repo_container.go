package pgsql

import (
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	ledgerRepo := newPgxLedgerRepository(dbPool, nil)
	movementRepo := newPgxMovementRepository(dbPool, nil)
	historyRepo := newPgxHistoryRepository(dbPool, nil)
	loanRepo := newPgxLoanRepository(dbPool, nil)
	exchangeRateRepo := newPgxExchangeRateRepository(dbPool)
	txManager := newPgxTransactionManager(dbPool)

	return portsrepo.RepositoryProvider{
		LedgerRepo:       ledgerRepo,
		MovementRepo:     movementRepo,
		HistoryRepo:      historyRepo,
		LoanRepo:         loanRepo,
		ExchangeRateRepo: exchangeRateRepo,
		TxManager:        txManager,
	}
}
