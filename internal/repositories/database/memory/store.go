// Package memory is a process-local implementation of the repository ports.
// It backs the CLI when no database is configured and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// ledgerData is everything stored for one ledger.
type ledgerData struct {
	ledger    domain.Ledger
	movements []domain.Movement
	history   []domain.BalanceHistoryEntry
	loans     map[string]domain.Loan
	loanOrder []string
}

func (d *ledgerData) clone() *ledgerData {
	c := &ledgerData{
		ledger:    d.ledger,
		movements: append([]domain.Movement(nil), d.movements...),
		history:   append([]domain.BalanceHistoryEntry(nil), d.history...),
		loans:     make(map[string]domain.Loan, len(d.loans)),
		loanOrder: append([]string(nil), d.loanOrder...),
	}
	for id, loan := range d.loans {
		c.loans[id] = loan
	}
	return c
}

// Store keeps ledgers, movements, history and loans in memory.
// Each ledger has its own lock so postings to different ledgers do not contend.
type Store struct {
	mu      sync.RWMutex
	ledgers map[string]*ledgerData
	locks   map[string]*sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		ledgers: map[string]*ledgerData{},
		locks:   map[string]*sync.Mutex{},
	}
}

var (
	_ portsrepo.LedgerStore        = (*Store)(nil)
	_ portsrepo.TransactionManager = (*Store)(nil)
)

func (s *Store) lockFor(ledgerID string) (*sync.Mutex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locks[ledgerID]
	if !ok {
		return nil, apperrors.NewNotFoundError("ledger " + ledgerID + " not found")
	}
	return l, nil
}

func (s *Store) data(ledgerID string) (*ledgerData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.ledgers[ledgerID]
	if !ok {
		return nil, apperrors.NewNotFoundError("ledger " + ledgerID + " not found")
	}
	return d, nil
}

// read runs fn on the ledger's data under its lock.
func (s *Store) read(ledgerID string, fn func(d *ledgerData) error) error {
	l, err := s.lockFor(ledgerID)
	if err != nil {
		return err
	}
	l.Lock()
	defer l.Unlock()
	d, err := s.data(ledgerID)
	if err != nil {
		return err
	}
	return fn(d)
}

// WithinTx runs fn against a copy of the ledger's data while holding the
// ledger lock. The copy replaces the stored data only when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, ledgerID string, fn func(ctx context.Context, store portsrepo.LedgerStore) error) error {
	l, err := s.lockFor(ledgerID)
	if err != nil {
		return err
	}
	l.Lock()
	defer l.Unlock()

	d, err := s.data(ledgerID)
	if err != nil {
		return err
	}
	tx := &txStore{ledgerID: ledgerID, data: d.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.ledgers[ledgerID] = tx.data
	s.mu.Unlock()
	return nil
}

// FindLedgerByID returns the ledger or apperrors.ErrNotFound.
func (s *Store) FindLedgerByID(_ context.Context, ledgerID string) (*domain.Ledger, error) {
	d, err := s.data(ledgerID)
	if err != nil {
		return nil, err
	}
	ledger := d.ledger
	return &ledger, nil
}

// ListLedgersByOwner returns the owner's ledgers, oldest first.
func (s *Store) ListLedgersByOwner(_ context.Context, ownerID string) ([]domain.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Ledger{}
	for _, d := range s.ledgers {
		if d.ledger.OwnerID == ownerID {
			out = append(out, d.ledger)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].LedgerID < out[j].LedgerID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SaveLedger creates a ledger. Ledger ids are unique.
func (s *Store) SaveLedger(_ context.Context, ledger domain.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ledgers[ledger.LedgerID]; ok {
		return apperrors.ErrDuplicate
	}
	s.ledgers[ledger.LedgerID] = &ledgerData{ledger: ledger, loans: map[string]domain.Loan{}}
	s.locks[ledger.LedgerID] = &sync.Mutex{}
	return nil
}

func (s *Store) SumForCurrency(ctx context.Context, ledgerID, currencyCode string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.read(ledgerID, func(d *ledgerData) error {
		sum = sumForCurrency(d, currencyCode)
		return nil
	})
	return sum, err
}

func (s *Store) SumByCurrency(ctx context.Context, ledgerID string) (map[string]decimal.Decimal, error) {
	var sums map[string]decimal.Decimal
	err := s.read(ledgerID, func(d *ledgerData) error {
		sums = sumByCurrency(d)
		return nil
	})
	return sums, err
}

func (s *Store) ListMovements(ctx context.Context, ledgerID string, limit int) ([]domain.Movement, error) {
	var out []domain.Movement
	err := s.read(ledgerID, func(d *ledgerData) error {
		out = newestMovements(d, limit)
		return nil
	})
	return out, err
}

func (s *Store) SaveMovement(ctx context.Context, movement domain.Movement) error {
	return s.read(movement.LedgerID, func(d *ledgerData) error {
		d.movements = append(d.movements, movement)
		return nil
	})
}

func (s *Store) ListHistory(ctx context.Context, ledgerID string, limit int) ([]domain.BalanceHistoryEntry, error) {
	var out []domain.BalanceHistoryEntry
	err := s.read(ledgerID, func(d *ledgerData) error {
		out = newestHistory(d, limit)
		return nil
	})
	return out, err
}

func (s *Store) SaveHistoryEntry(ctx context.Context, entry domain.BalanceHistoryEntry) error {
	return s.read(entry.LedgerID, func(d *ledgerData) error {
		d.history = append(d.history, entry)
		return nil
	})
}

func (s *Store) FindLoanByID(ctx context.Context, ledgerID, loanID string) (*domain.Loan, error) {
	var loan *domain.Loan
	err := s.read(ledgerID, func(d *ledgerData) error {
		var err error
		loan, err = findLoan(d, loanID)
		return err
	})
	return loan, err
}

func (s *Store) ListLoans(ctx context.Context, ledgerID string, filter domain.LoanFilter) ([]domain.Loan, error) {
	var out []domain.Loan
	err := s.read(ledgerID, func(d *ledgerData) error {
		out = listLoans(d, filter)
		return nil
	})
	return out, err
}

func (s *Store) SumActivePrincipalByCurrency(ctx context.Context, ledgerID string) (map[string]decimal.Decimal, error) {
	var sums map[string]decimal.Decimal
	err := s.read(ledgerID, func(d *ledgerData) error {
		sums = activePrincipal(d)
		return nil
	})
	return sums, err
}

func (s *Store) SaveLoan(ctx context.Context, loan domain.Loan) error {
	return s.read(loan.LedgerID, func(d *ledgerData) error {
		return saveLoan(d, loan)
	})
}

func (s *Store) CloseLoan(ctx context.Context, ledgerID, loanID string, closedAt time.Time, closedBy string) error {
	return s.read(ledgerID, func(d *ledgerData) error {
		return closeLoan(d, loanID, closedAt, closedBy)
	})
}

// NewRepositoryProvider wires a fresh in-memory store into every repository port.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	store := NewStore()
	return portsrepo.RepositoryProvider{
		LedgerRepo:       store,
		MovementRepo:     store,
		HistoryRepo:      store,
		LoanRepo:         store,
		ExchangeRateRepo: NewExchangeRateStore(),
		TxManager:        store,
	}
}
