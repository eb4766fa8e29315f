package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// txStore is the unit of work handed to WithinTx callbacks. It works on a
// private copy of one ledger; the caller already holds that ledger's lock.
type txStore struct {
	ledgerID string
	data     *ledgerData
}

var _ portsrepo.LedgerStore = (*txStore)(nil)

func (t *txStore) check(ledgerID string) error {
	if ledgerID != t.ledgerID {
		return apperrors.NewValidationError("transaction is bound to ledger " + t.ledgerID)
	}
	return nil
}

func (t *txStore) FindLedgerByID(_ context.Context, ledgerID string) (*domain.Ledger, error) {
	if err := t.check(ledgerID); err != nil {
		return nil, err
	}
	ledger := t.data.ledger
	return &ledger, nil
}

func (t *txStore) ListLedgersByOwner(_ context.Context, ownerID string) ([]domain.Ledger, error) {
	if t.data.ledger.OwnerID != ownerID {
		return []domain.Ledger{}, nil
	}
	return []domain.Ledger{t.data.ledger}, nil
}

func (t *txStore) SaveLedger(context.Context, domain.Ledger) error {
	return apperrors.NewValidationError("ledgers cannot be created inside a ledger transaction")
}

func (t *txStore) SumForCurrency(_ context.Context, ledgerID, currencyCode string) (decimal.Decimal, error) {
	if err := t.check(ledgerID); err != nil {
		return decimal.Zero, err
	}
	return sumForCurrency(t.data, currencyCode), nil
}

func (t *txStore) SumByCurrency(_ context.Context, ledgerID string) (map[string]decimal.Decimal, error) {
	if err := t.check(ledgerID); err != nil {
		return nil, err
	}
	return sumByCurrency(t.data), nil
}

func (t *txStore) ListMovements(_ context.Context, ledgerID string, limit int) ([]domain.Movement, error) {
	if err := t.check(ledgerID); err != nil {
		return nil, err
	}
	return newestMovements(t.data, limit), nil
}

func (t *txStore) SaveMovement(_ context.Context, movement domain.Movement) error {
	if err := t.check(movement.LedgerID); err != nil {
		return err
	}
	t.data.movements = append(t.data.movements, movement)
	return nil
}

func (t *txStore) ListHistory(_ context.Context, ledgerID string, limit int) ([]domain.BalanceHistoryEntry, error) {
	if err := t.check(ledgerID); err != nil {
		return nil, err
	}
	return newestHistory(t.data, limit), nil
}

func (t *txStore) SaveHistoryEntry(_ context.Context, entry domain.BalanceHistoryEntry) error {
	if err := t.check(entry.LedgerID); err != nil {
		return err
	}
	t.data.history = append(t.data.history, entry)
	return nil
}

func (t *txStore) FindLoanByID(_ context.Context, ledgerID, loanID string) (*domain.Loan, error) {
	if err := t.check(ledgerID); err != nil {
		return nil, err
	}
	return findLoan(t.data, loanID)
}

func (t *txStore) ListLoans(_ context.Context, ledgerID string, filter domain.LoanFilter) ([]domain.Loan, error) {
	if err := t.check(ledgerID); err != nil {
		return nil, err
	}
	return listLoans(t.data, filter), nil
}

func (t *txStore) SumActivePrincipalByCurrency(_ context.Context, ledgerID string) (map[string]decimal.Decimal, error) {
	if err := t.check(ledgerID); err != nil {
		return nil, err
	}
	return activePrincipal(t.data), nil
}

func (t *txStore) SaveLoan(_ context.Context, loan domain.Loan) error {
	if err := t.check(loan.LedgerID); err != nil {
		return err
	}
	return saveLoan(t.data, loan)
}

func (t *txStore) CloseLoan(_ context.Context, ledgerID, loanID string, closedAt time.Time, closedBy string) error {
	if err := t.check(ledgerID); err != nil {
		return err
	}
	return closeLoan(t.data, loanID, closedAt, closedBy)
}

// The helpers below assume the caller holds the ledger lock.

func sumForCurrency(d *ledgerData, code string) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range d.movements {
		if m.CurrencyCode == code {
			sum = sum.Add(m.Amount)
		}
	}
	return sum
}

func sumByCurrency(d *ledgerData) map[string]decimal.Decimal {
	sums := map[string]decimal.Decimal{}
	for _, m := range d.movements {
		sums[m.CurrencyCode] = sums[m.CurrencyCode].Add(m.Amount)
	}
	return sums
}

// newestMovements orders by effective date, then by insertion, both newest first.
func newestMovements(d *ledgerData, limit int) []domain.Movement {
	out := make([]domain.Movement, 0, len(d.movements))
	for i := len(d.movements) - 1; i >= 0; i-- {
		out = append(out, d.movements[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveDate.After(out[j].EffectiveDate)
	})
	if len(out) > limit {
		out = out[:max(limit, 0)]
	}
	return out
}

func newestHistory(d *ledgerData, limit int) []domain.BalanceHistoryEntry {
	out := make([]domain.BalanceHistoryEntry, 0, min(limit, len(d.history)))
	for i := len(d.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, d.history[i])
	}
	return out
}

func findLoan(d *ledgerData, loanID string) (*domain.Loan, error) {
	loan, ok := d.loans[loanID]
	if !ok {
		return nil, apperrors.NewNotFoundError("loan " + loanID + " not found")
	}
	return &loan, nil
}

func listLoans(d *ledgerData, filter domain.LoanFilter) []domain.Loan {
	out := []domain.Loan{}
	for _, id := range d.loanOrder {
		if loan := d.loans[id]; filter.Matches(loan.State) {
			out = append(out, loan)
		}
	}
	// Newest loan date first, insertion order breaks ties.
	sort.SliceStable(out, func(i, j int) bool { return out[i].LoanDate.After(out[j].LoanDate) })
	return out
}

func activePrincipal(d *ledgerData) map[string]decimal.Decimal {
	sums := map[string]decimal.Decimal{}
	for _, loan := range d.loans {
		if loan.IsActive() {
			sums[loan.CurrencyCode] = sums[loan.CurrencyCode].Add(loan.Principal)
		}
	}
	return sums
}

func saveLoan(d *ledgerData, loan domain.Loan) error {
	if _, ok := d.loans[loan.LoanID]; ok {
		return apperrors.ErrDuplicate
	}
	d.loans[loan.LoanID] = loan
	d.loanOrder = append(d.loanOrder, loan.LoanID)
	return nil
}

func closeLoan(d *ledgerData, loanID string, closedAt time.Time, closedBy string) error {
	loan, ok := d.loans[loanID]
	if !ok || !loan.IsActive() {
		return apperrors.NewNotFoundError("no active loan with id " + loanID)
	}
	loan.State = domain.LoanClosed
	loan.ClosedAt = &closedAt
	loan.LastUpdatedAt = closedAt
	loan.LastUpdatedBy = closedBy
	d.loans[loanID] = loan
	return nil
}
