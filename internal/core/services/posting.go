package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledgerPoster appends movements together with their reference-currency audit entry.
// It is shared by the ledger and loan services so both post the same way.
type ledgerPoster struct {
	rates portssvc.RateProvider
}

// referenceBalance converts every currency balance into reference and sums them.
// Each component is rounded on its own, so the total equals the sum of the components.
func (p ledgerPoster) referenceBalance(ctx context.Context, movements portsrepo.MovementReader, ledgerID, reference string, at time.Time) (*domain.ReferenceBalance, error) {
	sums, err := movements.SumByCurrency(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum movements: %w", err)
	}
	return price(ctx, newReferenceConverter(p.rates, reference, at), sums)
}

// rebalance prices the ledger in reference before and after delta is applied
// to the currency balance of quote.From. The after figure is priced from the
// changed balance itself, so it matches what BalanceIn reports once the
// movement is written.
func (p ledgerPoster) rebalance(ctx context.Context, movements portsrepo.MovementReader, ledgerID, reference string, quote domain.RateQuote, delta decimal.Decimal, at time.Time) (before, after *domain.ReferenceBalance, err error) {
	sums, err := movements.SumByCurrency(ctx, ledgerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum movements: %w", err)
	}
	conv := newReferenceConverter(p.rates, reference, at, quote)
	if before, err = price(ctx, conv, sums); err != nil {
		return nil, nil, err
	}

	changed := make(map[string]decimal.Decimal, len(sums)+1)
	for code, amount := range sums {
		changed[code] = amount
	}
	changed[quote.From] = changed[quote.From].Add(delta)
	if after, err = price(ctx, conv, changed); err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func price(ctx context.Context, conv *referenceConverter, sums map[string]decimal.Decimal) (*domain.ReferenceBalance, error) {
	out := &domain.ReferenceBalance{ReferenceCurrency: conv.reference, Total: decimal.Zero}
	for _, code := range sortedCodes(sums) {
		if sums[code].IsZero() {
			continue
		}
		converted, err := conv.convert(ctx, code, sums[code])
		if err != nil {
			return nil, err
		}
		out.Total = out.Total.Add(converted)
		out.Components = append(out.Components, domain.CurrencyBalance{CurrencyCode: code, Amount: converted})
	}
	return out, nil
}

type postingInput struct {
	ledger            *domain.Ledger
	currencyCode      string
	amount            decimal.Decimal // signed, in currencyCode
	amountInReference decimal.Decimal // signed, in the ledger reference currency
	balanceBefore     decimal.Decimal
	balanceAfter      decimal.Decimal
	quote             domain.RateQuote
	description       string
	effectiveDate     time.Time
	counterparty      string
	kind              domain.MovementKind
	userID            string
	at                time.Time
}

// post writes the movement and its history entry through store.
func (p ledgerPoster) post(ctx context.Context, store portsrepo.LedgerStore, in postingInput) (*domain.Posting, error) {
	if in.effectiveDate.IsZero() {
		in.effectiveDate = domain.DayOf(in.at)
	}
	movement := domain.Movement{
		MovementID:    uuid.NewString(),
		LedgerID:      in.ledger.LedgerID,
		CurrencyCode:  in.currencyCode,
		Amount:        in.amount,
		Description:   in.description,
		Kind:          in.kind,
		EffectiveDate: in.effectiveDate,
		Counterparty:  in.counterparty,
		CreatedAt:     in.at,
		CreatedBy:     in.userID,
	}
	if err := store.SaveMovement(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to save movement: %w", err)
	}

	entry := domain.BalanceHistoryEntry{
		HistoryID:                uuid.NewString(),
		LedgerID:                 in.ledger.LedgerID,
		MovementID:               movement.MovementID,
		OperationKind:            in.kind,
		ReferenceCurrency:        in.ledger.ReferenceCurrency,
		AmountInReference:        in.amountInReference,
		BalanceBeforeInReference: in.balanceBefore,
		BalanceAfterInReference:  in.balanceAfter,
		Description:              fmt.Sprintf("%s (%s %s)", in.description, in.amount.String(), in.currencyCode),
		CreatedAt:                in.at,
	}
	if err := store.SaveHistoryEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save balance history: %w", err)
	}

	return &domain.Posting{Movement: movement, History: entry, Quote: in.quote}, nil
}

func sortedCodes(m map[string]decimal.Decimal) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
