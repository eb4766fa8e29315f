package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LoanDateLayout is the only accepted loan date format.
const LoanDateLayout = DateLayout

// LoanState is the lifecycle state of a loan.
type LoanState string

const (
	LoanActive LoanState = "ACTIVE"
	LoanClosed LoanState = "CLOSED"
)

// LoanFilter selects loans by state when listing.
type LoanFilter string

const (
	LoanFilterActive LoanFilter = "active"
	LoanFilterClosed LoanFilter = "closed"
	LoanFilterAll    LoanFilter = "all"
)

// ParseLoanFilter accepts active, closed or all; anything else defaults to active.
func ParseLoanFilter(s string) LoanFilter {
	switch LoanFilter(strings.ToLower(strings.TrimSpace(s))) {
	case LoanFilterClosed:
		return LoanFilterClosed
	case LoanFilterAll:
		return LoanFilterAll
	}
	return LoanFilterActive
}

// Matches reports whether state passes the filter.
func (f LoanFilter) Matches(state LoanState) bool {
	switch f {
	case LoanFilterAll:
		return true
	case LoanFilterClosed:
		return state == LoanClosed
	}
	return state == LoanActive
}

var hundred = decimal.NewFromInt(100)

// Loan is an interest-bearing loan. Both percentages apply to the principal.
type Loan struct {
	LoanID                  string          `json:"loanID"`
	LedgerID                string          `json:"ledgerID"`
	Principal               decimal.Decimal `json:"principal"`
	CurrencyCode            string          `json:"currencyCode"`
	Counterparty            string          `json:"counterparty"`
	LoanDate                time.Time       `json:"loanDate"`
	InterestPercent         decimal.Decimal `json:"interestPercent"`
	HasIntermediary         bool            `json:"hasIntermediary"`
	IntermediaryPercent     decimal.Decimal `json:"intermediaryPercent"`
	QuotedRateAtOrigination decimal.Decimal `json:"quotedRateAtOrigination"`
	QuoteReferenceCurrency  string          `json:"quoteReferenceCurrency"`
	QuotedAt                time.Time       `json:"quotedAt"`
	Description             string          `json:"description"`
	State                   LoanState       `json:"state"`
	ClosedAt                *time.Time      `json:"closedAt,omitempty"`
	AuditFields
}

// IsActive reports whether the loan can still be closed.
func (l Loan) IsActive() bool {
	return l.State == LoanActive
}

// NetPercent is the interest percentage left after the intermediary's cut.
func (l Loan) NetPercent() decimal.Decimal {
	if !l.HasIntermediary {
		return l.InterestPercent
	}
	return l.InterestPercent.Sub(l.IntermediaryPercent)
}

// GrossInterest is the full interest on the principal.
func (l Loan) GrossInterest() decimal.Decimal {
	return l.Principal.Mul(l.InterestPercent).Div(hundred)
}

// IntermediaryCut is the intermediary's share, zero without an intermediary.
func (l Loan) IntermediaryCut() decimal.Decimal {
	if !l.HasIntermediary {
		return decimal.Zero
	}
	return l.Principal.Mul(l.IntermediaryPercent).Div(hundred)
}

// NetProceeds is what the lender books on closure. It may be negative when
// the intermediary charges more than the interest.
func (l Loan) NetProceeds() decimal.Decimal {
	return l.Principal.Mul(l.NetPercent()).Div(hundred)
}

// Breakdown is a human readable explanation of the interest split.
func (l Loan) Breakdown() string {
	code := l.CurrencyCode
	if !l.HasIntermediary {
		return fmt.Sprintf("%s x %s%% = %s",
			FormatAmount(l.Principal, code), l.InterestPercent.String(), FormatAmount(l.NetProceeds(), code))
	}
	return fmt.Sprintf("%s x (%s%% - %s%%) = %s x %s%% = %s; intermediary cut %s",
		FormatAmount(l.Principal, code), l.InterestPercent.String(), l.IntermediaryPercent.String(),
		FormatAmount(l.Principal, code), l.NetPercent().String(), FormatAmount(l.NetProceeds(), code),
		FormatAmount(l.IntermediaryCut(), code))
}

// ParseLoanDate parses a YYYY-MM-DD date.
func ParseLoanDate(s string) (time.Time, error) {
	return ParseDate(s)
}

// LoanQuote is returned when a loan is opened.
type LoanQuote struct {
	Loan            Loan            `json:"loan"`
	NetPercent      decimal.Decimal `json:"netPercent"`
	GrossInterest   decimal.Decimal `json:"grossInterest"`
	IntermediaryCut decimal.Decimal `json:"intermediaryCut"`
	NetProceeds     decimal.Decimal `json:"netProceeds"`
	Quote           RateQuote       `json:"quote"`
	Breakdown       string          `json:"breakdown"`
}

// NewLoanQuote derives the origination figures for loan.
func NewLoanQuote(loan Loan, quote RateQuote) LoanQuote {
	return LoanQuote{
		Loan:            loan,
		NetPercent:      loan.NetPercent(),
		GrossInterest:   loan.GrossInterest(),
		IntermediaryCut: loan.IntermediaryCut(),
		NetProceeds:     loan.NetProceeds(),
		Quote:           quote,
		Breakdown:       loan.Breakdown(),
	}
}

// LoanClosure is returned when a loan is closed.
type LoanClosure struct {
	Loan                   Loan            `json:"loan"`
	NetProceeds            decimal.Decimal `json:"netProceeds"`
	NetProceedsInReference decimal.Decimal `json:"netProceedsInReference"`
	ReferenceCurrency      string          `json:"referenceCurrency"`
	Posting                *Posting        `json:"posting,omitempty"` // nil when the net proceeds are zero
}

// LoanTotals aggregates loans sharing a currency.
type LoanTotals struct {
	CurrencyCode string          `json:"currencyCode"`
	Count        int             `json:"count"`
	Principal    decimal.Decimal `json:"principal"`
	NetProceeds  decimal.Decimal `json:"netProceeds"`
}

// LoanReferenceTotals is a listing's principal and net proceeds converted
// into one reference currency at the rate of the listing time.
type LoanReferenceTotals struct {
	CurrencyCode string          `json:"currencyCode"`
	Principal    decimal.Decimal `json:"principal"`
	NetProceeds  decimal.Decimal `json:"netProceeds"`
}

// LoanListing is a filtered list of loans with per-currency totals.
// Converted holds the totals for each reference that could be priced;
// Partial is set when at least one could not.
type LoanListing struct {
	Filter    LoanFilter            `json:"filter"`
	Loans     []Loan                `json:"loans"`
	Totals    []LoanTotals          `json:"totals"`
	Converted []LoanReferenceTotals `json:"converted"`
	PricedAt  time.Time             `json:"pricedAt"`
	Partial   bool                  `json:"partial"`
	Warnings  []string              `json:"warnings,omitempty"`
}
