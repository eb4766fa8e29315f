package dto

import (
	"time"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenLoanRequest defines the structure for recording a new loan.
type OpenLoanRequest struct {
	CurrencyCode        string          `json:"currencyCode" binding:"required" validate:"required"`
	Principal           decimal.Decimal `json:"principal"`
	Counterparty        string          `json:"counterparty" binding:"required" validate:"required"`
	LoanDate            string          `json:"loanDate" binding:"required" validate:"required"` // YYYY-MM-DD
	InterestPercent     decimal.Decimal `json:"interestPercent"`
	HasIntermediary     bool            `json:"hasIntermediary"`
	IntermediaryPercent decimal.Decimal `json:"intermediaryPercent"`
	Description         string          `json:"description"`
}

// LoanResponse defines the structure for API responses containing a loan.
type LoanResponse struct {
	LoanID                  string          `json:"loanID"`
	Principal               decimal.Decimal `json:"principal"`
	CurrencyCode            string          `json:"currencyCode"`
	Counterparty            string          `json:"counterparty"`
	LoanDate                string          `json:"loanDate"`
	InterestPercent         decimal.Decimal `json:"interestPercent"`
	HasIntermediary         bool            `json:"hasIntermediary"`
	IntermediaryPercent     decimal.Decimal `json:"intermediaryPercent"`
	NetPercent              decimal.Decimal `json:"netPercent"`
	NetProceeds             decimal.Decimal `json:"netProceeds"`
	QuotedRateAtOrigination decimal.Decimal `json:"quotedRateAtOrigination"`
	QuoteReferenceCurrency  string          `json:"quoteReferenceCurrency"`
	Description             string          `json:"description"`
	State                   string          `json:"state"`
	CreatedAt               time.Time       `json:"createdAt"`
	ClosedAt                *time.Time      `json:"closedAt,omitempty"`
}

// ToLoanResponse converts a domain.Loan.
func ToLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:                  l.LoanID,
		Principal:               l.Principal,
		CurrencyCode:            l.CurrencyCode,
		Counterparty:            l.Counterparty,
		LoanDate:                l.LoanDate.Format(domain.LoanDateLayout),
		InterestPercent:         l.InterestPercent,
		HasIntermediary:         l.HasIntermediary,
		IntermediaryPercent:     l.IntermediaryPercent,
		NetPercent:              l.NetPercent(),
		NetProceeds:             l.NetProceeds(),
		QuotedRateAtOrigination: l.QuotedRateAtOrigination,
		QuoteReferenceCurrency:  l.QuoteReferenceCurrency,
		Description:             l.Description,
		State:                   string(l.State),
		CreatedAt:               l.CreatedAt,
		ClosedAt:                l.ClosedAt,
	}
}

// LoanQuoteResponse is returned when a loan is opened.
type LoanQuoteResponse struct {
	Loan            LoanResponse      `json:"loan"`
	GrossInterest   decimal.Decimal   `json:"grossInterest"`
	IntermediaryCut decimal.Decimal   `json:"intermediaryCut"`
	NetProceeds     decimal.Decimal   `json:"netProceeds"`
	Quote           RateQuoteResponse `json:"quote"`
	Breakdown       string            `json:"breakdown"`
}

// ToLoanQuoteResponse converts a domain.LoanQuote.
func ToLoanQuoteResponse(q *domain.LoanQuote) LoanQuoteResponse {
	return LoanQuoteResponse{
		Loan:            ToLoanResponse(&q.Loan),
		GrossInterest:   q.GrossInterest,
		IntermediaryCut: q.IntermediaryCut,
		NetProceeds:     q.NetProceeds,
		Quote:           ToRateQuoteResponse(q.Quote),
		Breakdown:       q.Breakdown,
	}
}

// LoanClosureResponse is returned when a loan is closed.
type LoanClosureResponse struct {
	Loan                   LoanResponse     `json:"loan"`
	NetProceeds            decimal.Decimal  `json:"netProceeds"`
	NetProceedsInReference decimal.Decimal  `json:"netProceedsInReference"`
	ReferenceCurrency      string           `json:"referenceCurrency"`
	Posting                *PostingResponse `json:"posting,omitempty"`
}

// ToLoanClosureResponse converts a domain.LoanClosure.
func ToLoanClosureResponse(c *domain.LoanClosure) LoanClosureResponse {
	out := LoanClosureResponse{
		Loan:                   ToLoanResponse(&c.Loan),
		NetProceeds:            c.NetProceeds,
		NetProceedsInReference: c.NetProceedsInReference,
		ReferenceCurrency:      c.ReferenceCurrency,
	}
	if c.Posting != nil {
		p := ToPostingResponse(c.Posting)
		out.Posting = &p
	}
	return out
}

// LoanTotalsResponse aggregates loans in one currency.
type LoanTotalsResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Count        int             `json:"count"`
	Principal    decimal.Decimal `json:"principal"`
	NetProceeds  decimal.Decimal `json:"netProceeds"`
}

// LoanReferenceTotalsResponse is the listing converted into one reference currency.
type LoanReferenceTotalsResponse struct {
	CurrencyCode         string          `json:"currencyCode"`
	Principal            decimal.Decimal `json:"principal"`
	NetProceeds          decimal.Decimal `json:"netProceeds"`
	FormattedPrincipal   string          `json:"formattedPrincipal"`
	FormattedNetProceeds string          `json:"formattedNetProceeds"`
}

// ListLoansQuery selects loans by state. Reference is an extra currency the
// totals are converted into next to the ledger's own reference currency.
type ListLoansQuery struct {
	Filter    domain.LoanFilter
	Reference string
}

// ListLoansResponse lists loans with per-currency totals.
type ListLoansResponse struct {
	Filter    string                        `json:"filter"`
	Loans     []LoanResponse                `json:"loans"`
	Totals    []LoanTotalsResponse          `json:"totals"`
	Converted []LoanReferenceTotalsResponse `json:"converted"`
	PricedAt  time.Time                     `json:"pricedAt"`
	Partial   bool                          `json:"partial"`
	Warnings  []string                      `json:"warnings,omitempty"`
}

// ToListLoansResponse converts a domain.LoanListing.
func ToListLoansResponse(l *domain.LoanListing) ListLoansResponse {
	out := ListLoansResponse{
		Filter:    string(l.Filter),
		Loans:     make([]LoanResponse, len(l.Loans)),
		Totals:    make([]LoanTotalsResponse, len(l.Totals)),
		Converted: make([]LoanReferenceTotalsResponse, len(l.Converted)),
		PricedAt:  l.PricedAt,
		Partial:   l.Partial,
		Warnings:  l.Warnings,
	}
	for i := range l.Loans {
		out.Loans[i] = ToLoanResponse(&l.Loans[i])
	}
	for i, t := range l.Totals {
		out.Totals[i] = LoanTotalsResponse(t)
	}
	for i, c := range l.Converted {
		out.Converted[i] = LoanReferenceTotalsResponse{
			CurrencyCode:         c.CurrencyCode,
			Principal:            c.Principal,
			NetProceeds:          c.NetProceeds,
			FormattedPrincipal:   domain.FormatAmount(c.Principal, c.CurrencyCode),
			FormattedNetProceeds: domain.FormatAmount(c.NetProceeds, c.CurrencyCode),
		}
	}
	return out
}
