package services_test

import (
	"testing"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/stretchr/testify/suite"
)

type ReportingServiceTestSuite struct {
	serviceSuite
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func (s *ReportingServiceTestSuite) openLoan(code, principal string) *domain.LoanQuote {
	quote, err := s.services.Loan.OpenLoan(s.ctx, s.ledger.LedgerID, loanRequest(code, principal, "10", ""), owner)
	s.Require().NoError(err)
	return quote
}

func (s *ReportingServiceTestSuite) TestSummarize_BothReferences() {
	s.live.quotes("ARS", "USD", "0.001")
	s.live.quotes("USD", "ARS", "1000")
	s.deposit("USD", "100")
	s.deposit("ARS", "50000")
	s.openLoan("ARS", "1000")

	summary, err := s.services.Reporting.Summarize(s.ctx, s.ledger.LedgerID, "USD", "ARS", owner)
	s.Require().NoError(err)
	s.False(summary.Partial)
	s.Empty(summary.Warnings)
	s.True(fixedNow.Equal(summary.GeneratedAt))

	s.Require().Len(summary.References, 2)
	usd, ars := summary.References[0], summary.References[1]
	s.Equal("USD", usd.CurrencyCode)
	s.assertDecimal("150", usd.LedgerBalance)
	s.assertDecimal("1", usd.LoanPrincipal)
	s.assertDecimal("151", usd.Total)
	s.Equal("ARS", ars.CurrencyCode)
	s.assertDecimal("150000", ars.LedgerBalance)
	s.assertDecimal("1000", ars.LoanPrincipal)
	s.assertDecimal("151000", ars.Total)

	s.Require().Len(summary.Breakdown, 2)
	s.Equal("ARS", summary.Breakdown[0].CurrencyCode)
	s.assertDecimal("50000", summary.Breakdown[0].Balance)
	s.assertDecimal("1000", summary.Breakdown[0].LoanPrincipal)
	s.Equal("USD", summary.Breakdown[1].CurrencyCode)
	s.True(summary.Breakdown[1].LoanPrincipal.IsZero())
}

func (s *ReportingServiceTestSuite) TestSummarize_ClosedLoansExcluded() {
	quote := s.openLoan("USD", "1000")
	_, err := s.services.Loan.CloseLoan(s.ctx, s.ledger.LedgerID, quote.Loan.LoanID, owner)
	s.Require().NoError(err)

	summary, err := s.services.Reporting.Summarize(s.ctx, s.ledger.LedgerID, "", "", owner)
	s.Require().NoError(err)
	s.Require().Len(summary.References, 1)
	s.Equal("USD", summary.References[0].CurrencyCode)
	s.assertDecimal("100", summary.References[0].LedgerBalance)
	s.True(summary.References[0].LoanPrincipal.IsZero())
}

func (s *ReportingServiceTestSuite) TestSummarize_PartialWhenOneReferenceFails() {
	s.live.quotes("ARS", "USD", "0.001")
	s.live.offline()
	s.deposit("USD", "100")
	s.deposit("ARS", "50000")

	summary, err := s.services.Reporting.Summarize(s.ctx, s.ledger.LedgerID, "USD", "EUR", owner)
	s.Require().NoError(err)
	s.True(summary.Partial)
	s.Require().Len(summary.Warnings, 1)
	s.Contains(summary.Warnings[0], "EUR")
	s.Require().Len(summary.References, 1)
	s.Equal("USD", summary.References[0].CurrencyCode)
	s.assertDecimal("150", summary.References[0].Total)
}

func (s *ReportingServiceTestSuite) TestSummarize_FailsWhenNoReferenceResolves() {
	s.live.quotes("BOB", "USD", "0.1447")
	s.live.offline()
	s.deposit("BOB", "100")

	_, err := s.services.Reporting.Summarize(s.ctx, s.ledger.LedgerID, "EUR", "GBP", owner)
	s.ErrorIs(err, apperrors.ErrRateUnavailable)
}

func (s *ReportingServiceTestSuite) TestSummarize_DuplicateReferenceCollapses() {
	s.deposit("USD", "5")
	summary, err := s.services.Reporting.Summarize(s.ctx, s.ledger.LedgerID, "usd", "USD", owner)
	s.Require().NoError(err)
	s.Len(summary.References, 1)
}

func (s *ReportingServiceTestSuite) TestSummarize_InvalidReference() {
	_, err := s.services.Reporting.Summarize(s.ctx, s.ledger.LedgerID, "US", "", owner)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.services.Reporting.Summarize(s.ctx, s.ledger.LedgerID, "USD", "", "intruder")
	s.ErrorIs(err, apperrors.ErrForbidden)
}
