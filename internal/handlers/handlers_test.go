package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/SscSPs/finance_assistant/internal/handlers"
	"github.com/SscSPs/finance_assistant/internal/middleware"
	"github.com/SscSPs/finance_assistant/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type HandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	ledgers      *MockLedgerService
	loans        *MockLoanService
	rates        *MockExchangeRateService
	reporting    *MockReportingService
	jwtSecret    string
	userID       string
	ledgerID     string
	authHeader   string
	ledgerPrefix string
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()
	suite.ledgerID = uuid.NewString()
	suite.ledgerPrefix = "/api/v1/ledgers/" + suite.ledgerID

	suite.ledgers = new(MockLedgerService)
	suite.loans = new(MockLoanService)
	suite.rates = new(MockExchangeRateService)
	suite.reporting = new(MockReportingService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret, SecondaryReferenceCurrency: "ARS"}
	container := &portssvc.ServiceContainer{
		ExchangeRate: suite.rates,
		Ledger:       suite.ledgers,
		Loan:         suite.loans,
		Reporting:    suite.reporting,
	}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, container, nil)

	token, err := middleware.IssueToken(suite.jwtSecret, "finance-test", suite.userID, time.Hour, time.Now())
	suite.Require().NoError(err)
	suite.authHeader = "Bearer " + token
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.ledgers.AssertExpectations(suite.T())
	suite.loans.AssertExpectations(suite.T())
	suite.rates.AssertExpectations(suite.T())
	suite.reporting.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", suite.authHeader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder, out any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (suite *HandlerTestSuite) posting(kind domain.MovementKind, amount string) *domain.Posting {
	return &domain.Posting{
		Movement: domain.Movement{
			MovementID:   uuid.NewString(),
			LedgerID:     suite.ledgerID,
			CurrencyCode: "USD",
			Amount:       decimal.RequireFromString(amount),
			Kind:         kind,
		},
		Quote: domain.IdentityQuote("USD", time.Now()),
	}
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestHealth() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlerTestSuite) TestMissingToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/ledgers", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestExpiredToken() {
	token, err := middleware.IssueToken(suite.jwtSecret, "finance-test", suite.userID, time.Minute, time.Now().Add(-time.Hour))
	suite.Require().NoError(err)
	suite.authHeader = "Bearer " + token

	w := suite.do(http.MethodGet, "/api/v1/ledgers", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "expired")
}

func (suite *HandlerTestSuite) TestCreateLedger() {
	req := dto.CreateLedgerRequest{Name: "Savings", ReferenceCurrency: "USD"}
	suite.ledgers.On("CreateLedger", mock.Anything, req, suite.userID).
		Return(&domain.Ledger{LedgerID: suite.ledgerID, OwnerID: suite.userID, Name: "Savings", ReferenceCurrency: "USD"}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/ledgers", req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.LedgerResponse
	suite.decode(w, &resp)
	suite.Equal(suite.ledgerID, resp.LedgerID)
	suite.Equal("USD", resp.ReferenceCurrency)
}

func (suite *HandlerTestSuite) TestCreateLedger_BindingFailure() {
	w := suite.do(http.MethodPost, "/api/v1/ledgers", map[string]string{"name": "Savings"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.ledgers.AssertNotCalled(suite.T(), "CreateLedger")
}

func (suite *HandlerTestSuite) TestGetLedger_Forbidden() {
	suite.ledgers.On("GetLedger", mock.Anything, suite.ledgerID, suite.userID).
		Return(nil, fmt.Errorf("%w: ledger belongs to another user", apperrors.ErrForbidden)).Once()

	w := suite.do(http.MethodGet, suite.ledgerPrefix, nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Contains(w.Body.String(), string(apperrors.KindForbidden))
}

func (suite *HandlerTestSuite) TestDeposit() {
	suite.ledgers.On("Deposit", mock.Anything, suite.ledgerID,
		mock.MatchedBy(func(r dto.MovementRequest) bool {
			return r.Amount.Equal(decimal.NewFromInt(100)) && r.CurrencyCode == "USD"
		}),
		suite.userID).
		Return(suite.posting(domain.MovementDeposit, "100"), nil).Once()

	w := suite.do(http.MethodPost, suite.ledgerPrefix+"/deposits", map[string]any{"currencyCode": "USD", "amount": "100"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.PostingResponse
	suite.decode(w, &resp)
	suite.True(resp.Movement.Amount.Equal(decimal.NewFromInt(100)))
	suite.Equal(string(domain.MovementDeposit), resp.Movement.Kind)
}

func (suite *HandlerTestSuite) TestWithdraw_InsufficientFunds() {
	suite.ledgers.On("Withdraw", mock.Anything, suite.ledgerID, mock.AnythingOfType("dto.MovementRequest"), suite.userID).
		Return(nil, fmt.Errorf("%w: balance 70 USD, withdrawal 80 USD", apperrors.ErrInsufficientFunds)).Once()

	w := suite.do(http.MethodPost, suite.ledgerPrefix+"/withdrawals", map[string]any{"currencyCode": "USD", "amount": "80"})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp map[string]string
	suite.decode(w, &resp)
	suite.Equal(string(apperrors.KindInsufficientFunds), resp["kind"])
}

func (suite *HandlerTestSuite) TestExpense_RateUnavailable() {
	suite.ledgers.On("Expense", mock.Anything, suite.ledgerID, mock.AnythingOfType("dto.ExpenseRequest"), suite.userID).
		Return(nil, fmt.Errorf("%w: no live or cached rate for EUR/USD", apperrors.ErrRateUnavailable)).Once()

	w := suite.do(http.MethodPost, suite.ledgerPrefix+"/expenses", map[string]any{"currencyCode": "EUR", "amount": "5", "category": "food"})

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *HandlerTestSuite) TestInternalErrorHidesMessage() {
	suite.ledgers.On("ListMovements", mock.Anything, suite.ledgerID, 5, suite.userID).
		Return(nil, fmt.Errorf("connection reset by peer")).Once()

	w := suite.do(http.MethodGet, suite.ledgerPrefix+"/movements?limit=5", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), "connection reset")
}

func (suite *HandlerTestSuite) TestBalances() {
	suite.ledgers.On("Balances", mock.Anything, suite.ledgerID, suite.userID).
		Return([]domain.CurrencyBalance{{CurrencyCode: "USD", Amount: decimal.NewFromInt(70)}}, nil).Once()
	suite.ledgers.On("Balance", mock.Anything, suite.ledgerID, "ars", suite.userID).
		Return(decimal.NewFromInt(1000), nil).Once()

	w := suite.do(http.MethodGet, suite.ledgerPrefix+"/balances", nil)
	suite.Equal(http.StatusOK, w.Code)
	var all dto.BalancesResponse
	suite.decode(w, &all)
	suite.Require().Len(all.Balances, 1)
	suite.Equal("USD", all.Balances[0].CurrencyCode)

	w = suite.do(http.MethodGet, suite.ledgerPrefix+"/balances?currency=ars", nil)
	suite.Equal(http.StatusOK, w.Code)
	var one dto.CurrencyBalanceResponse
	suite.decode(w, &one)
	suite.Equal("ARS", one.CurrencyCode)
	suite.True(one.Amount.Equal(decimal.NewFromInt(1000)))
}

func (suite *HandlerTestSuite) TestOpenAndCloseLoan() {
	loan := domain.Loan{
		LoanID:          uuid.NewString(),
		LedgerID:        suite.ledgerID,
		Principal:       decimal.NewFromInt(10000),
		CurrencyCode:    "USD",
		Counterparty:    "Bob",
		InterestPercent: decimal.NewFromInt(5),
		State:           domain.LoanActive,
	}
	quote := domain.NewLoanQuote(loan, domain.IdentityQuote("USD", time.Now()))
	suite.loans.On("OpenLoan", mock.Anything, suite.ledgerID,
		mock.MatchedBy(func(r dto.OpenLoanRequest) bool { return r.Counterparty == "Bob" && r.LoanDate == "2025-03-10" }),
		suite.userID).Return(&quote, nil).Once()

	w := suite.do(http.MethodPost, suite.ledgerPrefix+"/loans", map[string]any{
		"currencyCode":    "USD",
		"principal":       "10000",
		"counterparty":    "Bob",
		"loanDate":        "2025-03-10",
		"interestPercent": "5",
	})
	suite.Equal(http.StatusCreated, w.Code)
	var opened dto.LoanQuoteResponse
	suite.decode(w, &opened)
	suite.True(opened.NetProceeds.Equal(decimal.NewFromInt(500)))

	suite.loans.On("CloseLoan", mock.Anything, suite.ledgerID, loan.LoanID, suite.userID).
		Return(nil, apperrors.NewNotFoundError("no active loan with id "+loan.LoanID)).Once()

	w = suite.do(http.MethodPost, suite.ledgerPrefix+"/loans/"+loan.LoanID+"/close", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestListLoans_ParsesFilter() {
	query := dto.ListLoansQuery{Filter: domain.LoanFilterAll, Reference: "ARS"}
	suite.loans.On("ListLoans", mock.Anything, suite.ledgerID, query, suite.userID).
		Return(&domain.LoanListing{Filter: domain.LoanFilterAll}, nil).Once()

	w := suite.do(http.MethodGet, suite.ledgerPrefix+"/loans?filter=ALL", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListLoansResponse
	suite.decode(w, &resp)
	suite.Equal("all", resp.Filter)
}

func (suite *HandlerTestSuite) TestListLoans_ReferenceOverrideAndConvertedTotals() {
	query := dto.ListLoansQuery{Filter: domain.LoanFilterActive, Reference: "EUR"}
	listing := &domain.LoanListing{
		Filter: domain.LoanFilterActive,
		Converted: []domain.LoanReferenceTotals{
			{CurrencyCode: "USD", Principal: decimal.NewFromInt(600), NetProceeds: decimal.NewFromInt(60)},
		},
		Partial:  true,
		Warnings: []string{"EUR totals unavailable: rate source offline"},
	}
	suite.loans.On("ListLoans", mock.Anything, suite.ledgerID, query, suite.userID).Return(listing, nil).Once()

	w := suite.do(http.MethodGet, suite.ledgerPrefix+"/loans?reference=EUR", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListLoansResponse
	suite.decode(w, &resp)
	suite.True(resp.Partial)
	suite.Require().Len(resp.Converted, 1)
	suite.Contains(resp.Converted[0].FormattedPrincipal, "600.00")
	suite.Equal([]string{"EUR totals unavailable: rate source offline"}, resp.Warnings)
}

func (suite *HandlerTestSuite) TestSummary_DefaultsSecondReference() {
	summary := &domain.Summary{
		LedgerID: suite.ledgerID,
		References: []domain.ReferenceTotal{
			{CurrencyCode: "USD", LedgerBalance: decimal.NewFromInt(70), LoanPrincipal: decimal.Zero, Total: decimal.NewFromInt(70)},
		},
		Partial:  true,
		Warnings: []string{"ARS totals unavailable"},
	}
	suite.reporting.On("Summarize", mock.Anything, suite.ledgerID, "", "ARS", suite.userID).Return(summary, nil).Once()

	w := suite.do(http.MethodGet, suite.ledgerPrefix+"/summary", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.SummaryResponse
	suite.decode(w, &resp)
	suite.Equal("warning", resp.Status)
	suite.Len(resp.References, 1)
}

func (suite *HandlerTestSuite) TestSetExchangeRate() {
	req := dto.SetExchangeRateRequest{FromCurrencyCode: "ARS", ToCurrencyCode: "USD", Rate: decimal.RequireFromString("0.001")}
	suite.rates.On("SetRate", mock.Anything, mock.MatchedBy(func(r dto.SetExchangeRateRequest) bool {
		return r.FromCurrencyCode == "ARS" && r.Rate.Equal(req.Rate)
	}), suite.userID).Return(&domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: "ARS",
		ToCurrencyCode:   "USD",
		Rate:             req.Rate,
		Source:           domain.RateSourceManual,
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/exchange-rates", req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.ExchangeRateResponse
	suite.decode(w, &resp)
	suite.Equal(string(domain.RateSourceManual), resp.Source)
}

func (suite *HandlerTestSuite) TestConvert() {
	w := suite.do(http.MethodGet, "/api/v1/conversions?amount=abc&from=ARS&to=USD", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	quote := domain.RateQuote{From: "ARS", To: "USD", Rate: decimal.RequireFromString("0.001"), Source: domain.RateSourceCached}
	suite.rates.On("Convert", mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(1000)) }), "ARS", "USD").
		Return(&domain.Conversion{Amount: decimal.NewFromInt(1000), Converted: decimal.NewFromInt(1), Quote: quote}, nil).Once()

	w = suite.do(http.MethodGet, "/api/v1/conversions?amount=1000&from=ARS&to=USD", nil)
	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ConversionResponse
	suite.decode(w, &resp)
	suite.True(resp.Converted.Equal(decimal.NewFromInt(1)))
	suite.Equal(string(domain.RateSourceCached), resp.Quote.Source)
}

func (suite *HandlerTestSuite) TestQuoteExchangeRate_Unavailable() {
	suite.rates.On("Rate", mock.Anything, "EUR", "USD", mock.AnythingOfType("time.Time")).
		Return(nil, fmt.Errorf("%w: no live or cached rate for EUR/USD", apperrors.ErrRateUnavailable)).Once()

	w := suite.do(http.MethodGet, "/api/v1/exchange-rates/EUR/USD/quote", nil)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

// --- Run Test Suite ---
func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
