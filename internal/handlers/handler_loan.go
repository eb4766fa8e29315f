package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/SscSPs/finance_assistant/internal/middleware"
	"github.com/gin-gonic/gin"
)

// loanHandler handles HTTP requests related to loans.
type loanHandler struct {
	loanService        portssvc.LoanSvcFacade
	secondaryReference string
}

func newLoanHandler(ls portssvc.LoanSvcFacade, secondaryReference string) *loanHandler {
	return &loanHandler{loanService: ls, secondaryReference: secondaryReference}
}

// registerLoanRoutes registers loan routes under a ledger group.
// Listing totals are converted into the ledger reference and secondaryReference.
func registerLoanRoutes(ledger *gin.RouterGroup, loanService portssvc.LoanSvcFacade, secondaryReference string) {
	h := newLoanHandler(loanService, secondaryReference)

	loans := ledger.Group("/loans")
	{
		loans.POST("", h.openLoan)
		loans.GET("", h.listLoans)
		loans.GET("/:loan_id", h.getLoan)
		loans.POST("/:loan_id/close", h.closeLoan)
	}
}

// openLoan handles POST /ledgers/{ledger_id}/loans.
// Quotes the loan currency in the ledger reference and returns the interest
// split. Nothing is posted until the loan is closed.
func (h *loanHandler) openLoan(c *gin.Context) {
	var req dto.OpenLoanRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	quote, err := h.loanService.OpenLoan(c.Request.Context(), c.Param("ledger_id"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to open loan")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Loan opened", slog.String("loan_id", quote.Loan.LoanID))
	c.JSON(http.StatusCreated, dto.ToLoanQuoteResponse(quote))
}

// listLoans handles GET /ledgers/{ledger_id}/loans. Totals are also converted
// into the ledger reference and ?reference, which defaults to the secondary
// reference currency.
func (h *loanHandler) listLoans(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	query := dto.ListLoansQuery{
		Filter:    domain.ParseLoanFilter(c.Query("filter")),
		Reference: c.DefaultQuery("reference", h.secondaryReference),
	}
	listing, err := h.loanService.ListLoans(c.Request.Context(), c.Param("ledger_id"), query, userID)
	if err != nil {
		respondWithError(c, err, "Failed to list loans")
		return
	}
	c.JSON(http.StatusOK, dto.ToListLoansResponse(listing))
}

// getLoan handles GET /ledgers/{ledger_id}/loans/{loan_id}.
func (h *loanHandler) getLoan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	loan, err := h.loanService.GetLoan(c.Request.Context(), c.Param("ledger_id"), c.Param("loan_id"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to get loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// closeLoan handles POST /ledgers/{ledger_id}/loans/{loan_id}/close.
// Posts the net proceeds in the loan currency. Closing twice returns 404.
func (h *loanHandler) closeLoan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	closure, err := h.loanService.CloseLoan(c.Request.Context(), c.Param("ledger_id"), c.Param("loan_id"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to close loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanClosureResponse(closure))
}
