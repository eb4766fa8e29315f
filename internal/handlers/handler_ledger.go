package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/SscSPs/finance_assistant/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for ledgers and their movements.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers ledger routes and returns the per-ledger group
// so nested resources can hang off it.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) *gin.RouterGroup {
	h := newLedgerHandler(ledgerService)

	ledgers := rg.Group("/ledgers")
	{
		ledgers.POST("", h.createLedger)
		ledgers.GET("", h.listLedgers)
	}

	ledger := ledgers.Group("/:ledger_id")
	{
		ledger.GET("", h.getLedger)
		ledger.GET("/balances", h.getBalances)
		ledger.GET("/balance/:reference", h.getBalanceIn)
		ledger.GET("/movements", h.listMovements)
		ledger.POST("/movements", h.postMovement)
		ledger.POST("/deposits", h.deposit)
		ledger.POST("/withdrawals", h.withdraw)
		ledger.POST("/expenses", h.expense)
		ledger.GET("/history", h.listHistory)
	}
	return ledger
}

// createLedger handles POST /ledgers.
func (h *ledgerHandler) createLedger(c *gin.Context) {
	var req dto.CreateLedgerRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ledger, err := h.ledgerService.CreateLedger(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to create ledger")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Ledger created", slog.String("ledger_id", ledger.LedgerID))
	c.JSON(http.StatusCreated, dto.ToLedgerResponse(ledger))
}

// listLedgers handles GET /ledgers.
func (h *ledgerHandler) listLedgers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ledgers, err := h.ledgerService.ListLedgers(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to list ledgers")
		return
	}
	c.JSON(http.StatusOK, dto.ToListLedgerResponse(ledgers))
}

// getLedger handles GET /ledgers/{ledger_id}.
func (h *ledgerHandler) getLedger(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ledger, err := h.ledgerService.GetLedger(c.Request.Context(), c.Param("ledger_id"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to get ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerResponse(ledger))
}

// getBalances handles GET /ledgers/{ledger_id}/balances.
// Lists every non-zero balance, or the balance of one currency when ?currency
// is set.
func (h *ledgerHandler) getBalances(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ledgerID := c.Param("ledger_id")
	ctx := c.Request.Context()

	if code := c.Query("currency"); code != "" {
		amount, err := h.ledgerService.Balance(ctx, ledgerID, code, userID)
		if err != nil {
			respondWithError(c, err, "Failed to get balance")
			return
		}
		code = strings.ToUpper(code)
		c.JSON(http.StatusOK, dto.CurrencyBalanceResponse{CurrencyCode: code, Amount: amount, Formatted: domain.FormatAmount(amount, code)})
		return
	}

	balances, err := h.ledgerService.Balances(ctx, ledgerID, userID)
	if err != nil {
		respondWithError(c, err, "Failed to list balances")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalancesResponse(ledgerID, balances))
}

// getBalanceIn handles GET /ledgers/{ledger_id}/balance/{reference}.
func (h *ledgerHandler) getBalanceIn(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	balance, err := h.ledgerService.BalanceIn(c.Request.Context(), c.Param("ledger_id"), c.Param("reference"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to price balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToReferenceBalanceResponse(balance))
}

// listMovements handles GET /ledgers/{ledger_id}/movements.
func (h *ledgerHandler) listMovements(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	movements, err := h.ledgerService.ListMovements(c.Request.Context(), c.Param("ledger_id"), params.Limit, userID)
	if err != nil {
		respondWithError(c, err, "Failed to list movements")
		return
	}
	c.JSON(http.StatusOK, dto.ToListMovementResponse(movements))
}

// listHistory handles GET /ledgers/{ledger_id}/history.
func (h *ledgerHandler) listHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	entries, err := h.ledgerService.History(c.Request.Context(), c.Param("ledger_id"), params.Limit, userID)
	if err != nil {
		respondWithError(c, err, "Failed to list history")
		return
	}
	c.JSON(http.StatusOK, dto.ToListHistoryResponse(entries))
}

// postMovement handles POST /ledgers/{ledger_id}/movements.
func (h *ledgerHandler) postMovement(c *gin.Context) {
	h.handleMovement(c, h.ledgerService.Post, "Failed to post movement")
}

// deposit handles POST /ledgers/{ledger_id}/deposits.
func (h *ledgerHandler) deposit(c *gin.Context) {
	h.handleMovement(c, h.ledgerService.Deposit, "Failed to deposit")
}

// withdraw handles POST /ledgers/{ledger_id}/withdrawals.
// Rejected with 422 when the reference balance would go negative.
func (h *ledgerHandler) withdraw(c *gin.Context) {
	h.handleMovement(c, h.ledgerService.Withdraw, "Failed to withdraw")
}

// expense handles POST /ledgers/{ledger_id}/expenses.
func (h *ledgerHandler) expense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	posting, err := h.ledgerService.Expense(c.Request.Context(), c.Param("ledger_id"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to record expense")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPostingResponse(posting))
}

type movementFunc func(ctx context.Context, ledgerID string, req dto.MovementRequest, userID string) (*domain.Posting, error)

func (h *ledgerHandler) handleMovement(c *gin.Context, post movementFunc, failure string) {
	var req dto.MovementRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	posting, err := post(c.Request.Context(), c.Param("ledger_id"), req, userID)
	if err != nil {
		respondWithError(c, err, failure)
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Movement posted",
		slog.String("movement_id", posting.Movement.MovementID),
		slog.String("kind", string(posting.Movement.Kind)))
	c.JSON(http.StatusCreated, dto.ToPostingResponse(posting))
}
