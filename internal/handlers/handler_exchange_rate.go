package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/SscSPs/finance_assistant/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	exchangeRates := rg.Group("/exchange-rates")
	{
		exchangeRates.GET("", h.listExchangeRates)
		exchangeRates.POST("", h.setExchangeRate)
		exchangeRates.GET("/:from/:to", h.getExchangeRate)
		exchangeRates.GET("/:from/:to/quote", h.quoteExchangeRate)
		exchangeRates.POST("/:from/:to/refresh", h.refreshExchangeRate)
	}
	rg.GET("/conversions", h.convert)
}

// setExchangeRate handles POST /exchange-rates.
// Replaces any cached rate for the pair.
func (h *exchangeRateHandler) setExchangeRate(c *gin.Context) {
	var req dto.SetExchangeRateRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to set exchange rate",
		slog.String("from", req.FromCurrencyCode),
		slog.String("to", req.ToCurrencyCode),
		slog.String("rate", req.Rate.String()),
	)

	rate, err := h.exchangeRateService.SetRate(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to set exchange rate")
		return
	}
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(rate))
}

// listExchangeRates handles GET /exchange-rates.
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	rates, err := h.exchangeRateService.ListRates(c.Request.Context())
	if err != nil {
		respondWithError(c, err, "Failed to list exchange rates")
		return
	}
	c.JSON(http.StatusOK, dto.ToListExchangeRateResponse(rates))
}

// getExchangeRate handles GET /exchange-rates/{from}/{to}.
// Reads the rate cache only. Falls back to the inverse of the reverse pair.
func (h *exchangeRateHandler) getExchangeRate(c *gin.Context) {
	rate, err := h.exchangeRateService.GetStoredRate(c.Request.Context(), c.Param("from"), c.Param("to"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve exchange rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// quoteExchangeRate handles GET /exchange-rates/{from}/{to}/quote.
// Tries the live source first and falls back to the cache.
func (h *exchangeRateHandler) quoteExchangeRate(c *gin.Context) {
	ctx := c.Request.Context()
	quote, err := h.exchangeRateService.Rate(ctx, c.Param("from"), c.Param("to"), time.Now())
	if err != nil {
		respondWithError(c, err, "Failed to quote exchange rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToRateQuoteResponse(*quote))
}

// refreshExchangeRate handles POST /exchange-rates/{from}/{to}/refresh.
func (h *exchangeRateHandler) refreshExchangeRate(c *gin.Context) {
	quote, err := h.exchangeRateService.RefreshRate(c.Request.Context(), c.Param("from"), c.Param("to"))
	if err != nil {
		respondWithError(c, err, "Failed to refresh exchange rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToRateQuoteResponse(*quote))
}

// convert handles GET /conversions.
func (h *exchangeRateHandler) convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "amount must be a decimal number"})
		return
	}
	conversion, err := h.exchangeRateService.Convert(c.Request.Context(), amount, c.Query("from"), c.Query("to"))
	if err != nil {
		respondWithError(c, err, "Failed to convert amount")
		return
	}
	c.JSON(http.StatusOK, dto.ToConversionResponse(conversion))
}
