package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to ledger reports
type reportingHandler struct {
	reportingService   portssvc.ReportingService
	secondaryReference string
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService, secondaryReference string) *reportingHandler {
	return &reportingHandler{
		reportingService:   rs,
		secondaryReference: secondaryReference,
	}
}

// registerReportingRoutes registers report routes under a ledger group.
// secondaryReference is used when the caller does not name a second currency.
func registerReportingRoutes(ledger *gin.RouterGroup, reportingService portssvc.ReportingService, secondaryReference string) {
	h := newReportingHandler(reportingService, secondaryReference)
	ledger.GET("/summary", h.getSummary)
}

// getSummary handles GET /ledgers/{ledger_id}/summary.
// Converts balances and active loan principal. Status is "warning" when only
// one reference could be priced.
func (h *reportingHandler) getSummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.SummaryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	if params.ReferenceB == "" {
		params.ReferenceB = h.secondaryReference
	}

	summary, err := h.reportingService.Summarize(c.Request.Context(), c.Param("ledger_id"), params.ReferenceA, params.ReferenceB, userID)
	if err != nil {
		respondWithError(c, err, "Failed to generate summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToSummaryResponse(summary))
}
