package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/middleware"
	"github.com/SscSPs/finance_assistant/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// A nil rateLimiter disables request limiting.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services, rateLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	chain := []gin.HandlerFunc{}
	if rateLimiter != nil {
		chain = append(chain, middleware.RateLimit(rateLimiter))
	}
	chain = append(chain, middleware.AuthMiddleware(cfg.JWTSecret))
	v1 := r.Group("/api/v1", chain...)

	registerExchangeRateRoutes(v1, services.ExchangeRate)

	ledgers := registerLedgerRoutes(v1, services.Ledger)
	registerLoanRoutes(ledgers, services.Loan, cfg.SecondaryReferenceCurrency)
	registerReportingRoutes(ledgers, services.Reporting, cfg.SecondaryReferenceCurrency)
}
