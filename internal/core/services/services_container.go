package services

import (
	"time"

	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// live may be nil, in which case only cached rates are used. clock may be nil.
func NewServiceContainer(repos portsrepo.RepositoryProvider, live portssvc.LiveRateSource, clock func() time.Time) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	rateOpts := []ExchangeRateServiceOption{WithExchangeRateClock(clock)}
	if live != nil {
		rateOpts = append(rateOpts, WithLiveRateSource(live))
	}
	// The exchange rate service is the rate provider every other service prices with.
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, rateOpts...)

	container.Ledger = NewLedgerService(repos, container.ExchangeRate, WithLedgerClock(clock))
	container.Loan = NewLoanService(repos, container.ExchangeRate, WithLoanClock(clock))
	container.Reporting = NewReportingService(repos, container.ExchangeRate, WithReportingClock(clock))

	return container
}
