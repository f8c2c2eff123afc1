package services

import (
	"github.com/SscSPs/ledger_engine/internal/clock"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, store portsrepo.TransactionManager, clk clock.Clock) *portssvc.ServiceContainer {
	if clk == nil {
		clk = clock.SystemClock{}
	}

	return &portssvc.ServiceContainer{
		Account:   NewAccountService(store, clk),
		Posting:   NewPostingService(store, clk, cfg.LedgerCurrency),
		Reversal:  NewReversalService(store, clk, cfg.LedgerCurrency),
		Balance:   NewBalanceService(store, clk),
		Reporting: NewReportingService(store, WithReportingClock(clk)),
		Audit:     NewAuditService(store, clk),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade = (*accountService)(nil)
	_ portssvc.ReversalSvc      = (*reversalService)(nil)
)
