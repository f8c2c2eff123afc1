package pgsql

import (
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// txRepositories binds every repository to one pgx.Tx.
type txRepositories struct {
	accounts     *PgxAccountRepository
	transactions *PgxTransactionRepository
	ledger       *PgxLedgerRepository
	audit        *PgxAuditRepository
}

func newTxRepositories(q querier) portsrepo.Repositories {
	return &txRepositories{
		accounts:     newPgxAccountRepository(q),
		transactions: newPgxTransactionRepository(q),
		ledger:       newPgxLedgerRepository(q),
		audit:        newPgxAuditRepository(q),
	}
}

func (r *txRepositories) Accounts() portsrepo.AccountRepositoryFacade         { return r.accounts }
func (r *txRepositories) Transactions() portsrepo.TransactionRepositoryFacade { return r.transactions }
func (r *txRepositories) Ledger() portsrepo.LedgerReader                      { return r.ledger }
func (r *txRepositories) Audit() portsrepo.AuditRepositoryFacade              { return r.audit }
