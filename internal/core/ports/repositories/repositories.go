package repositories

// Repositories is the set of repositories bound to one unit of work.
type Repositories interface {
	Accounts() AccountRepositoryFacade
	Transactions() TransactionRepositoryFacade
	Ledger() LedgerReader
	Audit() AuditRepositoryFacade
}

// Store is a ledger backing store.
type Store interface {
	TransactionManager

	// Close releases the underlying connections.
	Close() error
}
