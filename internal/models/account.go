package models

// Account is the persisted row of the chart of accounts.
type Account struct {
	AccountID       string  `db:"account_id"`
	Code            string  `db:"code"`
	Name            string  `db:"name"`
	AccountType     string  `db:"account_type"`
	ParentAccountID *string `db:"parent_account_id"` // Nullable
	Level           int     `db:"level"`
	Description     string  `db:"description"`
	IsActive        bool    `db:"is_active"`
	AuditFields
}
