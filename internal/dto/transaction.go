package dto

import "time"

// ReverseTransactionRequest carries the reason recorded on a reversal.
type ReverseTransactionRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// AccountBalanceParams defines query parameters for a balance lookup.
type AccountBalanceParams struct {
	AsOf *time.Time `form:"asOf" time_format:"2006-01-02T15:04:05Z07:00"`
}

// IntegrityParams narrows an integrity check to one transaction.
type IntegrityParams struct {
	TransactionID *string `form:"transactionID"`
}
