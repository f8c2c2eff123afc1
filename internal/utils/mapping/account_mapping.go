package mapping

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		Code:            d.Code,
		Name:            d.Name,
		AccountType:     string(d.AccountType),
		ParentAccountID: d.ParentAccountID,
		Level:           d.Level,
		Description:     d.Description,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account. A stored
// account type outside the closed set is an error.
func ToDomainAccount(m models.Account) (domain.Account, error) {
	accountType, err := domain.ParseAccountType(m.AccountType)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %s: %w", m.AccountID, err)
	}
	return domain.Account{
		AccountID:       m.AccountID,
		Code:            m.Code,
		Name:            m.Name,
		AccountType:     accountType,
		ParentAccountID: m.ParentAccountID,
		Level:           m.Level,
		Description:     m.Description,
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}, nil
}
