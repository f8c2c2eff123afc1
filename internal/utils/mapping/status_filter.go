package mapping

import (
	"strings"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// LedgerStatusFilter renders a SQL predicate matching rows whose status is one
// of domain.LedgerStatuses. The values come from the closed status set, never
// from callers, so they are inlined rather than bound.
func LedgerStatusFilter(column string) string {
	quoted := make([]string, len(domain.LedgerStatuses))
	for i, s := range domain.LedgerStatuses {
		quoted[i] = "'" + string(s) + "'"
	}
	return column + " IN (" + strings.Join(quoted, ", ") + ")"
}
