package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnumerations(t *testing.T) {
	at, err := domain.ParseAccountType(" asset ")
	require.NoError(t, err)
	assert.Equal(t, domain.Asset, at)

	_, err = domain.ParseAccountType("CONTRA")
	assert.Error(t, err)

	et, err := domain.ParseEntryType("credit")
	require.NoError(t, err)
	assert.Equal(t, domain.Credit, et)
	assert.Equal(t, domain.Debit, et.Flip())

	_, err = domain.ParseEntryType("D")
	assert.Error(t, err)

	st, err := domain.ParseTransactionStatus("REVERSED")
	require.NoError(t, err)
	assert.Equal(t, domain.Reversed, st)

	_, err = domain.ParseTransactionStatus("VOID")
	assert.Error(t, err)

	sev, err := domain.ParseSeverity("warning")
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityWarning, sev)

	_, err = domain.ParseSeverity("DEBUG")
	assert.Error(t, err)

	rt, err := domain.ParseReportType("balance_sheet")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportBalanceSheet, rt)
}

func TestAccountType_IsDebitNormal(t *testing.T) {
	assert.True(t, domain.Asset.IsDebitNormal())
	assert.True(t, domain.Expense.IsDebitNormal())
	assert.False(t, domain.Liability.IsDebitNormal())
	assert.False(t, domain.Equity.IsDebitNormal())
	assert.False(t, domain.Revenue.IsDebitNormal())
}

func TestTransactionNumbering(t *testing.T) {
	// 23:30 at UTC-3 is already the next UTC day.
	local := time.Date(2025, 3, 14, 23, 30, 0, 0, time.FixedZone("BRT", -3*60*60))

	day := domain.SequenceDay(local)
	assert.Equal(t, "20250315", day)
	assert.Equal(t, "20250315-000001", domain.FormatTransactionNumber(day, 1))
	assert.Equal(t, "20250315-000042", domain.FormatTransactionNumber(day, 42))
	assert.Equal(t, "20250315-999999", domain.FormatTransactionNumber(day, domain.MaxDailySequence))
}
