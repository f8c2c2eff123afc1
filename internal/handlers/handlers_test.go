package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/handlers"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testActor  = "user-123"
	testSource = "billing"
)

type HandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	cfg       *config.Config
	accounts  *MockAccountService
	balances  *MockBalanceService
	posting   *MockPostingService
	reversal  *MockReversalService
	reporting *MockReportingService
	audit     *MockAuditService
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.cfg = &config.Config{
		JWTSecret:      "test-secret-key-that-is-long-enough",
		JWTIssuer:      "ledger-test",
		LedgerCurrency: "AOA",
	}
	suite.accounts = new(MockAccountService)
	suite.balances = new(MockBalanceService)
	suite.posting = new(MockPostingService)
	suite.reversal = new(MockReversalService)
	suite.reporting = new(MockReportingService)
	suite.audit = new(MockAuditService)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, suite.cfg, &portssvc.ServiceContainer{
		Account:   suite.accounts,
		Posting:   suite.posting,
		Reversal:  suite.reversal,
		Balance:   suite.balances,
		Reporting: suite.reporting,
		Audit:     suite.audit,
	})
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.accounts.AssertExpectations(suite.T())
	suite.balances.AssertExpectations(suite.T())
	suite.posting.AssertExpectations(suite.T())
	suite.reversal.AssertExpectations(suite.T())
	suite.reporting.AssertExpectations(suite.T())
	suite.audit.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) token(subject string) string {
	signed, err := utils.GenerateJWT(subject, suite.cfg.JWTSecret, time.Hour, suite.cfg.JWTIssuer)
	suite.Require().NoError(err)
	return signed
}

func (suite *HandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	return suite.doWithHeaders(method, path, body, map[string]string{
		"Authorization":   "Bearer " + suite.token(testActor),
		"X-Source-System": testSource,
	})
}

func (suite *HandlerTestSuite) doWithHeaders(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case []byte:
			buf.Write(b)
		default:
			suite.Require().NoError(json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder, into any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), into))
}

func (suite *HandlerTestSuite) TestHealth() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestMissingToken() {
	w := suite.doWithHeaders(http.MethodGet, "/api/v1/accounts", nil, map[string]string{"X-Source-System": testSource})
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestWrongIssuerRejected() {
	claims := jwt.RegisteredClaims{Issuer: "someone-else", Subject: testActor, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(suite.cfg.JWTSecret))
	suite.Require().NoError(err)

	w := suite.doWithHeaders(http.MethodGet, "/api/v1/accounts", nil, map[string]string{
		"Authorization":   "Bearer " + signed,
		"X-Source-System": testSource,
	})
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestMissingSourceSystem() {
	w := suite.doWithHeaders(http.MethodGet, "/api/v1/accounts", nil, map[string]string{
		"Authorization": "Bearer " + suite.token(testActor),
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCreateAccount_Success() {
	req := dto.RegisterAccountRequest{Code: "1000", Name: "Cash", AccountType: "ASSET"}
	now := time.Now().UTC()
	acc := &domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
		Level:       1,
		IsActive:    true,
		AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: testActor, LastUpdatedAt: now, LastUpdatedBy: testActor, Version: 1},
	}
	suite.accounts.On("Register", mock.Anything, req, testActor, testSource).Return(acc, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.decode(w, &resp)
	suite.Equal("1000", resp.Code)
	suite.Equal(domain.Asset, resp.AccountType)
	suite.Equal("", resp.ParentAccountID)
}

func (suite *HandlerTestSuite) TestCreateAccount_Duplicate() {
	req := dto.RegisterAccountRequest{Code: "1000", Name: "Cash", AccountType: "ASSET"}
	suite.accounts.On("Register", mock.Anything, req, testActor, testSource).Return(nil, apperrors.ErrDuplicateAccount).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", req)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestCreateAccount_BadJSON() {
	w := suite.do(http.MethodPost, "/api/v1/accounts", []byte("{not json"))
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestGetAccount_NotFound() {
	suite.accounts.On("Lookup", mock.Anything, "9999").Return(nil, apperrors.ErrAccountNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/9999", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestListAccounts_ActiveOnly() {
	suite.accounts.On("List", mock.Anything, true).Return([]domain.Account{{Code: "1000"}, {Code: "2000"}}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts?activeOnly=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp struct {
		Accounts []dto.AccountResponse `json:"accounts"`
	}
	suite.decode(w, &resp)
	suite.Len(resp.Accounts, 2)
}

func (suite *HandlerTestSuite) TestDeactivateAccount() {
	suite.accounts.On("Deactivate", mock.Anything, "1000", testActor, testSource).
		Return(&domain.Account{Code: "1000", IsActive: false}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/1000/deactivate", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountResponse
	suite.decode(w, &resp)
	suite.False(resp.IsActive)
}

func (suite *HandlerTestSuite) TestAccountBalance_AsOf() {
	asOf := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	suite.balances.On("BalanceOf", mock.Anything, "1000", mock.MatchedBy(func(t *time.Time) bool {
		return t != nil && t.Equal(asOf)
	})).Return(decimal.RequireFromString("250.00"), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/1000/balance?asOf=2024-03-31T23:59:59Z", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountBalanceResponse
	suite.decode(w, &resp)
	suite.True(resp.Balance.Equal(decimal.RequireFromString("250")))
	suite.Equal("AOA", resp.CurrencyCode)
	suite.NotEmpty(resp.Formatted)
	suite.True(resp.AsOf.Equal(asOf))
}

func (suite *HandlerTestSuite) TestPostTransaction_Success() {
	body := map[string]any{
		"businessEventType": "SALE",
		"description":       "Cash sale",
		"transactionDate":   "2024-03-01T00:00:00Z",
		"entries": []map[string]any{
			{"accountCode": "1000", "entryType": "DEBIT", "amount": "100.00"},
			{"accountCode": "4000", "entryType": "CREDIT", "amount": "100.00"},
		},
	}
	txn := &domain.Transaction{TransactionID: uuid.NewString(), TransactionNumber: "20240301-000001", Status: domain.Posted}
	suite.posting.On("Post", mock.Anything, mock.MatchedBy(func(in domain.TransactionInput) bool {
		return in.BusinessEventType == "SALE" && len(in.Entries) == 2 && in.Entries[0].Amount == "100.00"
	}), testActor, testSource).Return(txn, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", body)

	suite.Equal(http.StatusCreated, w.Code)
	var resp domain.Transaction
	suite.decode(w, &resp)
	suite.Equal("20240301-000001", resp.TransactionNumber)
	suite.Equal(domain.Posted, resp.Status)
}

func (suite *HandlerTestSuite) TestPostTransaction_Unbalanced() {
	body := map[string]any{
		"businessEventType": "SALE",
		"description":       "Cash sale",
		"transactionDate":   "2024-03-01T00:00:00Z",
		"entries": []map[string]any{
			{"accountCode": "1000", "entryType": "DEBIT", "amount": "100.00"},
			{"accountCode": "4000", "entryType": "CREDIT", "amount": "99.99"},
		},
	}
	suite.posting.On("Post", mock.Anything, mock.Anything, testActor, testSource).Return(nil, apperrors.ErrUnbalancedEntry).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", body)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestPostTransaction_InternalErrorHidden() {
	body := map[string]any{"businessEventType": "SALE", "description": "x", "transactionDate": "2024-03-01T00:00:00Z"}
	suite.posting.On("Post", mock.Anything, mock.Anything, testActor, testSource).
		Return(nil, apperrors.NewAppError(500, "database unreachable at 10.0.0.5", nil)).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", body)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), "10.0.0.5")
}

func (suite *HandlerTestSuite) TestPostTransaction_BadJSONIsAudited() {
	suite.posting.On("RecordRejected", mock.Anything, testActor, testSource, mock.MatchedBy(func(err error) bool {
		return errors.Is(err, apperrors.ErrValidation)
	})).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", []byte(`{"businessEventType": "SALE", "entries": [`))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.posting.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestGetTransaction_NotFound() {
	suite.posting.On("GetTransaction", mock.Anything, "missing").Return(nil, apperrors.ErrTransactionNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/transactions/missing", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestReverseTransaction() {
	id := uuid.NewString()
	reversal := &domain.Transaction{TransactionID: uuid.NewString(), IsReversal: true, Reverses: &id, Status: domain.Posted}
	suite.reversal.On("Reverse", mock.Anything, id, "entered twice", testActor, testSource).Return(reversal, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions/"+id+"/reverse", dto.ReverseTransactionRequest{Reason: "entered twice"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp domain.Transaction
	suite.decode(w, &resp)
	suite.True(resp.IsReversal)
	suite.Equal(id, *resp.Reverses)
}

func (suite *HandlerTestSuite) TestReverseTransaction_AlreadyReversed() {
	id := uuid.NewString()
	suite.reversal.On("Reverse", mock.Anything, id, "again", testActor, testSource).Return(nil, apperrors.ErrAlreadyReversed).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions/"+id+"/reverse", dto.ReverseTransactionRequest{Reason: "again"})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestReverseTransaction_ReasonRequired() {
	w := suite.do(http.MethodPost, "/api/v1/transactions/abc/reverse", map[string]string{})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestIntegrity() {
	suite.balances.On("VerifyIntegrity", mock.Anything, (*string)(nil)).
		Return(&domain.IntegrityResult{Valid: false, Violations: []string{"hash mismatch"}, Checked: 3}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/integrity", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.IntegrityResult
	suite.decode(w, &resp)
	suite.False(resp.Valid)
	suite.Equal(3, resp.Checked)
}

func (suite *HandlerTestSuite) TestIntegrity_SingleTransaction() {
	id := uuid.NewString()
	suite.balances.On("VerifyIntegrity", mock.Anything, mock.MatchedBy(func(p *string) bool {
		return p != nil && *p == id
	})).Return(&domain.IntegrityResult{Valid: true, Violations: []string{}, Checked: 1}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/integrity?transactionID="+id, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestTrialBalance() {
	rows := []domain.TrialBalanceRow{{Code: "1000", Name: "Cash", AccountType: domain.Asset, Balance: decimal.RequireFromString("10.00")}}
	suite.balances.On("TrialBalance", mock.Anything, (*time.Time)(nil)).Return(rows, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/trial-balance", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TrialBalanceResponse
	suite.decode(w, &resp)
	suite.Len(resp.Rows, 1)
}

func (suite *HandlerTestSuite) TestAuditLog() {
	next := "token"
	page := &dto.ListAuditLogResponse{Entries: []domain.AuditLogEntry{{AuditID: uuid.NewString(), EventType: domain.EventTransactionPosted}}, NextToken: &next}
	suite.audit.On("ListAuditLog", mock.Anything, dto.ListAuditLogParams{Limit: 1, NextToken: "abc"}).Return(page, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/audit-log?limit=1&nextToken=abc", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListAuditLogResponse
	suite.decode(w, &resp)
	suite.Len(resp.Entries, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal("token", *resp.NextToken)
}

func (suite *HandlerTestSuite) TestAuditLog_BadCursor() {
	suite.audit.On("ListAuditLog", mock.Anything, mock.Anything).Return(nil, apperrors.ErrValidation).Once()

	w := suite.do(http.MethodGet, "/api/v1/audit-log?nextToken=garbage", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestTrialBalanceReport() {
	report := &domain.TrialBalanceReport{ReportEnvelope: domain.ReportEnvelope{ReportID: uuid.NewString(), ReportType: domain.ReportTrialBalance, ReportHash: "abc"}}
	suite.reporting.On("TrialBalance", mock.Anything, mock.MatchedBy(func(p dto.TrialBalanceParams) bool {
		return p.IncludeZero && p.AsOf == nil
	}), testActor, testSource).Return(report, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/trial-balance?includeZero=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.TrialBalanceReport
	suite.decode(w, &resp)
	suite.Equal(report.ReportID, resp.ReportID)
	suite.Equal("abc", resp.ReportHash)
}

func (suite *HandlerTestSuite) TestIncomeStatementReport_InvalidPeriod() {
	suite.reporting.On("IncomeStatement", mock.Anything, mock.Anything, testActor, testSource).Return(nil, apperrors.ErrValidation).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/income-statement?from=2024-02-01T00:00:00Z&to=2024-01-01T00:00:00Z", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestGeneralLedgerReport_UnknownAccount() {
	suite.reporting.On("GeneralLedger", mock.Anything, mock.MatchedBy(func(p dto.GeneralLedgerParams) bool {
		return p.AccountCode != nil && *p.AccountCode == "9999"
	}), testActor, testSource).Return(nil, apperrors.ErrAccountNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/general-ledger?accountCode=9999", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestVerifyReport() {
	doc := []byte(`{"reportID":"r1","reportHash":"deadbeef"}`)
	suite.reporting.On("VerifyDocument", doc).Return(false, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/reports/verify", doc)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.VerifyReportResponse
	suite.decode(w, &resp)
	suite.False(resp.Valid)
}

func (suite *HandlerTestSuite) TestVerifyReport_EmptyBody() {
	w := suite.do(http.MethodPost, "/api/v1/reports/verify", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}
