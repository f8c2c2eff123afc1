package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/auditcontext"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
)

const (
	testSecret = "middleware-test-secret"
	testIssuer = "ledger-test"
)

func signToken(t *testing.T, claims jwt.RegisteredClaims, method jwt.SigningMethod) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func validClaims(subject string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	return r
}

func serve(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	expired := validClaims("user-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := validClaims("user-1")
	wrongIssuer.Issuer = "other"

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{name: "valid token", header: "Bearer " + signToken(t, validClaims("user-1"), jwt.SigningMethodHS256), wantStatus: http.StatusOK, wantUser: "user-1"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, expired, jwt.SigningMethodHS256), wantStatus: http.StatusUnauthorized},
		{name: "wrong issuer", header: "Bearer " + signToken(t, wrongIssuer, jwt.SigningMethodHS256), wantStatus: http.StatusUnauthorized},
		{name: "empty subject", header: "Bearer " + signToken(t, validClaims(""), jwt.SigningMethodHS256), wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			r := newEngine(AuthMiddleware(testSecret, testIssuer))
			r.GET("/", func(c *gin.Context) {
				gotUser, _ = GetUserIDFromContext(c)
				c.Status(http.StatusOK)
			})

			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := serve(r, headers)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantUser, gotUser)
		})
	}
}

func TestAuthMiddleware_UserInRequestContext(t *testing.T) {
	r := newEngine(AuthMiddleware(testSecret, testIssuer))
	var fromCtx string
	r.GET("/", func(c *gin.Context) {
		fromCtx, _ = UserIDFromCtx(c.Request.Context())
	})

	serve(r, map[string]string{"Authorization": "Bearer " + signToken(t, validClaims("user-9"), jwt.SigningMethodHS256)})
	assert.Equal(t, "user-9", fromCtx)
}

func TestRequireSourceSystem(t *testing.T) {
	r := newEngine(RequireSourceSystem())
	var got string
	r.GET("/", func(c *gin.Context) {
		got, _ = GetSourceSystemFromContext(c)
		c.Status(http.StatusOK)
	})

	w := serve(r, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, map[string]string{SourceSystemHeader: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, map[string]string{SourceSystemHeader: " payroll "})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "payroll", got)
}

func TestStructuredLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := newEngine(StructuredLoggingMiddleware(logger))
	var requestID, ip string
	var ctxLogger *slog.Logger
	r.GET("/", func(c *gin.Context) {
		requestID = auditcontext.RequestIDFromContext(c.Request.Context())
		ip = auditcontext.IPAddressFromContext(c.Request.Context())
		ctxLogger = GetLoggerFromContext(c)
		c.Status(http.StatusOK)
	})

	w := serve(r, map[string]string{RequestIDHeader: "req-42"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-42", requestID)
	assert.NotEmpty(t, ip)
	assert.NotSame(t, slog.Default(), ctxLogger)
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), "Request completed")
}

func TestStructuredLoggingMiddleware_GeneratesRequestID(t *testing.T) {
	r := newEngine(StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestGetLoggerFromCtx_Fallback(t *testing.T) {
	assert.Same(t, slog.Default(), GetLoggerFromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestRateLimit(t *testing.T) {
	rate := limiter.Rate{Period: time.Minute, Limit: 2}
	r := newEngine(RateLimit(NewMemoryLimiter(rate)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, nil).Code)
	w := serve(r, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	w = serve(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}
