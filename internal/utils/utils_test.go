package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT("svc-billing", "secret", time.Hour, "ledger")
	require.NoError(t, err)

	claims, err := ParseAndValidateJWT(token, "secret", "ledger")
	require.NoError(t, err)
	assert.Equal(t, "svc-billing", claims.Subject)

	_, err = ParseAndValidateJWT(token, "other-secret", "ledger")
	assert.Error(t, err)

	_, err = ParseAndValidateJWT(token, "secret", "someone-else")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	expired, err := GenerateJWT("svc-billing", "secret", -time.Minute, "ledger")
	require.NoError(t, err)
	_, err = ParseAndValidateJWT(expired, "secret", "ledger")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = GenerateJWT("", "secret", time.Hour, "ledger")
	assert.Error(t, err)
}

func TestParseAndValidateJWT_RejectsNoneAlgorithm(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "x", Issuer: "ledger"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(unsigned, "secret", "ledger")
	assert.Error(t, err)
}

func TestFormatWithCurrency(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatWithCurrency(decimal.RequireFromString("1234.5"), "USD"))
	assert.Equal(t, "12.30", FormatWithCurrency(decimal.RequireFromString("12.3"), "???"))
}

func TestFormatWithCurrency_BeyondMinorUnitRange(t *testing.T) {
	// 10^20 dollars is 10^22 cents, past the int64 range go-money works in.
	huge := decimal.RequireFromString("100000000000000000000.25")
	assert.Equal(t, "100000000000000000000.25", FormatWithCurrency(huge, "USD"))
	assert.Equal(t, "-100000000000000000000.25", FormatWithCurrency(huge.Neg(), "USD"))

	// The largest amount that still fits keeps the currency rendering.
	assert.Equal(t, "$92,233,720,368,547,758.07", FormatWithCurrency(decimal.RequireFromString("92233720368547758.07"), "USD"))
}
