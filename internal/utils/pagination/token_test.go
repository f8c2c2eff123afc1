package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	ts := time.Date(2023, 5, 15, 14, 30, 45, 123456000, time.UTC)

	token := EncodeToken(ts, "3f1c9a4e-audit")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedTS, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.True(t, ts.Equal(decodedTS), "Timestamp should match after decode")
	assert.Equal(t, "3f1c9a4e-audit", decodedID, "ID should match after decode")

	// Non UTC inputs are normalized.
	local := ts.In(time.FixedZone("WAT", 3600))
	decodedLocal, _, err := DecodeToken(EncodeToken(local, "x"))
	assert.NoError(t, err)
	assert.True(t, ts.Equal(decodedLocal))
	assert.Equal(t, time.UTC, decodedLocal.Location())
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	_, _, err = DecodeToken(EncodeToken(time.Now(), ""))
	assert.Error(t, err, "Should reject a token without an id")
	assert.Contains(t, err.Error(), "split")

	_, _, err = DecodeToken("bm90YWRhdGV8aWQ=") // "notadate|id"
	assert.Error(t, err, "Should return an error for invalid date format")
	assert.Contains(t, err.Error(), "timestamp parse")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-5))
	assert.Equal(t, 10, ClampLimit(10))
	assert.Equal(t, MaxLimit, ClampLimit(MaxLimit+1))
}
