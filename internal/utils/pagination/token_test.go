package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Test case 1: Standard date/time values
	postingDate := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2024, 6, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(postingDate, createdAt, "txn-1")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedDate, decodedCreatedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, postingDate, decodedDate, "Posting date should match after decode")
	assert.Equal(t, createdAt, decodedCreatedAt, "Created at time should match after decode")
	assert.Equal(t, "txn-1", decodedID)

	// Test case 2: Zero time values
	zeroTime := time.Time{}
	zeroToken := EncodeToken(zeroTime, zeroTime, "txn-0")
	decodedZeroDate, decodedZeroTime, _, err := DecodeToken(zeroToken)
	assert.NoError(t, err, "Decoding zero time should not return an error")
	assert.Equal(t, zeroTime, decodedZeroDate, "Zero date should match after decode")
	assert.Equal(t, zeroTime, decodedZeroTime, "Zero time should match after decode")

	// Test case 3: Current time values
	now := time.Now().UTC()
	nowToken := EncodeToken(now, now, "f5f0c8a2-4c1e-4f8e-9d55-2e3b0a6f1c11")
	decodedNowDate, decodedNowTime, decodedNowID, err := DecodeToken(nowToken)
	assert.NoError(t, err, "Decoding current time should not return an error")
	assert.True(t, now.Equal(decodedNowDate), "Current date should match after decode")
	assert.True(t, now.Equal(decodedNowTime), "Current time should match after decode")
	assert.Equal(t, "f5f0c8a2-4c1e-4f8e-9d55-2e3b0a6f1c11", decodedNowID)
}

func TestDecodeTokenError(t *testing.T) {
	// Test invalid base64
	_, _, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Test invalid format (missing separator)
	invalidToken := base64.StdEncoding.EncodeToString([]byte("2024-06-15T00:00:00Z"))
	_, _, _, err = DecodeToken(invalidToken)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Test invalid date format
	invalidDateToken := base64.StdEncoding.EncodeToString([]byte("notadate|2024-06-15T14:30:45.123456789Z|txn-1"))
	_, _, _, err = DecodeToken(invalidDateToken)
	assert.Error(t, err, "Should return an error for invalid date format")
	assert.Contains(t, err.Error(), "posting date parse", "Error should mention date parsing issue")

	// Test missing transaction id
	noIDToken := base64.StdEncoding.EncodeToString([]byte("2024-06-15T00:00:00Z|2024-06-15T00:00:00Z|"))
	_, _, _, err = DecodeToken(noIDToken)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing transaction id")
}
