package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier/internal/domain"
)

func TestCents_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "25.00", domain.Cents(2500).String())
	assert.Equal(t, "0.05", domain.Cents(5).String())
	assert.Equal(t, "-1.50", domain.Cents(-150).String())
}

func TestCents_JSON(t *testing.T) {
	t.Parallel()

	var in struct {
		Amount domain.Cents `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 19.99}`), &in))
	assert.Equal(t, domain.Cents(1999), in.Amount)

	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 19.99}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"amount": "ten"}`), &in))
}

func TestUser_OTPOutstanding(t *testing.T) {
	t.Parallel()

	u := &domain.User{}
	now := mustTime(t, "2025-03-01T09:00:00Z")
	assert.False(t, u.OTPOutstanding(now))

	u.OTP = "123456"
	u.OTPExpiresAt = now.Add(1)
	assert.True(t, u.OTPOutstanding(now))
	assert.False(t, u.OTPOutstanding(u.OTPExpiresAt))
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}
