package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCents(t *testing.T) {
	// 19.99 is stored as 19.9899999..., so truncation would yield 1998.
	assert.Equal(t, int64(1999), toCents(19.99))
	assert.Equal(t, int64(2999), toCents(29.99))
	assert.Equal(t, int64(4999), toCents(49.99))
	assert.Equal(t, int64(10), toCents(0.1))
	assert.Equal(t, int64(0), toCents(0))
	assert.Equal(t, int64(60000), toCents(600))
	assert.Equal(t, int64(33), toCents(0.333))
}

func TestSplitExpiry(t *testing.T) {
	m, y := splitExpiry("12/28")
	assert.Equal(t, int64(12), m)
	assert.Equal(t, int64(2028), y)

	m, y = splitExpiry("01/2030")
	assert.Equal(t, int64(1), m)
	assert.Equal(t, int64(2030), y)

	m, y = splitExpiry("bogus")
	assert.Zero(t, m)
	assert.Zero(t, y)
}

func TestNewStripeGatewayRequiresKey(t *testing.T) {
	_, err := NewStripeGateway("", "eur")
	assert.Error(t, err)

	g, err := NewStripeGateway("sk_test_123", "")
	require.NoError(t, err)
	assert.Equal(t, "eur", g.currency)

	g, err = NewStripeGateway("sk_test_123", "USD")
	require.NoError(t, err)
	assert.Equal(t, "usd", g.currency)
}
