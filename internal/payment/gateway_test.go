package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveCardInfo(t *testing.T) {
	cases := []struct {
		number   string
		wantType string
		wantLast string
	}{
		{"4242424242424242", "VISA", "4242"},
		{"5100 0000 0000 5100", "MASTERCARD", "5100"},
		{"378282246310005", "AMEX", "0005"},
		{"6011000990139424", "CARD", "9424"},
		{"123", "CARD", ""},
	}
	for _, tc := range cases {
		info := DeriveCardInfo(tc.number, "12/28", "Ada Rossi")
		assert.Equal(t, tc.wantType, info.CardType, tc.number)
		assert.Equal(t, tc.wantLast, info.Last4, tc.number)
		assert.Equal(t, "12/28", info.Expiry)
		assert.Equal(t, "Ada Rossi", info.HolderName)
	}
}

func TestSimulatedGatewayTokenize(t *testing.T) {
	g := NewSimulatedGateway()

	tok, err := g.Tokenize(context.Background(), "4242424242424242", "12/28", "Ada Rossi")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok, "GTW_TOK_"))
	assert.Len(t, tok, len("GTW_TOK_")+32)

	other, err := g.Tokenize(context.Background(), "4242424242424242", "12/28", "Ada Rossi")
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

func TestSimulatedGatewayCharge(t *testing.T) {
	g := NewSimulatedGateway()
	ctx := context.Background()

	assert.NoError(t, g.Charge(ctx, "GTW_TOK_abc", 100))
	assert.ErrorIs(t, g.Charge(ctx, "", 100), ErrDeclined)
	assert.ErrorIs(t, g.Charge(ctx, "GTW_TOK_abc", 0), ErrDeclined)
	assert.ErrorIs(t, g.Charge(ctx, "GTW_TOK_abc", -5), ErrDeclined)
}

func TestSimulatedGatewayRefund(t *testing.T) {
	g := NewSimulatedGateway()
	ctx := context.Background()

	assert.NoError(t, g.Refund(ctx, "GTW_TOK_abc", 100))
	assert.ErrorIs(t, g.Refund(ctx, "", 100), ErrDeclined)
}
