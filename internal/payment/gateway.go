// Package payment provides the charge/refund gateway used when a hold
// is confirmed, modified upward, refunded on downgrade or cancelled.
// Two implementations exist: a simulated gateway for development and a
// Stripe-backed one selected via configuration.
package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrDeclined is returned when the gateway refuses a charge. Callers
// treat it as a business failure, not an infrastructure error.
var ErrDeclined = errors.New("payment declined")

// Tokenizer exchanges raw card data for an opaque gateway token at
// registration time. Card numbers are never persisted.
type Tokenizer interface {
	Tokenize(ctx context.Context, cardNumber, expiry, holder string) (token string, err error)
}

// CardInfo is the non-sensitive residue of tokenization, safe to store
// alongside the user.
type CardInfo struct {
	CardType   string
	Last4      string
	Expiry     string
	HolderName string
}

// DeriveCardInfo classifies the card by its leading digit and keeps
// only the last four digits.
func DeriveCardInfo(cardNumber, expiry, holder string) CardInfo {
	digits := strings.ReplaceAll(strings.TrimSpace(cardNumber), " ", "")
	info := CardInfo{Expiry: expiry, HolderName: holder, CardType: "CARD"}
	if len(digits) >= 4 {
		info.Last4 = digits[len(digits)-4:]
	}
	switch {
	case strings.HasPrefix(digits, "4"):
		info.CardType = "VISA"
	case strings.HasPrefix(digits, "5"):
		info.CardType = "MASTERCARD"
	case strings.HasPrefix(digits, "3"):
		info.CardType = "AMEX"
	}
	return info
}

// SimulatedGateway approves every charge and refund, logging each
// operation. Tokens carry a GTW_TOK_ prefix so that simulated tokens
// are recognizable in the database.
type SimulatedGateway struct{}

// NewSimulatedGateway returns the development gateway.
func NewSimulatedGateway() *SimulatedGateway { return &SimulatedGateway{} }

// Tokenize issues a random simulated token.
func (g *SimulatedGateway) Tokenize(ctx context.Context, cardNumber, expiry, holder string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "GTW_TOK_" + hex.EncodeToString(buf), nil
}

// Charge approves the payment after a sanity check on the token.
func (g *SimulatedGateway) Charge(ctx context.Context, gatewayToken string, amount float64) error {
	if gatewayToken == "" {
		return fmt.Errorf("%w: missing gateway token", ErrDeclined)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: non-positive amount %.2f", ErrDeclined, amount)
	}
	log.Printf("payment: simulated charge of %.2f on token %s approved", amount, maskToken(gatewayToken))
	return nil
}

// Refund approves the refund unconditionally.
func (g *SimulatedGateway) Refund(ctx context.Context, gatewayToken string, amount float64) error {
	if gatewayToken == "" {
		return fmt.Errorf("%w: missing gateway token", ErrDeclined)
	}
	log.Printf("payment: simulated refund of %.2f on token %s approved", amount, maskToken(gatewayToken))
	return nil
}

func maskToken(tok string) string {
	if len(tok) <= 12 {
		return "****"
	}
	return tok[:12] + "****"
}
