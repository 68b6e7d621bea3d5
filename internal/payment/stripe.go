package payment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// toCents converts a currency amount to Stripe's integer minor units.
// Rounding is required: floats like 19.99 sit just below their decimal
// value, and plain truncation would drop a cent.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// StripeGateway charges and refunds through the Stripe API. The stored
// gateway token is a Stripe payment method ID; refunds reference the
// payment intent created by the matching charge via token metadata.
type StripeGateway struct {
	api      *client.API
	currency string
}

// NewStripeGateway builds a gateway from a Stripe secret key.
func NewStripeGateway(secretKey, currency string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key not configured")
	}
	if currency == "" {
		currency = "eur"
	}
	return &StripeGateway{api: client.New(secretKey, nil), currency: strings.ToLower(currency)}, nil
}

// Tokenize turns raw card data into a Stripe payment method ID.
func (g *StripeGateway) Tokenize(ctx context.Context, cardNumber, expiry, holder string) (string, error) {
	month, year := splitExpiry(expiry)
	params := &stripe.PaymentMethodParams{
		Type: stripe.String("card"),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(strings.ReplaceAll(cardNumber, " ", "")),
			ExpMonth: stripe.Int64(month),
			ExpYear:  stripe.Int64(year),
		},
	}
	if holder != "" {
		params.BillingDetails = &stripe.PaymentMethodBillingDetailsParams{Name: stripe.String(holder)}
	}
	pm, err := g.api.PaymentMethods.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeclined, err)
	}
	return pm.ID, nil
}

// Charge creates and confirms a payment intent against the stored
// payment method. Anything short of immediate success is a decline.
func (g *StripeGateway) Charge(ctx context.Context, gatewayToken string, amount float64) error {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(toCents(amount)),
		Currency:           stripe.String(g.currency),
		PaymentMethod:      stripe.String(gatewayToken),
		Confirm:            stripe.Bool(true),
		ConfirmationMethod: stripe.String("manual"),
		PaymentMethodTypes: []*string{stripe.String("card")},
	}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeclined, err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("%w: payment intent status %s", ErrDeclined, pi.Status)
	}
	return nil
}

// Refund returns money for the most recent charge on the payment
// method. Stripe requires the payment intent, so the latest succeeded
// intent for the method is located first.
func (g *StripeGateway) Refund(ctx context.Context, gatewayToken string, amount float64) error {
	search := &stripe.PaymentIntentListParams{}
	search.Context = ctx
	search.Filters.AddFilter("limit", "", "20")
	iter := g.api.PaymentIntents.List(search)
	for iter.Next() {
		pi := iter.PaymentIntent()
		if pi.PaymentMethod == nil || pi.PaymentMethod.ID != gatewayToken {
			continue
		}
		if pi.Status != stripe.PaymentIntentStatusSucceeded {
			continue
		}
		params := &stripe.RefundParams{
			PaymentIntent: stripe.String(pi.ID),
			Amount:        stripe.Int64(toCents(amount)),
			Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
		}
		params.Context = ctx
		if _, err := g.api.Refunds.New(params); err != nil {
			return fmt.Errorf("%w: %v", ErrDeclined, err)
		}
		return nil
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeclined, err)
	}
	return fmt.Errorf("%w: no refundable charge for token", ErrDeclined)
}

func splitExpiry(expiry string) (month, year int64) {
	parts := strings.SplitN(expiry, "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	fmt.Sscanf(parts[0], "%d", &month)
	fmt.Sscanf(parts[1], "%d", &year)
	if year < 100 {
		year += 2000
	}
	return month, year
}
