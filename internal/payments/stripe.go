// Package payments wraps the Stripe checkout flow used for paid
// registrations.
package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// CheckoutInput describes the single line item a registration pays for
type CheckoutInput struct {
	RegistrationID int64
	EventTitle     string
	TicketName     string
	Amount         float64 // major units
	Currency       string
	CustomerEmail  string
	SuccessURL     string
	CancelURL      string
}

// CheckoutSession is the subset of a Stripe session the platform stores
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
	Paid            bool
	AmountTotal     float64
	Currency        string
}

// Gateway creates and inspects checkout sessions
type Gateway interface {
	CreateCheckout(ctx context.Context, in *CheckoutInput) (*CheckoutSession, error)
	GetCheckout(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// StripeGateway implements Gateway against the Stripe API
type StripeGateway struct{}

// NewStripeGateway sets the global API key and returns a gateway
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

// CreateCheckout opens a hosted checkout session for one ticket
func (g *StripeGateway) CreateCheckout(ctx context.Context, in *CheckoutInput) (*CheckoutSession, error) {
	name := in.EventTitle
	if in.TicketName != "" {
		name = fmt.Sprintf("%s - %s", in.EventTitle, in.TicketName)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(in.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
					UnitAmount: stripe.Int64(int64(in.Amount * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		CustomerEmail:     stripe.String(in.CustomerEmail),
		ClientReferenceID: stripe.String(fmt.Sprintf("%d", in.RegistrationID)),
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return fromStripeSession(s), nil
}

// GetCheckout fetches a session to check whether it has been paid
func (g *StripeGateway) GetCheckout(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	return fromStripeSession(s), nil
}

func fromStripeSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:          s.ID,
		URL:         s.URL,
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal: float64(s.AmountTotal) / 100,
		Currency:    string(s.Currency),
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out
}
