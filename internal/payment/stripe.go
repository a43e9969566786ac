package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/webhook"
)

var (
	// ErrGatewayUnavailable : Stripe injoignable ou a refusé la requête.
	ErrGatewayUnavailable = errors.New("passerelle de paiement indisponible")
	// ErrInvalidSignature : la signature du webhook ne correspond pas au secret.
	ErrInvalidSignature = errors.New("signature webhook invalide")
)

// LineItem est une ligne de checkout : montant unitaire TTC en centimes.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutSession est la session de paiement hébergée retournée par Stripe.
type CheckoutSession struct {
	ID  string
	URL string
}

// Gateway est l'adaptateur de paiement consommé par le service commandes.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, items []LineItem, successURL, cancelURL string, metadata map[string]string) (*CheckoutSession, error)
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeGateway implémente Gateway avec l'API Checkout de Stripe.
type StripeGateway struct {
	WebhookSecret string
	Currency      string
}

func NewStripeGateway(webhookSecret string) *StripeGateway {
	return &StripeGateway{
		WebhookSecret: webhookSecret,
		Currency:      string(stripe.CurrencyUSD),
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, items []LineItem, successURL, cancelURL string, metadata map[string]string) (*CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		Metadata:   metadata,
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ConstructEvent vérifie la signature sur les octets bruts du body — le payload
// ne doit jamais être parsé avant cette vérification.
func (g *StripeGateway) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.WebhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}
