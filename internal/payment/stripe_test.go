package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload calcule le header Stripe-Signature attendu pour un payload.
func signPayload(payload []byte, secret string, ts time.Time) string {
	signed := fmt.Sprintf("%d.%s", ts.Unix(), payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signed))
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestConstructEventValidSignature(t *testing.T) {
	g := NewStripeGateway(testWebhookSecret)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"order_id":"o1","user_id":"u1"}}}}`)
	header := signPayload(payload, testWebhookSecret, time.Now())

	event, err := g.ConstructEvent(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "checkout.session.completed", string(event.Type))
}

func TestConstructEventWrongSecret(t *testing.T) {
	g := NewStripeGateway(testWebhookSecret)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	header := signPayload(payload, "whsec_autre", time.Now())

	_, err := g.ConstructEvent(payload, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEventTamperedPayload(t *testing.T) {
	g := NewStripeGateway(testWebhookSecret)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	header := signPayload(payload, testWebhookSecret, time.Now())

	tampered := []byte(`{"id":"evt_1","type":"checkout.session.expired"}`)
	_, err := g.ConstructEvent(tampered, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEventStaleTimestamp(t *testing.T) {
	g := NewStripeGateway(testWebhookSecret)

	// Au-delà de la tolérance par défaut (5 minutes) : rejouable refusé.
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	header := signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour))

	_, err := g.ConstructEvent(payload, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
