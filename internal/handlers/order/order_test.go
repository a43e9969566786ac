package order

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"

	"greencart_back_end/internal/models"
	"greencart_back_end/internal/payment"
	"greencart_back_end/internal/service"
	"greencart_back_end/internal/store"
)

// ---- Stubs minimaux des collaborateurs ----

type stubCatalog struct {
	products map[string]models.Product
}

func (s *stubCatalog) ProductsByIDs(_ context.Context, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *stubCatalog) DecrementStock(_ context.Context, items []models.CartItem) (bool, []store.StockRejection, error) {
	for _, item := range items {
		p := s.products[item.ProductID]
		p.Stock -= item.Quantity
		s.products[item.ProductID] = p
	}
	return true, nil, nil
}

func (s *stubCatalog) RestoreStock(_ context.Context, _ []models.CartItem) error { return nil }

type stubCart struct{}

func (s *stubCart) Clear(_ context.Context, _ string) error { return nil }

type stubOrders struct {
	orders map[string]models.Order
}

func (s *stubOrders) Insert(_ context.Context, order models.Order) error {
	s.orders[order.ID] = order
	return nil
}

func (s *stubOrders) ByID(_ context.Context, orderID string) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	return &order, nil
}

func (s *stubOrders) MarkPaid(_ context.Context, orderID string) error {
	order := s.orders[orderID]
	order.IsPaid = true
	s.orders[orderID] = order
	return nil
}

func (s *stubOrders) Delete(_ context.Context, orderID string) error {
	delete(s.orders, orderID)
	return nil
}

func (s *stubOrders) ListByUser(_ context.Context, _ string) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrders) ListAll(_ context.Context) ([]models.Order, error) { return nil, nil }

type stubAddresses struct{}

func (s *stubAddresses) ByID(_ context.Context, addressID string) (*models.Address, error) {
	if addressID != "addr1" {
		return nil, store.ErrAddressNotFound
	}
	return &models.Address{ID: "addr1", UserID: "user1"}, nil
}

type stubUsers struct{}

func (s *stubUsers) ByID(_ context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID, Email: "user1@example.com"}, nil
}

type stubGateway struct {
	event        stripe.Event
	constructErr error
}

func (s *stubGateway) CreateCheckoutSession(_ context.Context, _ []payment.LineItem, _, _ string, _ map[string]string) (*payment.CheckoutSession, error) {
	return &payment.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.test/cs_test"}, nil
}

func (s *stubGateway) ConstructEvent(_ []byte, _ string) (stripe.Event, error) {
	if s.constructErr != nil {
		return stripe.Event{}, s.constructErr
	}
	return s.event, nil
}

// ---- Montage ----

func newTestRouter(gateway payment.Gateway) (*gin.Engine, *Handler) {
	gin.SetMode(gin.TestMode)

	svc := service.NewOrderService(
		&stubCatalog{products: map[string]models.Product{
			"p1": {ID: "p1", Name: "Pommes", OfferPrice: 10.00, Stock: 5},
		}},
		&stubCart{},
		&stubOrders{orders: map[string]models.Order{}},
		&stubAddresses{},
		&stubUsers{},
		gateway,
		0.02,
	)

	h := NewHandler(svc, gateway)

	r := gin.New()
	r.POST("/stripe", h.StripeWebhook)

	authStub := func(c *gin.Context) { c.Set("user_id", "user1") }
	r.POST("/api/order/cod", authStub, h.PlaceOrderCOD)
	r.POST("/api/order/stripe", authStub, h.PlaceOrderStripe)
	r.POST("/anonymous/order/cod", h.PlaceOrderCOD)

	return r, h
}

func perform(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---- Tests ----

func TestPlaceOrderCODSuccess(t *testing.T) {
	r, _ := newTestRouter(&stubGateway{})

	w := perform(r, http.MethodPost, "/api/order/cod",
		`{"items":[{"product_id":"p1","quantity":2}],"address":"addr1"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), `"orderId"`)
}

func TestPlaceOrderCODRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(&stubGateway{})

	w := perform(r, http.MethodPost, "/anonymous/order/cod",
		`{"items":[{"product_id":"p1","quantity":2}],"address":"addr1"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestPlaceOrderCODMalformedBody(t *testing.T) {
	r, _ := newTestRouter(&stubGateway{})

	w := perform(r, http.MethodPost, "/api/order/cod", `{"items":}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceOrderCODUnknownAddress(t *testing.T) {
	r, _ := newTestRouter(&stubGateway{})

	w := perform(r, http.MethodPost, "/api/order/cod",
		`{"items":[{"product_id":"p1","quantity":2}],"address":"addr9"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestPlaceOrderStripeReturnsRedirectURL(t *testing.T) {
	r, _ := newTestRouter(&stubGateway{})

	w := perform(r, http.MethodPost, "/api/order/stripe",
		`{"items":[{"product_id":"p1","quantity":2}],"address":"addr1"}`,
		map[string]string{"Origin": "https://shop.example.com"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://checkout.stripe.test/cs_test")
}

func TestStripeWebhookRejectsInvalidSignature(t *testing.T) {
	r, _ := newTestRouter(&stubGateway{constructErr: payment.ErrInvalidSignature})

	w := perform(r, http.MethodPost, "/stripe", `{"type":"checkout.session.completed"}`,
		map[string]string{"Stripe-Signature": "t=1,v1=mauvaise"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Signature invalide")
}

func TestStripeWebhookAcksIgnoredEventTypes(t *testing.T) {
	gateway := &stubGateway{event: stripe.Event{
		ID:   "evt_1",
		Type: "payment_intent.created",
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}}
	r, _ := newTestRouter(gateway)

	w := perform(r, http.MethodPost, "/stripe", `{}`,
		map[string]string{"Stripe-Signature": "t=1,v1=ok"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"received":true`))
}

func TestStripeWebhookAcksUnknownOrder(t *testing.T) {
	gateway := &stubGateway{event: stripe.Event{
		ID:   "evt_2",
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: []byte(`{"id":"cs_x","metadata":{"order_id":"absente","user_id":"user1"}}`)},
	}}
	r, _ := newTestRouter(gateway)

	// Métadonnées valides mais commande inconnue : on acquitte quand même.
	w := perform(r, http.MethodPost, "/stripe", `{}`,
		map[string]string{"Stripe-Signature": "t=1,v1=ok"})

	assert.Equal(t, http.StatusOK, w.Code)
}
