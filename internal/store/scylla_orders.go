package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"greencart_back_end/internal/database"
	"greencart_back_end/internal/models"
)

// ScyllaOrders implémente OrderStore sur le keyspace orders.
// Les items sont stockés en JSON (colonne text) : ils sont immuables une fois
// la commande créée, pas besoin d'UDT.
type ScyllaOrders struct{}

func NewScyllaOrders() *ScyllaOrders { return &ScyllaOrders{} }

func (s *ScyllaOrders) Insert(ctx context.Context, order models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	orderUUID, err := parseUUID(order.ID)
	if err != nil {
		return err
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}

	return session.Query(`INSERT INTO orders (order_id, user_id, items_json, amount, address_id,
	                       payment_type, is_paid, stripe_session_id, created_at)
	                      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		orderUUID, order.UserID, string(itemsJSON), order.Amount, order.AddressID,
		order.PaymentType, order.IsPaid, order.StripeSessionID, order.CreatedAt).
		WithContext(ctx).Exec()
}

func (s *ScyllaOrders) ByID(ctx context.Context, orderID string) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	orderUUID, err := parseUUID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	var (
		userID          string
		itemsJSON       string
		amount          float64
		addressID       string
		paymentType     string
		isPaid          bool
		stripeSessionID string
		createdAt       time.Time
	)
	err = session.Query(`SELECT user_id, items_json, amount, address_id, payment_type, is_paid,
	                      stripe_session_id, created_at
	                     FROM orders WHERE order_id = ?`, orderUUID).
		WithContext(ctx).Scan(&userID, &itemsJSON, &amount, &addressID, &paymentType,
		&isPaid, &stripeSessionID, &createdAt)
	if err == gocql.ErrNotFound {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	var items []models.OrderItem
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return nil, err
	}

	return &models.Order{
		ID:              orderID,
		UserID:          userID,
		Items:           items,
		Amount:          amount,
		AddressID:       addressID,
		PaymentType:     paymentType,
		IsPaid:          isPaid,
		StripeSessionID: stripeSessionID,
		CreatedAt:       createdAt,
	}, nil
}

func (s *ScyllaOrders) MarkPaid(ctx context.Context, orderID string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	orderUUID, err := parseUUID(orderID)
	if err != nil {
		return ErrOrderNotFound
	}

	return session.Query(`UPDATE orders SET is_paid = true WHERE order_id = ?`, orderUUID).
		WithContext(ctx).Exec()
}

func (s *ScyllaOrders) Delete(ctx context.Context, orderID string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	orderUUID, err := parseUUID(orderID)
	if err != nil {
		return ErrOrderNotFound
	}

	return session.Query(`DELETE FROM orders WHERE order_id = ?`, orderUUID).
		WithContext(ctx).Exec()
}

func (s *ScyllaOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	// user_id porte un index secondaire (voir scripts/scylladb_init.cql)
	return s.list(ctx, `SELECT order_id, user_id, items_json, amount, address_id, payment_type,
	                     is_paid, stripe_session_id, created_at
	                    FROM orders WHERE user_id = ?`, userID)
}

func (s *ScyllaOrders) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, `SELECT order_id, user_id, items_json, amount, address_id, payment_type,
	                     is_paid, stripe_session_id, created_at
	                    FROM orders`)
}

func (s *ScyllaOrders) list(ctx context.Context, cql string, bind ...interface{}) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(cql, bind...).WithContext(ctx).Iter()

	var orders []models.Order
	var (
		orderUUID       gocql.UUID
		userID          string
		itemsJSON       string
		amount          float64
		addressID       string
		paymentType     string
		isPaid          bool
		stripeSessionID string
		createdAt       time.Time
	)
	for iter.Scan(&orderUUID, &userID, &itemsJSON, &amount, &addressID, &paymentType,
		&isPaid, &stripeSessionID, &createdAt) {
		var items []models.OrderItem
		if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
			continue
		}
		orders = append(orders, models.Order{
			ID:              orderUUID.String(),
			UserID:          userID,
			Items:           items,
			Amount:          amount,
			AddressID:       addressID,
			PaymentType:     paymentType,
			IsPaid:          isPaid,
			StripeSessionID: stripeSessionID,
			CreatedAt:       createdAt,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	// Les partitions Scylla ne garantissent aucun ordre global : tri côté app.
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

func parseUUID(id string) (gocql.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return gocql.UUID{}, err
	}
	return gocql.UUID(parsed), nil
}
