package models

import "time"

const (
	PaymentTypeCOD    = "COD"
	PaymentTypeOnline = "Online"
)

// OrderItem est un instantané du produit au moment de la commande :
// le prix promo est figé, jamais recalculé depuis le catalogue.
type OrderItem struct {
	ProductID  string  `json:"product_id" db:"product_id"`
	Name       string  `json:"name" db:"name"`
	OfferPrice float64 `json:"offerPrice" db:"offer_price"`
	Quantity   int     `json:"quantity" db:"quantity"`
}

type Order struct {
	ID              string      `json:"id" db:"order_id"`
	UserID          string      `json:"user_id" db:"user_id"`
	Items           []OrderItem `json:"items" db:"items"`
	Amount          float64     `json:"amount" db:"amount"`
	AddressID       string      `json:"address_id" db:"address_id"`
	Address         *Address    `json:"address,omitempty" db:"-"`
	PaymentType     string      `json:"paymentType" db:"payment_type"`
	IsPaid          bool        `json:"isPaid" db:"is_paid"`
	StripeSessionID string      `json:"-" db:"stripe_session_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}
