package models

import "time"

type Product struct {
	ID         string    `json:"id" db:"product_id"`
	Name       string    `json:"name" db:"name"`
	Category   string    `json:"category" db:"category"`
	Price      float64   `json:"price" db:"price"`
	OfferPrice float64   `json:"offerPrice" db:"offer_price"`
	Stock      int       `json:"stock" db:"stock"`
	ImageURLs  []string  `json:"image_urls" db:"image_urls"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
