package store

import (
	"context"
	"errors"

	"greencart_back_end/internal/models"
)

var (
	ErrProductNotFound = errors.New("produit introuvable")
	ErrOutOfStock      = errors.New("stock insuffisant")
	ErrOrderNotFound   = errors.New("commande introuvable")
	ErrAddressNotFound = errors.New("adresse introuvable")
	ErrUserNotFound    = errors.New("utilisateur introuvable")
)

// StockRejection détaille un refus de décrément pour un produit.
type StockRejection struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// CatalogStore résout les produits et garde le compteur de stock.
type CatalogStore interface {
	// ProductsByIDs fait une seule requête IN et retourne une map id → produit.
	ProductsByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)

	// DecrementStock décrémente le stock de chaque item de façon conditionnelle
	// (refusé si stock < quantité). Tout ou rien : si un item est refusé, les
	// décréments déjà appliqués sont restaurés avant le retour.
	DecrementStock(ctx context.Context, items []models.CartItem) (ok bool, rejected []StockRejection, err error)

	// RestoreStock ré-ajoute les quantités (compensation).
	RestoreStock(ctx context.Context, items []models.CartItem) error
}

// CartStore est le panier Redis par utilisateur. Le flux de commande n'en a
// besoin que pour le vider une fois la commande garantie.
type CartStore interface {
	Clear(ctx context.Context, userID string) error
}

// OrderStore est le registre durable des commandes.
type OrderStore interface {
	Insert(ctx context.Context, order models.Order) error
	ByID(ctx context.Context, orderID string) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID string) error
	Delete(ctx context.Context, orderID string) error
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
}

// AddressStore vérifie l'existence et la propriété d'une adresse.
type AddressStore interface {
	ByID(ctx context.Context, addressID string) (*models.Address, error)
}

// UserStore résout l'e-mail d'un utilisateur (confirmation de commande).
type UserStore interface {
	ByID(ctx context.Context, userID string) (*models.User, error)
}
