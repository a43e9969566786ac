package store

import (
	"context"
	"fmt"
	"log"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"greencart_back_end/internal/database"
	"greencart_back_end/internal/models"
)

// ScyllaCatalog implémente CatalogStore sur le keyspace products.
type ScyllaCatalog struct{}

func NewScyllaCatalog() *ScyllaCatalog { return &ScyllaCatalog{} }

func (s *ScyllaCatalog) ProductsByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	uuids := make([]gocql.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		uuids = append(uuids, gocql.UUID(parsed))
	}

	iter := session.Query(`SELECT product_id, name, category, price, offer_price, stock, image_urls
	                       FROM products WHERE product_id IN ?`, uuids).
		WithContext(ctx).Iter()

	products := make(map[string]models.Product, len(ids))
	var (
		productID  gocql.UUID
		name       string
		category   string
		price      float64
		offerPrice float64
		stock      int
		imageURLs  []string
	)
	for iter.Scan(&productID, &name, &category, &price, &offerPrice, &stock, &imageURLs) {
		products[productID.String()] = models.Product{
			ID:         productID.String(),
			Name:       name,
			Category:   category,
			Price:      price,
			OfferPrice: offerPrice,
			Stock:      stock,
			ImageURLs:  imageURLs,
		}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	return products, nil
}

// Nombre de tentatives CAS avant d'abandonner sous forte contention.
const casMaxRetries = 5

// DecrementStock applique un décrément conditionnel LWT par produit.
// Scylla n'a pas de transaction multi-partitions : le tout-ou-rien est obtenu
// en restaurant les décréments déjà appliqués dès qu'un item est refusé.
func (s *ScyllaCatalog) DecrementStock(ctx context.Context, items []models.CartItem) (bool, []StockRejection, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return false, nil, err
	}

	applied := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		ok, available, err := casAdjustStock(ctx, session, item.ProductID, -item.Quantity)
		if err != nil {
			_ = s.RestoreStock(ctx, applied)
			return false, nil, err
		}
		if !ok {
			if err := s.RestoreStock(ctx, applied); err != nil {
				log.Printf("⚠️ Restauration stock partielle échouée: %v", err)
			}
			return false, []StockRejection{{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: available,
			}}, nil
		}
		applied = append(applied, item)
	}

	return true, nil, nil
}

func (s *ScyllaCatalog) RestoreStock(ctx context.Context, items []models.CartItem) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	for _, item := range items {
		if _, _, err := casAdjustStock(ctx, session, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// casAdjustStock lit le stock courant puis l'écrit avec une condition IF stock = ?
// pour sérialiser les décréments concurrents. Retourne ok=false (avec le stock
// disponible) quand le delta rendrait le stock négatif.
func casAdjustStock(ctx context.Context, session *gocql.Session, productID string, delta int) (bool, int, error) {
	parsed, err := uuid.Parse(productID)
	if err != nil {
		return false, 0, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	productUUID := gocql.UUID(parsed)

	var stock int
	if err := session.Query(`SELECT stock FROM products WHERE product_id = ?`, productUUID).
		WithContext(ctx).Scan(&stock); err != nil {
		if err == gocql.ErrNotFound {
			return false, 0, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return false, 0, err
	}

	for attempt := 0; attempt < casMaxRetries; attempt++ {
		if stock+delta < 0 {
			return false, stock, nil
		}

		casApplied, err := session.Query(
			`UPDATE products SET stock = ? WHERE product_id = ? IF stock = ?`,
			stock+delta, productUUID, stock).
			WithContext(ctx).ScanCAS(&stock)
		if err != nil {
			return false, 0, err
		}
		if casApplied {
			return true, stock + delta, nil
		}
		// CAS perdu : stock contient la valeur courante, on réessaie dessus.
	}

	return false, stock, fmt.Errorf("contention CAS sur le produit %s", productID)
}
