package service

import (
	"math"

	"greencart_back_end/internal/models"
)

// Cents convertit un prix en unités majeures vers les centimes.
func Cents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// roundHalfUp arrondit au centime le plus proche, demi-centime vers le haut.
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

// ComputeAmountCents calcule le montant TTC d'une commande en centimes :
// sous-total = Σ offerPrice × quantité en arithmétique entière, puis la taxe
// arrondie au centime le plus proche. Aucune accumulation flottante.
func ComputeAmountCents(items []models.CartItem, products map[string]models.Product, taxRate float64) int64 {
	var subtotal int64
	for _, item := range items {
		product := products[item.ProductID]
		subtotal += Cents(product.OfferPrice) * int64(item.Quantity)
	}
	return subtotal + roundHalfUp(float64(subtotal)*taxRate)
}

// TaxedUnitAmount retourne le prix unitaire TTC en centimes pour une ligne
// Stripe (arrondi demi-centime vers le haut).
func TaxedUnitAmount(offerPrice, taxRate float64) int64 {
	return roundHalfUp(float64(Cents(offerPrice)) * (1 + taxRate))
}

// AmountToMajor reconvertit un montant en centimes vers les unités majeures.
func AmountToMajor(cents int64) float64 {
	return float64(cents) / 100
}
