package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"greencart_back_end/internal/models"
)

func TestComputeAmountCents(t *testing.T) {
	products := map[string]models.Product{
		"p1": {ID: "p1", Name: "Pommes", OfferPrice: 10.00},
		"p2": {ID: "p2", Name: "Carottes", OfferPrice: 2.99},
		"p3": {ID: "p3", Name: "Riz", OfferPrice: 0.01},
	}

	tests := []struct {
		name    string
		items   []models.CartItem
		taxRate float64
		want    int64
	}{
		{
			// 10.00 × 2 = 20.00, +2% = 20.40
			name:    "exemple de référence",
			items:   []models.CartItem{{ProductID: "p1", Quantity: 2}},
			taxRate: 0.02,
			want:    2040,
		},
		{
			// 2.99 × 3 = 8.97, taxe = 17.94 centimes → arrondi 18
			name:    "taxe arrondie au centime le plus proche",
			items:   []models.CartItem{{ProductID: "p2", Quantity: 3}},
			taxRate: 0.02,
			want:    915,
		},
		{
			// 1 centime : taxe 0.02 centime → arrondi 0
			name:    "taxe négligeable",
			items:   []models.CartItem{{ProductID: "p3", Quantity: 1}},
			taxRate: 0.02,
			want:    1,
		},
		{
			// 25 centimes de sous-total : taxe 0.5 centime → demi vers le haut
			name:    "demi-centime arrondi vers le haut",
			items:   []models.CartItem{{ProductID: "p3", Quantity: 25}},
			taxRate: 0.02,
			want:    26,
		},
		{
			name:    "plusieurs lignes",
			items:   []models.CartItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 2}},
			taxRate: 0.02,
			want:    1630, // 1000 + 598 = 1598, taxe 31.96 → 32
		},
		{
			name:    "taux zéro",
			items:   []models.CartItem{{ProductID: "p1", Quantity: 2}},
			taxRate: 0,
			want:    2000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAmountCents(tt.items, products, tt.taxRate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeAmountCentsNoFloatDrift(t *testing.T) {
	// 0.1 + 0.2 != 0.3 en flottant ; en centimes, pas de dérive.
	products := map[string]models.Product{
		"a": {ID: "a", OfferPrice: 0.10},
		"b": {ID: "b", OfferPrice: 0.20},
	}
	items := []models.CartItem{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 1},
	}
	assert.Equal(t, int64(31), ComputeAmountCents(items, products, 0.02))
}

func TestTaxedUnitAmount(t *testing.T) {
	assert.Equal(t, int64(1020), TaxedUnitAmount(10.00, 0.02))
	// 2.99 → 299 × 1.02 = 304.98 → 305
	assert.Equal(t, int64(305), TaxedUnitAmount(2.99, 0.02))
	// 0.25 → 25 × 1.02 = 25.5 → demi vers le haut : 26
	assert.Equal(t, int64(26), TaxedUnitAmount(0.25, 0.02))
}

func TestAmountToMajor(t *testing.T) {
	assert.Equal(t, 20.40, AmountToMajor(2040))
}
