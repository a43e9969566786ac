package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// TaxRate retourne le taux de taxe appliqué aux commandes (2% par défaut).
func TaxRate() float64 {
	if v := os.Getenv("ORDER_TAX_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate >= 0 {
			return rate
		}
	}
	return 0.02
}

// QueryTimeout borne toutes les requêtes base de données et appels Stripe.
func QueryTimeout() time.Duration {
	if v := os.Getenv("QUERY_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 10 * time.Second
}

func StripeWebhookSecret() string {
	return os.Getenv("STRIPE_WEBHOOK_SECRET")
}

func SellerEmail() string {
	return os.Getenv("SELLER_EMAIL")
}
