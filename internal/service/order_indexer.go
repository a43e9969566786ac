package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"greencart_back_end/internal/database"
	"greencart_back_end/internal/models"
)

//
// --- INDEXATION DES COMMANDES DANS ELASTICSEARCH ---
//

// IndexOrder indexe une commande confirmée pour le tableau de bord vendeur.
// Best-effort : une erreur d'indexation ne doit jamais bloquer le paiement.
func IndexOrder(order models.Order) {
	if database.Elastic == nil {
		log.Println("⚠️ Elastic non initialisé, impossible d'indexer la commande", order.ID)
		return
	}

	data, _ := json.Marshal(order)
	req := esapi.IndexRequest{
		Index:      "orders",
		DocumentID: order.ID,
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour la commande %s: %s", order.ID, res.String())
	} else {
		log.Printf("✅ Commande indexée dans Elasticsearch: %s", order.ID)
	}
}
