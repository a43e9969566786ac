package order

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"greencart_back_end/internal/config"
	"greencart_back_end/internal/models"
	"greencart_back_end/internal/payment"
	"greencart_back_end/internal/service"
	"greencart_back_end/internal/store"
)

// Handler expose les endpoints du flux de commande.
type Handler struct {
	Service *service.OrderService
	Gateway payment.Gateway
}

func NewHandler(svc *service.OrderService, gateway payment.Gateway) *Handler {
	return &Handler{Service: svc, Gateway: gateway}
}

type placeOrderRequest struct {
	Items   []models.CartItem `json:"items" binding:"required"`
	Address string            `json:"address" binding:"required"`
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), config.QueryTimeout())
}

// respondError mappe la taxonomie d'erreurs vers l'enveloppe uniforme
// {success, message} — jamais de stack trace côté client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, store.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, store.ErrOutOfStock):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, payment.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Paiement indisponible, réessayez plus tard"})
	default:
		log.Printf("❌ Erreur interne: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
	}
}

// PlaceOrderCOD : POST /api/order/cod
func (h *Handler) PlaceOrderCOD(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Non autorisé"})
		return
	}

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Données invalides"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	orderID, err := h.Service.PlaceCODOrder(ctx, userID, req.Items, req.Address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Commande passée avec succès",
		"orderId": orderID,
	})
}

// PlaceOrderStripe : POST /api/order/stripe
func (h *Handler) PlaceOrderStripe(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Non autorisé"})
		return
	}

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Données invalides"})
		return
	}

	origin := c.GetHeader("Origin")

	ctx, cancel := requestContext(c)
	defer cancel()

	url, err := h.Service.PlaceOnlineOrder(ctx, userID, req.Items, req.Address, origin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}

// StripeWebhook : POST /stripe — body brut obligatoire, la signature est
// vérifiée avant tout parsing.
func (h *Handler) StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	event, err := h.Gateway.ConstructEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Println("❌ Signature Stripe invalide:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
		return
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Service.ReconcilePaymentEvent(ctx, event); err != nil {
		// Erreur transitoire : on répond 500 pour que Stripe relivre l'événement.
		log.Printf("❌ Réconciliation échouée (%s): %v", event.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Traitement échoué"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetMyOrders : GET /api/order/user
func (h *Handler) GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Non autorisé"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.Service.UserOrders(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// GetAllOrders : GET /api/order/seller
func (h *Handler) GetAllOrders(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.Service.AllOrders(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
