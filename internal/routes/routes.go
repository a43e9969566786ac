package routes

import (
	"log"

	"github.com/gin-gonic/gin"

	"greencart_back_end/internal/config"
	orderhandlers "greencart_back_end/internal/handlers/order"
	"greencart_back_end/internal/middleware"
	"greencart_back_end/internal/models"
	"greencart_back_end/internal/payment"
	"greencart_back_end/internal/service"
	"greencart_back_end/internal/store"
	"greencart_back_end/internal/utils"
)

func RegisterRoutes(r *gin.Engine) {
	gateway := payment.NewStripeGateway(config.StripeWebhookSecret())

	orderService := service.NewOrderService(
		store.NewScyllaCatalog(),
		store.NewRedisCart(),
		store.NewScyllaOrders(),
		store.NewScyllaAddresses(),
		store.NewScyllaUsers(),
		gateway,
		config.TaxRate(),
	)

	// Après confirmation de paiement : e-mail + indexation, hors chemin critique.
	orderService.OnConfirmed(func(order models.Order, userEmail string) {
		go func() {
			service.IndexOrder(order)

			if userEmail == "" {
				return
			}
			html := utils.GenerateOrderConfirmationHTML(order)
			if err := utils.SendConfirmationEmail(userEmail, "Confirmation de votre commande GreenCart", html); err != nil {
				log.Println("❌ Erreur envoi e-mail confirmation :", err)
			} else {
				log.Println("📧 E-mail de confirmation envoyé à", userEmail)
			}
		}()
	})

	h := orderhandlers.NewHandler(orderService, gateway)

	// Webhook Stripe : body brut, pas de middleware d'authentification.
	r.POST("/stripe", h.StripeWebhook)

	api := r.Group("/api")
	{
		order := api.Group("/order")
		{
			order.POST("/cod", middleware.AuthRequired(), h.PlaceOrderCOD)
			order.POST("/stripe", middleware.AuthRequired(), h.PlaceOrderStripe)
			order.GET("/user", middleware.AuthRequired(), h.GetMyOrders)
			order.GET("/seller", middleware.AuthSeller(), h.GetAllOrders)
		}
	}
}
