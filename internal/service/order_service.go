package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"

	"greencart_back_end/internal/models"
	"greencart_back_end/internal/payment"
	"greencart_back_end/internal/store"
)

var ErrValidation = errors.New("données invalides")

// Suffixes de redirection après checkout, ajoutés à l'origine du client.
const (
	successPathSuffix = "/loader?next=my-orders"
	cancelPathSuffix  = "/cart"
)

// OrderService orchestre le placement des commandes (COD et en ligne) et la
// réconciliation des événements de paiement Stripe.
type OrderService struct {
	catalog   store.CatalogStore
	cart      store.CartStore
	orders    store.OrderStore
	addresses store.AddressStore
	users     store.UserStore
	gateway   payment.Gateway
	taxRate   float64

	// Appelé quand un paiement en ligne est confirmé (e-mail, indexation).
	onConfirmed func(order models.Order, userEmail string)
}

func NewOrderService(
	catalog store.CatalogStore,
	cart store.CartStore,
	orders store.OrderStore,
	addresses store.AddressStore,
	users store.UserStore,
	gateway payment.Gateway,
	taxRate float64,
) *OrderService {
	return &OrderService{
		catalog:   catalog,
		cart:      cart,
		orders:    orders,
		addresses: addresses,
		users:     users,
		gateway:   gateway,
		taxRate:   taxRate,
	}
}

// OnConfirmed enregistre le hook de confirmation de paiement.
func (s *OrderService) OnConfirmed(fn func(order models.Order, userEmail string)) {
	s.onConfirmed = fn
}

// validateAndPrice vérifie items + adresse, résout les produits en une seule
// requête et retourne la map id → produit avec le montant TTC en centimes.
func (s *OrderService) validateAndPrice(ctx context.Context, userID string, items []models.CartItem, addressID string) (map[string]models.Product, int64, error) {
	if len(items) == 0 || addressID == "" {
		return nil, 0, ErrValidation
	}
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			return nil, 0, ErrValidation
		}
	}

	addr, err := s.addresses.ByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, store.ErrAddressNotFound) {
			return nil, 0, fmt.Errorf("%w: adresse introuvable", ErrValidation)
		}
		return nil, 0, err
	}
	if addr.UserID != userID {
		return nil, 0, fmt.Errorf("%w: adresse non autorisée", ErrValidation)
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", store.ErrProductNotFound, item.ProductID)
		}
		if product.Stock < item.Quantity {
			return nil, 0, fmt.Errorf("%w: %s (disponible: %d, demandé: %d)",
				store.ErrOutOfStock, product.Name, product.Stock, item.Quantity)
		}
	}

	return products, ComputeAmountCents(items, products, s.taxRate), nil
}

func snapshotItems(items []models.CartItem, products map[string]models.Product) []models.OrderItem {
	snapshot := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product := products[item.ProductID]
		snapshot = append(snapshot, models.OrderItem{
			ProductID:  item.ProductID,
			Name:       product.Name,
			OfferPrice: product.OfferPrice,
			Quantity:   item.Quantity,
		})
	}
	return snapshot
}

// PlaceCODOrder crée une commande paiement à la livraison : décrément
// conditionnel du stock, insertion de la commande, vidage du panier. Si une
// étape échoue, les décréments déjà appliqués sont restaurés — aucun décrément
// partiel ne survit à un placement raté.
func (s *OrderService) PlaceCODOrder(ctx context.Context, userID string, items []models.CartItem, addressID string) (string, error) {
	products, amountCents, err := s.validateAndPrice(ctx, userID, items, addressID)
	if err != nil {
		return "", err
	}

	ok, rejected, err := s.catalog.DecrementStock(ctx, items)
	if err != nil {
		return "", err
	}
	if !ok {
		if len(rejected) > 0 {
			r := rejected[0]
			return "", fmt.Errorf("%w: %s (disponible: %d, demandé: %d)",
				store.ErrOutOfStock, r.ProductID, r.Available, r.Requested)
		}
		return "", store.ErrOutOfStock
	}

	order := models.Order{
		ID:          uuid.NewString(),
		UserID:      userID,
		Items:       snapshotItems(items, products),
		Amount:      AmountToMajor(amountCents),
		AddressID:   addressID,
		PaymentType: models.PaymentTypeCOD,
		IsPaid:      true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		// Compensation : le stock décrémenté ne doit pas persister.
		if restoreErr := s.catalog.RestoreStock(ctx, items); restoreErr != nil {
			log.Printf("❌ Restauration stock après échec insertion: %v", restoreErr)
		}
		return "", err
	}

	// La commande est engagée : on vide le panier exactement ici pour le COD.
	if err := s.cart.Clear(ctx, userID); err != nil {
		log.Printf("⚠️ Vidage panier échoué pour %s: %v", userID, err)
	}

	return order.ID, nil
}

// PlaceOnlineOrder crée une commande impayée (aucun stock réservé : il ne l'est
// qu'à la confirmation du paiement) puis demande une session Checkout hébergée.
// Retourne l'URL de redirection Stripe.
func (s *OrderService) PlaceOnlineOrder(ctx context.Context, userID string, items []models.CartItem, addressID, origin string) (string, error) {
	if origin == "" {
		return "", ErrValidation
	}

	products, amountCents, err := s.validateAndPrice(ctx, userID, items, addressID)
	if err != nil {
		return "", err
	}

	order := models.Order{
		ID:          uuid.NewString(),
		UserID:      userID,
		Items:       snapshotItems(items, products),
		Amount:      AmountToMajor(amountCents),
		AddressID:   addressID,
		PaymentType: models.PaymentTypeOnline,
		IsPaid:      false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		return "", err
	}

	lineItems := make([]payment.LineItem, 0, len(items))
	for _, item := range items {
		product := products[item.ProductID]
		lineItems = append(lineItems, payment.LineItem{
			Name:       product.Name,
			UnitAmount: TaxedUnitAmount(product.OfferPrice, s.taxRate),
			Quantity:   int64(item.Quantity),
		})
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, lineItems,
		origin+successPathSuffix, origin+cancelPathSuffix,
		map[string]string{"order_id": order.ID, "user_id": userID})
	if err != nil {
		// Pas de session, pas de commande : on retire l'enregistrement en attente.
		if delErr := s.orders.Delete(ctx, order.ID); delErr != nil {
			log.Printf("⚠️ Suppression commande %s après échec Stripe: %v", order.ID, delErr)
		}
		return "", err
	}

	// INSERT = upsert en CQL : on réécrit la commande avec l'id de session.
	order.StripeSessionID = sess.ID
	if err := s.orders.Insert(ctx, order); err != nil {
		log.Printf("⚠️ Enregistrement session %s sur commande %s échoué: %v", sess.ID, order.ID, err)
	}

	return sess.URL, nil
}

// ReconcilePaymentEvent consomme un événement Stripe déjà vérifié. La livraison
// est at-least-once et possiblement désordonnée : tout le traitement est
// idempotent. Une erreur retournée signale à Stripe de réessayer.
func (s *OrderService) ReconcilePaymentEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		return s.confirmPayment(ctx, event)
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		return s.cancelPendingOrder(ctx, event)
	default:
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
		return nil
	}
}

func sessionFromEvent(event stripe.Event) (*stripe.CheckoutSession, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *OrderService) confirmPayment(ctx context.Context, event stripe.Event) error {
	sess, err := sessionFromEvent(event)
	if err != nil {
		log.Printf("⚠️ Décodage session impossible (%s): %v", event.ID, err)
		return nil // payload malformé : réessayer ne changera rien
	}

	orderID := sess.Metadata["order_id"]
	userID := sess.Metadata["user_id"]
	if orderID == "" || userID == "" {
		log.Printf("⚠️ Métadonnées incomplètes sur l'événement %s", event.ID)
		return nil
	}

	order, err := s.orders.ByID(ctx, orderID)
	if errors.Is(err, store.ErrOrderNotFound) {
		log.Printf("⚠️ Commande %s introuvable pour l'événement %s", orderID, event.ID)
		return nil
	}
	if err != nil {
		return err
	}

	if order.IsPaid {
		log.Printf("🔁 Commande %s déjà payée, on ignore (%s)", orderID, event.Type)
		return nil
	}

	if err := s.orders.MarkPaid(ctx, orderID); err != nil {
		return err
	}
	order.IsPaid = true

	if err := s.cart.Clear(ctx, order.UserID); err != nil {
		log.Printf("⚠️ Vidage panier échoué pour %s: %v", order.UserID, err)
	}

	// Le paiement a déjà eu lieu : un échec de décrément est une dérive
	// d'inventaire à corriger, pas une raison de refuser l'événement.
	items := make([]models.CartItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, models.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if ok, rejected, err := s.catalog.DecrementStock(ctx, items); err != nil {
		log.Printf("⚠️ Décrément stock commande %s échoué: %v", orderID, err)
	} else if !ok {
		log.Printf("⚠️ Stock insuffisant post-paiement pour la commande %s: %+v", orderID, rejected)
	}

	log.Printf("✅ Commande %s confirmée payée (%s)", orderID, event.Type)

	if s.onConfirmed != nil {
		email := ""
		if user, err := s.users.ByID(ctx, order.UserID); err == nil {
			email = user.Email
		} else {
			log.Printf("⚠️ E-mail introuvable pour %s: %v", order.UserID, err)
		}
		s.onConfirmed(*order, email)
	}

	return nil
}

// cancelPendingOrder supprime la commande en attente : aucun stock n'a été
// décrémenté à la création de session, il n'y a donc rien à restituer.
func (s *OrderService) cancelPendingOrder(ctx context.Context, event stripe.Event) error {
	sess, err := sessionFromEvent(event)
	if err != nil {
		log.Printf("⚠️ Décodage session impossible (%s): %v", event.ID, err)
		return nil
	}

	orderID := sess.Metadata["order_id"]
	if orderID == "" {
		log.Printf("⚠️ Métadonnées incomplètes sur l'événement %s", event.ID)
		return nil
	}

	order, err := s.orders.ByID(ctx, orderID)
	if errors.Is(err, store.ErrOrderNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if order.IsPaid {
		// Événements désordonnés : une expiration après paiement ne détruit rien.
		log.Printf("🔁 Expiration ignorée, la commande %s est payée", orderID)
		return nil
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		return err
	}
	log.Printf("🗑️ Commande %s supprimée (%s)", orderID, event.Type)
	return nil
}

// visibleOrders filtre les commandes abandonnées : une commande n'est visible
// que si elle est COD ou effectivement payée.
func visibleOrders(orders []models.Order) []models.Order {
	visible := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if order.PaymentType == models.PaymentTypeCOD || order.IsPaid {
			visible = append(visible, order)
		}
	}
	return visible
}

// resolveAddresses attache l'adresse de livraison à chaque commande.
func (s *OrderService) resolveAddresses(ctx context.Context, orders []models.Order) {
	cache := make(map[string]*models.Address)
	for i := range orders {
		addr, ok := cache[orders[i].AddressID]
		if !ok {
			var err error
			addr, err = s.addresses.ByID(ctx, orders[i].AddressID)
			if err != nil {
				continue
			}
			cache[orders[i].AddressID] = addr
		}
		orders[i].Address = addr
	}
}

// UserOrders retourne les commandes visibles d'un utilisateur, plus récentes
// en premier.
func (s *OrderService) UserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	visible := visibleOrders(orders)
	s.resolveAddresses(ctx, visible)
	return visible, nil
}

// AllOrders retourne toutes les commandes visibles (tableau de bord vendeur).
func (s *OrderService) AllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	visible := visibleOrders(orders)
	s.resolveAddresses(ctx, visible)
	return visible, nil
}
