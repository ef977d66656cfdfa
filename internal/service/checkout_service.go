package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/messaging"
	"github.com/kareempogba0/B-Laban/internal/pricing"
	"github.com/kareempogba0/B-Laban/internal/repository"
	"github.com/kareempogba0/B-Laban/internal/state"
)

// CheckoutRequest carries what the shopper picked on the checkout page.
type CheckoutRequest struct {
	ShippingAddress entity.Address `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
}

// CheckoutService turns the session cart into an order.
type CheckoutService struct {
	orders    repository.OrderRepository
	catalog   *CatalogService
	publisher messaging.Publisher
	now       func() time.Time
}

func NewCheckoutService(orders repository.OrderRepository, catalog *CatalogService, publisher messaging.Publisher) *CheckoutService {
	return &CheckoutService{orders: orders, catalog: catalog, publisher: publisher, now: time.Now}
}

// PlaceOrder writes an order for every cart line whose product still
// exists, then removes those lines from the cart.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sess *state.Session, req CheckoutRequest) (entity.Order, error) {
	user, err := sess.CurrentUser()
	if err != nil {
		return entity.Order{}, err
	}
	cart := sess.Cart.State()
	if len(cart.Items) == 0 {
		return entity.Order{}, apperr.ErrEmptyCart
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return entity.Order{}, apperr.Invalid("paymentMethod", "Please choose a payment method.")
	}
	if req.ShippingAddress.IsZero() {
		return entity.Order{}, apperr.Invalid("shippingAddress", "Please enter a shipping address.")
	}

	slog.Info("Service: Placing order", "session_id", sess.ID, "uid", user.UID, "lines", len(cart.Items))

	items := make([]entity.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		p, err := s.catalog.Product(ctx, line.ProductID)
		if errors.Is(err, apperr.ErrNotFound) {
			slog.Warn("Skipping cart line for missing product", "product_id", line.ProductID)
			continue
		}
		if err != nil {
			return entity.Order{}, fmt.Errorf("failed to price %s: %w", line.ProductID, err)
		}
		items = append(items, entity.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			Price:     p.Price,
		})
	}
	if len(items) == 0 {
		return entity.Order{}, apperr.ErrEmptyCart
	}

	address := req.ShippingAddress
	order := entity.Order{
		UserID:          user.UID,
		Items:           items,
		Status:          entity.OrderStatusPlaced,
		OrderDate:       s.now(),
		TotalAmount:     pricing.OrderTotal(items).InexactFloat64(),
		ShippingAddress: &address,
		PaymentMethod:   req.PaymentMethod,
	}

	id, err := s.orders.Create(ctx, order)
	if err != nil {
		return entity.Order{}, fmt.Errorf("failed to save order: %w", err)
	}
	order.ID = id

	if _, err := sess.Cart.Dispatch(ctx, entity.PurchasedItemsRemoved{ProductIDs: order.ProductIDs()}); err != nil {
		slog.Error("Failed to remove purchased items from cart", "order_id", id, "err", err)
	}

	placed := entity.OrderPlaced{
		OrderID:     id,
		UserID:      user.UID,
		Items:       items,
		TotalAmount: order.TotalAmount,
		PlacedAt:    order.OrderDate,
	}
	if err := s.publisher.PublishEvent(ctx, messaging.TopicOrdersPlaced, id, placed); err != nil {
		slog.Error("Failed to publish OrderPlaced", "order_id", id, "err", err)
	}

	slog.Info("Order placed", "order_id", id, "uid", user.UID, "total", pricing.FormatCurrency(pricing.OrderTotal(items)))
	return order, nil
}

// History returns the user's orders, newest first, with display totals.
func (s *CheckoutService) History(ctx context.Context, uid string) ([]pricing.OrderSummary, error) {
	orders, err := s.orders.FindByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return pricing.Summarize(orders), nil
}
