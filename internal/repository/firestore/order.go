package firestore

import (
	"context"
	"fmt"
	"sort"

	firestoreGo "cloud.google.com/go/firestore"

	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

type orderRepository struct {
	client *firestoreGo.Client
}

// NewOrderRepository creates a new OrderRepository backed by Firestore.
func NewOrderRepository(client *firestoreGo.Client) repository.OrderRepository {
	return &orderRepository{client: client}
}

func (r *orderRepository) Create(ctx context.Context, order entity.Order) (string, error) {
	ref := r.client.Collection(ordersCollection).NewDoc()
	if order.ID != "" {
		ref = r.client.Collection(ordersCollection).Doc(order.ID)
	}
	if _, err := ref.Create(ctx, order.Document()); err != nil {
		return "", fmt.Errorf("failed to create order: %w", translateError(err))
	}
	return ref.ID, nil
}

func (r *orderRepository) FindByUser(ctx context.Context, uid string) ([]entity.Order, error) {
	iter := r.client.Collection(ordersCollection).Where("userId", "==", uid).Documents(ctx)
	orders, err := getAll(iter, entity.OrderFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders of %s: %w", uid, err)
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].OrderDate.After(orders[j].OrderDate) })
	return orders, nil
}

func (r *orderRepository) FindByUserAndStatus(ctx context.Context, uid string, status entity.OrderStatus) ([]entity.Order, error) {
	iter := r.client.Collection(ordersCollection).Where("userId", "==", uid).Documents(ctx)
	orders, err := getAll(iter, entity.OrderFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s orders of %s: %w", status, uid, err)
	}
	return entity.OrdersWithStatus(orders, status), nil
}
