package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kareempogba0/B-Laban/internal/entity"
)

// OrderRepository keeps orders in insertion order.
type OrderRepository struct {
	hooks

	mu     sync.RWMutex
	orders []entity.Order
}

func NewOrderRepository(orders ...entity.Order) *OrderRepository {
	return &OrderRepository{orders: append([]entity.Order(nil), orders...)}
}

func (r *OrderRepository) Create(ctx context.Context, order entity.Order) (string, error) {
	if err := r.enter("Create"); err != nil {
		return "", err
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order)
	return order.ID, nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, uid string) ([]entity.Order, error) {
	if err := r.enter("FindByUser"); err != nil {
		return nil, err
	}
	out := r.filter(func(o entity.Order) bool { return o.UserID == uid })
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (r *OrderRepository) FindByUserAndStatus(ctx context.Context, uid string, status entity.OrderStatus) ([]entity.Order, error) {
	if err := r.enter("FindByUserAndStatus"); err != nil {
		return nil, err
	}
	return entity.OrdersWithStatus(r.filter(func(o entity.Order) bool { return o.UserID == uid }), status), nil
}

func (r *OrderRepository) filter(keep func(entity.Order) bool) []entity.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Order
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
