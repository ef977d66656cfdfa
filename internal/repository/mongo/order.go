package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

type orderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository creates a new OrderRepository backed by MongoDB.
func NewOrderRepository(db *mongo.Database) repository.OrderRepository {
	return &orderRepository{coll: db.Collection(ordersCollection)}
}

func (r *orderRepository) Create(ctx context.Context, order entity.Order) (string, error) {
	id := order.ID
	if id == "" {
		id = uuid.NewString()
	}
	doc := bson.M(order.Document())
	doc["_id"] = id
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create order: %w", translateError(err))
	}
	return id, nil
}

func (r *orderRepository) FindByUser(ctx context.Context, uid string) ([]entity.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}})
	orders, err := findAll(ctx, r.coll, bson.M{"userId": uid}, opts, entity.OrderFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders of %s: %w", uid, err)
	}
	return orders, nil
}

func (r *orderRepository) FindByUserAndStatus(ctx context.Context, uid string, status entity.OrderStatus) ([]entity.Order, error) {
	orders, err := findAll(ctx, r.coll, bson.M{"userId": uid}, nil, entity.OrderFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s orders of %s: %w", status, uid, err)
	}
	return entity.OrdersWithStatus(orders, status), nil
}
