package firestore

import (
	"context"
	"fmt"

	firestoreGo "cloud.google.com/go/firestore"

	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

type productRepository struct {
	client *firestoreGo.Client
}

// NewProductRepository creates a new ProductRepository backed by Firestore.
func NewProductRepository(client *firestoreGo.Client) repository.ProductRepository {
	return &productRepository{client: client}
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	products, err := getAll(r.client.Collection(productsCollection).Documents(ctx), entity.ProductFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (entity.Product, error) {
	snap, err := getDoc(ctx, r.client.Collection(productsCollection).Doc(id))
	if err != nil {
		return entity.Product{}, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return entity.ProductFromDocument(snap.Ref.ID, snap.Data())
}
