package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
)

// ProductRepository is an in-memory catalog.
type ProductRepository struct {
	hooks

	mu       sync.RWMutex
	products []entity.Product
}

// NewProductRepository creates a catalog holding products.
func NewProductRepository(products ...entity.Product) *ProductRepository {
	return &ProductRepository{products: append([]entity.Product(nil), products...)}
}

// Save inserts or replaces p.
func (r *ProductRepository) Save(p entity.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].ID == p.ID {
			r.products[i] = p
			return
		}
	}
	r.products = append(r.products, p)
}

// Remove deletes the product with id, if present.
func (r *ProductRepository) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return
		}
	}
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	if err := r.enter("FindAll"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.Product(nil), r.products...), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (entity.Product, error) {
	if err := r.enter("FindByID"); err != nil {
		return entity.Product{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return entity.Product{}, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
}

// SeedProducts is the catalog the memory store starts with in development.
func SeedProducts() []entity.Product {
	mrp := func(v float64) *float64 { return &v }
	return []entity.Product{
		{ID: "laban-001", Name: "Fresh Laban", Description: "Cultured buttermilk, bottled the morning it is made.", Price: 35, MRP: mrp(40), Image: "/images/laban.jpg", Category: "Dairy", Stock: 120, ShowOnHome: true},
		{ID: "laban-002", Name: "Rice Pudding", Description: "Slow-cooked roz bel laban topped with nuts.", Price: 45, Image: "/images/roz-bel-laban.jpg", Category: "Desserts", Stock: 80, ShowOnHome: true},
		{ID: "laban-003", Name: "Mahalabia", Description: "Milk pudding with rose water and pistachio.", Price: 40, MRP: mrp(50), Image: "/images/mahalabia.jpg", Category: "Desserts", Stock: 60},
		{ID: "laban-004", Name: "Greek Yogurt 500g", Description: "Strained full-fat yogurt.", Price: 55, Image: "/images/yogurt.jpg", Category: "Dairy", Stock: 200},
		{ID: "laban-005", Name: "Um Ali", Description: "Baked puff pastry in sweetened milk with raisins and coconut.", Price: 65, Image: "https://images.unsplash.com/photo-1551024506-0bccd828d307?w=400", Category: "Desserts", Stock: 40, ShowOnHome: true},
		{ID: "laban-006", Name: "Feta Cheese 250g", Description: "Brined white cheese.", Price: 70, Category: "Cheese", Stock: 90},
	}
}
