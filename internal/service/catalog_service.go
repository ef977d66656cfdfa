package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kareempogba0/B-Laban/internal/cache"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
	"github.com/kareempogba0/B-Laban/internal/state"
)

// ProductsCacheKey is the per-session key of the cached product list.
const ProductsCacheKey = "products_cache"

// CatalogService serves the product catalog with a per-session read-through
// cache. Entries are only dropped when their session closes.
type CatalogService struct {
	products     repository.ProductRepository
	cache        cache.Cache
	imageBaseURL string
}

func NewCatalogService(products repository.ProductRepository, c cache.Cache, imageBaseURL string) *CatalogService {
	return &CatalogService{products: products, cache: c, imageBaseURL: imageBaseURL}
}

// Products returns the catalog as the session first saw it.
func (s *CatalogService) Products(ctx context.Context, sess *state.Session) ([]entity.Product, error) {
	key := cache.SessionKey(sess.ID, ProductsCacheKey)

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Product cache unavailable, reading through", "session_id", sess.ID, "err", err)
	}
	if ok {
		var products []entity.Product
		decodeErr := json.Unmarshal(raw, &products)
		if decodeErr == nil {
			return products, nil
		}
		slog.Warn("Discarding unreadable product cache", "session_id", sess.ID, "err", decodeErr)
	}

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	for i := range products {
		products[i].Image = products[i].ResolveImageURL(s.imageBaseURL)
	}

	if payload, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, key, payload); err != nil {
			slog.Warn("Failed to cache products", "session_id", sess.ID, "err", err)
		}
	}
	return products, nil
}

// Product reads one product from the store.
func (s *CatalogService) Product(ctx context.Context, id string) (entity.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return entity.Product{}, err
	}
	p.Image = p.ResolveImageURL(s.imageBaseURL)
	return p, nil
}

// ForgetSession drops the session's cache entries. It is registered as a
// session close hook.
func (s *CatalogService) ForgetSession(ctx context.Context, sessionID string) {
	if err := s.cache.Delete(ctx, cache.SessionKey(sessionID, ProductsCacheKey)); err != nil {
		slog.Warn("Failed to drop product cache", "session_id", sessionID, "err", err)
	}
}
