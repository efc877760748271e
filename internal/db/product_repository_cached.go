package db

import (
	"context"
	"fmt"

	"github.com/harvestlink/harvest-market/internal/cache"
	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CachedProductRepository decorates catalog reads with Redis for the public
// listing endpoints. Order and negotiation pricing reads bypass it and go to
// the plain repository, so a charged price is never a stale one.
type CachedProductRepository struct {
	repo  *ProductRepository
	cache *cache.RedisCache
}

func NewCachedProductRepository(repo *ProductRepository, cache *cache.RedisCache) *CachedProductRepository {
	return &CachedProductRepository{
		repo:  repo,
		cache: cache,
	}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func productListKey(filter models.ProductFilter) string {
	upcoming := "any"
	if filter.Upcoming != nil {
		upcoming = fmt.Sprintf("%t", *filter.Upcoming)
	}
	return fmt.Sprintf("products:%s:%s", upcoming, filter.FarmerID)
}

// List returns products with caching.
func (r *CachedProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	cacheKey := productListKey(filter)

	var products []models.Product
	if err := r.cache.Get(ctx, cacheKey, &products); err == nil {
		log.Debug().Str("key", cacheKey).Msg("📦 Cache HIT: product list")
		return products, nil
	}

	products, err := r.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, products); err != nil {
		log.Warn().Err(err).Msg("Failed to cache product list")
	}

	return products, nil
}

// GetByID returns a single product with caching.
func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	cacheKey := productKey(id)

	var product models.Product
	err := r.cache.Get(ctx, cacheKey, &product)
	if err == nil {
		log.Debug().Str("product_id", id).Msg("📦 Cache HIT: product")
		return &product, nil
	}
	if err != redis.Nil {
		log.Warn().Err(err).Msg("Cache error")
	}

	p, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	if err := r.cache.Set(ctx, cacheKey, p); err != nil {
		log.Warn().Err(err).Msg("Failed to cache product")
	}

	return p, nil
}

// Invalidate drops the cached entries touched by a product write.
func (r *CachedProductRepository) Invalidate(ctx context.Context, id, farmerID string) {
	keys := []string{productKey(id)}
	for _, upcoming := range []string{"any", "true", "false"} {
		keys = append(keys,
			fmt.Sprintf("products:%s:", upcoming),
			fmt.Sprintf("products:%s:%s", upcoming, farmerID),
		)
	}
	for _, key := range keys {
		if err := r.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to invalidate cache")
		}
	}
}
