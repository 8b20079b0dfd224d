package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"

	"github.com/redis/go-redis/v9"
)

const (
	productsKey   = "catalog:products"
	productPrefix = "catalog:product:"
)

// CatalogRedisCache は商品一覧と商品詳細を JSON でキャッシュする
type CatalogRedisCache struct {
	client *redis.Client
}

func NewCatalogRedisCache(client *redis.Client) *CatalogRedisCache {
	return &CatalogRedisCache{client: client}
}

func (c *CatalogRedisCache) GetProducts(ctx context.Context) ([]model.Product, bool, error) {
	var products []model.Product
	ok, err := c.get(ctx, productsKey, &products)
	if !ok || err != nil {
		return nil, ok, err
	}
	return products, true, nil
}

func (c *CatalogRedisCache) SetProducts(ctx context.Context, products []model.Product, ttl time.Duration) error {
	return c.set(ctx, productsKey, products, ttl)
}

func (c *CatalogRedisCache) GetProduct(ctx context.Context, productID string) (model.Product, bool, error) {
	var p model.Product
	ok, err := c.get(ctx, productPrefix+productID, &p)
	if !ok || err != nil {
		return model.Product{}, ok, err
	}
	return p, true, nil
}

func (c *CatalogRedisCache) SetProduct(ctx context.Context, p model.Product, ttl time.Duration) error {
	return c.set(ctx, productPrefix+p.ID, p, ttl)
}

func (c *CatalogRedisCache) get(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		//壊れたエントリはミス扱いにして消す
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (c *CatalogRedisCache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

var _ repo.CatalogCache = (*CatalogRedisCache)(nil)
