package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// CatalogCache keeps catalog API responses close to the storefront.
type CatalogCache interface {
	GetProducts(ctx context.Context, query string) ([]model.CatalogProduct, error)
	SetProducts(ctx context.Context, query string, products []model.CatalogProduct) error
	GetProduct(ctx context.Context, id int64) (*model.CatalogProduct, error)
	SetProduct(ctx context.Context, product *model.CatalogProduct) error
	GetCategories(ctx context.Context) ([]model.Category, error)
	SetCategories(ctx context.Context, categories []model.Category) error
}

type redisCatalogCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) CatalogCache {
	return &redisCatalogCache{client: client, baseTTL: ttl}
}

func (r *redisCatalogCache) GetProducts(ctx context.Context, query string) ([]model.CatalogProduct, error) {
	var products []model.CatalogProduct
	if err := r.get(ctx, productsKey(query), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *redisCatalogCache) SetProducts(ctx context.Context, query string, products []model.CatalogProduct) error {
	return r.set(ctx, productsKey(query), products)
}

func (r *redisCatalogCache) GetProduct(ctx context.Context, id int64) (*model.CatalogProduct, error) {
	var product model.CatalogProduct
	if err := r.get(ctx, productKey(id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCatalogCache) SetProduct(ctx context.Context, product *model.CatalogProduct) error {
	return r.set(ctx, productKey(product.ID), product)
}

func (r *redisCatalogCache) GetCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.get(ctx, categoriesKey, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *redisCatalogCache) SetCategories(ctx context.Context, categories []model.Category) error {
	return r.set(ctx, categoriesKey, categories)
}

func (r *redisCatalogCache) get(ctx context.Context, key string, dst interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r *redisCatalogCache) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	// jitter spreads expiry of keys written by the same refresh run
	ttl := r.baseTTL + time.Duration(rand.Intn(10))*time.Second
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

const categoriesKey = "catalog:categories"

func productsKey(query string) string {
	return "catalog:products:" + query
}

func productKey(id int64) string {
	return fmt.Sprintf("catalog:product:%d", id)
}
