package service

import (
	"context"
	"errors"
	"sort"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/repository"
	"github.com/ikkim/manajir-storefront/pkg/logger"
	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
)

// CatalogAPI is the read side of the storefront API.
type CatalogAPI interface {
	ListProducts(ctx context.Context, query storefrontapi.ProductQuery) ([]model.CatalogProduct, error)
	GetProduct(ctx context.Context, id int64) (*model.CatalogProduct, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type CatalogService interface {
	ListProducts(ctx context.Context, query storefrontapi.ProductQuery) ([]model.CatalogProduct, error)
	GetProduct(ctx context.Context, id int64) (*model.CatalogProduct, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CategoryTree(ctx context.Context) ([]model.Category, error)
	Refresh(ctx context.Context) error
}

type catalogService struct {
	api   CatalogAPI
	cache repository.CatalogCache
}

// NewCatalogService reads through cache when it is non-nil.
func NewCatalogService(api CatalogAPI, cache repository.CatalogCache) CatalogService {
	return &catalogService{
		api:   api,
		cache: cache,
	}
}

func (s *catalogService) ListProducts(ctx context.Context, query storefrontapi.ProductQuery) ([]model.CatalogProduct, error) {
	key := query.Encode()
	if s.cache != nil {
		if products, err := s.cache.GetProducts(ctx, key); err == nil {
			return products, nil
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			logger.Warn("Catalog cache read failed", map[string]interface{}{
				"query": key,
				"error": err.Error(),
			})
		}
	}

	products, err := s.api.ListProducts(ctx, query)
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"query": key,
		})
		return nil, translate(err, nil)
	}

	s.storeProducts(ctx, key, products)
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*model.CatalogProduct, error) {
	if s.cache != nil {
		if product, err := s.cache.GetProduct(ctx, id); err == nil {
			return product, nil
		}
	}

	product, err := s.api.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, storefrontapi.ErrNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
		} else {
			logger.Error("Failed to fetch product", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, translate(err, ErrProductNotFound)
	}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, product); err != nil {
			logger.Warn("Failed to cache product", map[string]interface{}{
				"product_id": id,
				"error":      err.Error(),
			})
		}
	}
	return product, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	if s.cache != nil {
		if categories, err := s.cache.GetCategories(ctx); err == nil {
			return categories, nil
		}
	}

	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, translate(err, nil)
	}

	s.storeCategories(ctx, categories)
	return categories, nil
}

func (s *catalogService) CategoryTree(ctx context.Context) ([]model.Category, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(categories), nil
}

// Refresh reloads the default product listing and the categories into
// the cache, bypassing cached values.
func (s *catalogService) Refresh(ctx context.Context) error {
	products, err := s.api.ListProducts(ctx, storefrontapi.ProductQuery{})
	if err != nil {
		return translate(err, nil)
	}
	s.storeProducts(ctx, "", products)

	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		return translate(err, nil)
	}
	s.storeCategories(ctx, categories)

	logger.Debug("Catalog refreshed", map[string]interface{}{
		"products":   len(products),
		"categories": len(categories),
	})
	return nil
}

func (s *catalogService) storeProducts(ctx context.Context, key string, products []model.CatalogProduct) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProducts(ctx, key, products); err != nil {
		logger.Warn("Failed to cache product list", map[string]interface{}{
			"query": key,
			"error": err.Error(),
		})
	}
}

func (s *catalogService) storeCategories(ctx context.Context, categories []model.Category) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetCategories(ctx, categories); err != nil {
		logger.Warn("Failed to cache categories", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// BuildCategoryTree nests categories under their parents. Categories whose
// parent is unknown are treated as roots.
func BuildCategoryTree(categories []model.Category) []model.Category {
	byParent := make(map[int64][]model.Category)
	known := make(map[int64]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	var roots []model.Category
	for _, c := range categories {
		if c.ParentID == nil || !known[*c.ParentID] || *c.ParentID == c.ID {
			roots = append(roots, c)
			continue
		}
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}

	var attach func(c model.Category, depth int) model.Category
	attach = func(c model.Category, depth int) model.Category {
		c.Children = nil
		if depth > len(categories) {
			return c
		}
		for _, child := range byParent[c.ID] {
			c.Children = append(c.Children, attach(child, depth+1))
		}
		return c
	}

	tree := make([]model.Category, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, attach(root, 0))
	}
	sort.SliceStable(tree, func(i, j int) bool { return tree[i].Name < tree[j].Name })
	return tree
}
