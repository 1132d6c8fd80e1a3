package service

import (
	"context"
	"testing"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_GetProduct_CachesResult(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	product, err := env.catalog.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Linen Dress", product.Name)

	_, err = env.catalog.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), env.api.productHits.Load())
	assert.True(t, env.redis.Exists("catalog:product:1"))
}

func TestCatalogService_GetProduct_NotFound(t *testing.T) {
	env := setupServiceTest(t)

	_, err := env.catalog.GetProduct(context.Background(), 404)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, err, storefrontapi.ErrNotFound)
}

func TestCatalogService_Refresh(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	require.NoError(t, env.catalog.Refresh(ctx))

	products, err := env.cache.GetProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	categories, err := env.cache.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 3)

	listed, err := env.catalog.ListProducts(ctx, storefrontapi.ProductQuery{})
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestCatalogService_CategoryTree(t *testing.T) {
	env := setupServiceTest(t)

	tree, err := env.catalog.CategoryTree(context.Background())
	require.NoError(t, err)

	require.Len(t, tree, 2)
	assert.Equal(t, "Accessories", tree[0].Name)
	assert.Equal(t, "Women", tree[1].Name)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "dresses", tree[1].Children[0].Slug)
}

func TestBuildCategoryTree_OrphansAndCycles(t *testing.T) {
	missing := int64(42)
	self := int64(5)
	a, b := int64(6), int64(7)

	tree := BuildCategoryTree([]model.Category{
		{ID: 4, Name: "Orphan", ParentID: &missing},
		{ID: 5, Name: "Self", ParentID: &self},
		{ID: 6, Name: "A", ParentID: &b},
		{ID: 7, Name: "B", ParentID: &a},
	})

	names := make([]string, 0, len(tree))
	for _, c := range tree {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Orphan", "Self"}, names)
}
