package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/manajir-storefront/internal/app/service"
	"github.com/ikkim/manajir-storefront/internal/middleware"
	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
)

type ProductController struct {
	catalogService service.CatalogService
}

func NewProductController(catalogService service.CatalogService) *ProductController {
	return &ProductController{
		catalogService: catalogService,
	}
}

// GetAllProducts returns the catalog listing
// GET /api/v1/products?category=&minPrice=&maxPrice=&sortBy=&page=&limit=
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := storefrontapi.ProductQuery{
		Category: c.Query("category"),
		MinPrice: c.Query("minPrice"),
		MaxPrice: c.Query("maxPrice"),
		SortBy:   c.Query("sortBy"),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		query.Limit = limit
	}

	products, err := ctrl.catalogService.ListProducts(middleware.RequestContext(c), query)
	if err != nil {
		respondServiceError(c, log, err, "Failed to fetch products")
		return
	}

	log.Info("Products fetched successfully", map[string]interface{}{
		"count": len(products),
		"query": query.Encode(),
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductByID returns a product by ID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.catalogService.GetProduct(middleware.RequestContext(c), id)
	if err != nil {
		respondServiceError(c, log, err, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// GetCategories returns the category list, or the tree with ?tree=true
// GET /api/v1/categories
func (ctrl *ProductController) GetCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	ctx := middleware.RequestContext(c)

	if tree, _ := strconv.ParseBool(c.Query("tree")); tree {
		roots, err := ctrl.catalogService.CategoryTree(ctx)
		if err != nil {
			respondServiceError(c, log, err, "Failed to build category tree")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"categories": roots,
		})
		return
	}

	categories, err := ctrl.catalogService.ListCategories(ctx)
	if err != nil {
		respondServiceError(c, log, err, "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}
