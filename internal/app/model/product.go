package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const PlaceholderImageURL = "https://placehold.co/600x800?text=No+Image"

var (
	ErrSizeRequired  = errors.New("size selection required")
	ErrColorRequired = errors.New("color selection required")
	ErrInvalidSize   = errors.New("size not offered for product")
	ErrInvalidColor  = errors.New("color not offered for product")
)

type ProductImage struct {
	AltText string `json:"altText"`
	URL     string `json:"url"`
}

type ProductColor struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type CategoryRef struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Slug     string       `json:"slug"`
	ParentID *int64       `json:"parentId"`
	Parent   *CategoryRef `json:"parent,omitempty"`
}

type Category struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Image     string     `json:"image,omitempty"`
	ParentID  *int64     `json:"parentId"`
	Children  []Category `json:"children,omitempty"`
	CreatedAt string     `json:"createdAt,omitempty"`
	UpdatedAt string     `json:"updatedAt,omitempty"`
}

// Variant is one purchasable size/color combination of a catalog product.
type Variant struct {
	ID    int64            `json:"id"`
	SKU   string           `json:"sku,omitempty"`
	Size  string           `json:"size,omitempty"`
	Color string           `json:"color,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
	Stock int              `json:"stock,omitempty"`
}

// CatalogProduct is a product record as served by the catalog API.
type CatalogProduct struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Brand         string           `json:"brand,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Stock         int              `json:"stock,omitempty"`
	SKU           string           `json:"sku,omitempty"`
	Images        []ProductImage   `json:"images"`
	CategoryID    *int64           `json:"categoryId,omitempty"`
	Category      *CategoryRef     `json:"category,omitempty"`
	Colors        []ProductColor   `json:"colors"`
	Sizes         []string         `json:"sizes"`
	Variants      []Variant        `json:"variants,omitempty"`
	IsNew         bool             `json:"isNew,omitempty"`
	IsSale        bool             `json:"isSale,omitempty"`
	CreatedAt     string           `json:"createdAt,omitempty"`
	UpdatedAt     string           `json:"updatedAt,omitempty"`
}

// NormalizeCatalogProduct fills the defaults the storefront relies on.
func NormalizeCatalogProduct(p CatalogProduct) CatalogProduct {
	if len(p.Images) == 0 {
		p.Images = []ProductImage{{AltText: p.Name, URL: PlaceholderImageURL}}
	}
	if p.Colors == nil {
		p.Colors = []ProductColor{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	return p
}

// ProductSnapshot is the flattened product value captured when an item is
// added to the cart or wishlist. Prices are not refreshed afterwards.
type ProductSnapshot struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Image         string           `json:"image,omitempty"`
	SKU           string           `json:"sku,omitempty"`
	VariantID     int64            `json:"variantId"`
	CapturedAt    time.Time        `json:"capturedAt"`
}

// NewProductSnapshot validates a size/color selection against the catalog
// product and resolves the variant it refers to. Empty size and color are
// accepted only when the product offers none.
func NewProductSnapshot(p CatalogProduct, size, color string) (ProductSnapshot, error) {
	p = NormalizeCatalogProduct(p)

	if len(p.Sizes) > 0 {
		if size == "" {
			return ProductSnapshot{}, ErrSizeRequired
		}
		if !containsFold(p.Sizes, size) {
			return ProductSnapshot{}, ErrInvalidSize
		}
	}
	if len(p.Colors) > 0 {
		if color == "" {
			return ProductSnapshot{}, ErrColorRequired
		}
		if !colorOffered(p.Colors, color) {
			return ProductSnapshot{}, ErrInvalidColor
		}
	}

	snap := ProductSnapshot{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Image:         p.Images[0].URL,
		SKU:           p.SKU,
		VariantID:     p.ID,
		CapturedAt:    time.Now(),
	}

	if v := p.FindVariant(size, color); v != nil {
		snap.VariantID = v.ID
		if v.SKU != "" {
			snap.SKU = v.SKU
		}
		if v.Price != nil {
			snap.Price = *v.Price
		}
	}
	return snap, nil
}

// NewWishlistProduct captures a product without a variant selection.
func NewWishlistProduct(p CatalogProduct) ProductSnapshot {
	p = NormalizeCatalogProduct(p)
	return ProductSnapshot{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Image:         p.Images[0].URL,
		SKU:           p.SKU,
		VariantID:     p.ID,
		CapturedAt:    time.Now(),
	}
}

// FindVariant returns the variant matching size and color, or nil.
func (p CatalogProduct) FindVariant(size, color string) *Variant {
	for i := range p.Variants {
		v := &p.Variants[i]
		if strings.EqualFold(v.Size, size) && strings.EqualFold(v.Color, color) {
			return v
		}
	}
	return nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

func colorOffered(colors []ProductColor, target string) bool {
	for _, c := range colors {
		if strings.EqualFold(c.Name, target) || strings.EqualFold(c.Value, target) {
			return true
		}
	}
	return false
}
