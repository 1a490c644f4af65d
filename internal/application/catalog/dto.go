package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phoneshop/backend/internal/domain/catalog"
)

// CreateProductRequest creates a catalog product
type CreateProductRequest struct {
	SKU         string          `json:"sku" binding:"required,max=50"`
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Quantity    int             `json:"quantity" binding:"min=0"`
	Images      []string        `json:"images"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	BrandID     *uuid.UUID      `json:"brand_id"`
	Featured    bool            `json:"featured"`
}

// UpdateProductRequest updates a catalog product
type UpdateProductRequest struct {
	Name        string           `json:"name" binding:"required,max=200"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	Images      []string         `json:"images"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	BrandID     *uuid.UUID       `json:"brand_id"`
	Featured    *bool            `json:"featured"`
}

// ProductListFilter filters storefront product listings
type ProductListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"category_id"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir"`
}

// ProductResponse is the API shape of a product
type ProductResponse struct {
	ID          uuid.UUID  `json:"id"`
	SKU         string     `json:"sku"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Price       string     `json:"price"`
	Quantity    int        `json:"quantity"`
	InStock     bool       `json:"in_stock"`
	Status      string     `json:"status"`
	Images      []string   `json:"images"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	BrandID     *uuid.UUID `json:"brand_id,omitempty"`
	Featured    bool       `json:"featured"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CategoryRequest creates or updates a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

// CategoryResponse is the API shape of a category
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sort_order"`
}

// BrandRequest creates or updates a brand
type BrandRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	LogoURL string `json:"logo_url"`
}

// BrandResponse is the API shape of a brand
type BrandResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	LogoURL string    `json:"logo_url,omitempty"`
}

// ToProductResponse maps a product aggregate to the API response
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Quantity:    p.Quantity,
		InStock:     p.IsInStock(),
		Status:      string(p.Status),
		Images:      images,
		CategoryID:  p.CategoryID,
		BrandID:     p.BrandID,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToCategoryResponse maps a category to the API response
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
	}
}

// ToBrandResponse maps a brand to the API response
func ToBrandResponse(b *catalog.Brand) BrandResponse {
	return BrandResponse{
		ID:      b.ID,
		Name:    b.Name,
		Slug:    b.Slug,
		LogoURL: b.LogoURL,
	}
}
