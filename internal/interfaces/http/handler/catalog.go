package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/phoneshop/backend/internal/application/catalog"
)

const defaultFeaturedLimit = 8

// CatalogHandler serves the public storefront catalog endpoints.
// All routes are read-only and unauthenticated, catalog management
// lives in AdminCatalogHandler.
type CatalogHandler struct {
	BaseHandler
	productService  *catalogapp.ProductService
	categoryService *catalogapp.CategoryService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(productService *catalogapp.ProductService, categoryService *catalogapp.CategoryService) *CatalogHandler {
	return &CatalogHandler{
		productService:  productService,
		categoryService: categoryService,
	}
}

// RegisterRoutes registers public catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/featured", h.FeaturedProducts)
		products.GET("/:slug", h.GetProduct)
	}
	rg.GET("/categories", h.ListCategories)
	rg.GET("/brands", h.ListBrands)
}

// ListProducts lists active products with pagination and filtering
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// FeaturedProducts lists the featured storefront products
func (h *CatalogHandler) FeaturedProducts(c *gin.Context) {
	limit := defaultFeaturedLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			h.BadRequest(c, "limit must be between 1 and 50")
			return
		}
		limit = parsed
	}

	products, err := h.productService.Featured(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// GetProduct returns one product by its URL slug
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListCategories lists all categories in display order
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// ListBrands lists all brands
func (h *CatalogHandler) ListBrands(c *gin.Context) {
	brands, err := h.categoryService.ListBrands(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brands)
}
