package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phoneshop/backend/internal/domain/catalog"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/shared/valueobject"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *mockProductRepo) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *mockProductRepo) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *mockProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockProductRepo) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockProductRepo) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockProductRepo) FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, categoryID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockProductRepo) FindFeatured(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockProductRepo) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepo) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

func activeProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("PHN-001", "Galaxy S24",
		valueobject.NewMoneyTRY(decimal.NewFromInt(30000)), 10)
	require.NoError(t, err)
	return p
}

func TestProductServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product", func(t *testing.T) {
		repo := new(mockProductRepo)
		svc := NewProductService(repo, zap.NewNop())

		repo.On("ExistsBySKU", mock.Anything, "PHN-001").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := svc.Create(ctx, CreateProductRequest{
			SKU:      "PHN-001",
			Name:     "Galaxy S24",
			Price:    decimal.NewFromInt(30000),
			Quantity: 10,
			Images:   []string{"https://cdn.example.com/s24.jpg"},
			Featured: true,
		})
		require.NoError(t, err)

		assert.Equal(t, "PHN-001", resp.SKU)
		assert.Equal(t, "galaxy-s24", resp.Slug)
		assert.Equal(t, "30000.00", resp.Price)
		assert.True(t, resp.Featured)
		assert.True(t, resp.InStock)
	})

	t.Run("rejects duplicate sku", func(t *testing.T) {
		repo := new(mockProductRepo)
		svc := NewProductService(repo, zap.NewNop())

		repo.On("ExistsBySKU", mock.Anything, "PHN-001").Return(true, nil)

		_, err := svc.Create(ctx, CreateProductRequest{
			SKU: "PHN-001", Name: "Galaxy S24", Price: decimal.NewFromInt(30000),
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_SKU", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductServiceUpdate(t *testing.T) {
	ctx := context.Background()
	repo := new(mockProductRepo)
	svc := NewProductService(repo, zap.NewNop())

	product := activeProduct(t)
	newPrice := decimal.NewFromInt(28000)
	newQty := 5

	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Save", mock.Anything, product).Return(nil)

	resp, err := svc.Update(ctx, product.ID, UpdateProductRequest{
		Name:     "Galaxy S24 FE",
		Price:    &newPrice,
		Quantity: &newQty,
	})
	require.NoError(t, err)

	assert.Equal(t, "Galaxy S24 FE", resp.Name)
	assert.Equal(t, "galaxy-s24-fe", resp.Slug)
	assert.Equal(t, "28000.00", resp.Price)
	assert.Equal(t, 5, resp.Quantity)
}

func TestProductServiceStorefrontReads(t *testing.T) {
	ctx := context.Background()

	t.Run("slug lookup hides inactive products", func(t *testing.T) {
		repo := new(mockProductRepo)
		svc := NewProductService(repo, zap.NewNop())

		product := activeProduct(t)
		require.NoError(t, product.Deactivate())
		repo.On("FindBySlug", mock.Anything, product.Slug).Return(product, nil)

		_, err := svc.GetBySlug(ctx, product.Slug)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("list paginates", func(t *testing.T) {
		repo := new(mockProductRepo)
		svc := NewProductService(repo, zap.NewNop())

		product := activeProduct(t)
		repo.On("FindActive", mock.Anything, mock.Anything).Return([]catalog.Product{*product}, nil)
		repo.On("Count", mock.Anything, mock.Anything).Return(int64(41), nil)

		page, err := svc.List(ctx, ProductListFilter{Page: 2, PageSize: 20})
		require.NoError(t, err)

		assert.Equal(t, int64(41), page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Items, 1)
	})

	t.Run("featured clamps the limit", func(t *testing.T) {
		repo := new(mockProductRepo)
		svc := NewProductService(repo, zap.NewNop())

		repo.On("FindFeatured", mock.Anything, 8).Return([]catalog.Product{}, nil)

		_, err := svc.Featured(ctx, 0)
		require.NoError(t, err)
		repo.AssertCalled(t, "FindFeatured", mock.Anything, 8)
	})
}
