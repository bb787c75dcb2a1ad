package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, categoryID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveBatch(ctx context.Context, products []*catalog.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) HasProducts(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, categoryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func newTestProduct(t *testing.T) *catalog.Product {
	t.Helper()
	price, err := valueobject.NewMoney(decimal.NewFromFloat(29.99), valueobject.USD)
	require.NoError(t, err)
	product, err := catalog.NewProduct("Wireless Mouse", "wireless-mouse", price)
	require.NoError(t, err)
	require.NoError(t, product.SetStock(10))
	return product
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product with normalized slug", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		service := NewProductService(productRepo, categoryRepo)

		productRepo.On("ExistsBySlug", ctx, "wireless-mouse").Return(false, nil)
		productRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		stock := 25
		resp, err := service.Create(ctx, CreateProductRequest{
			Name:  "Wireless Mouse",
			Slug:  "  Wireless-Mouse  ",
			Price: decimal.NewFromFloat(29.99),
			Stock: &stock,
		})

		require.NoError(t, err)
		assert.Equal(t, "wireless-mouse", resp.Slug)
		assert.Equal(t, 25, resp.Stock)
		assert.Equal(t, "USD", resp.Currency)
		assert.Equal(t, "active", resp.Status)
		productRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate slug", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		service := NewProductService(productRepo, categoryRepo)

		productRepo.On("ExistsBySlug", ctx, "wireless-mouse").Return(true, nil)

		_, err := service.Create(ctx, CreateProductRequest{
			Name:  "Wireless Mouse",
			Slug:  "wireless-mouse",
			Price: decimal.NewFromFloat(29.99),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		productRepo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		service := NewProductService(productRepo, categoryRepo)

		categoryID := uuid.New()
		productRepo.On("ExistsBySlug", ctx, "wireless-mouse").Return(false, nil)
		categoryRepo.On("FindByID", ctx, categoryID).Return(nil, shared.ErrNotFound)

		_, err := service.Create(ctx, CreateProductRequest{
			Name:       "Wireless Mouse",
			Slug:       "wireless-mouse",
			Price:      decimal.NewFromFloat(29.99),
			CategoryID: &categoryID,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CATEGORY", domainErr.Code)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		service := NewProductService(productRepo, categoryRepo)

		productRepo.On("ExistsBySlug", ctx, "wireless-mouse").Return(false, nil)

		_, err := service.Create(ctx, CreateProductRequest{
			Name:  "Wireless Mouse",
			Slug:  "wireless-mouse",
			Price: decimal.NewFromFloat(-1),
		})
		assert.Error(t, err)
	})
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("storefront listing pins status to active", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		service := NewProductService(productRepo, new(MockCategoryRepository))

		product := newTestProduct(t)
		productRepo.On("FindActive", ctx, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["status"] == "active"
		})).Return([]catalog.Product{*product}, nil)
		productRepo.On("Count", ctx, mock.Anything).Return(int64(1), nil)

		// A status filter from the client must not leak through
		products, total, err := service.List(ctx, ProductListFilter{Status: "inactive"}, true)

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.Equal(t, "wireless-mouse", products[0].Slug)
		productRepo.AssertExpectations(t)
	})

	t.Run("back office sees every status", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		service := NewProductService(productRepo, new(MockCategoryRepository))

		productRepo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["status"] == "inactive"
		})).Return([]catalog.Product{}, nil)
		productRepo.On("Count", ctx, mock.Anything).Return(int64(0), nil)

		_, _, err := service.List(ctx, ProductListFilter{Status: "inactive"}, false)

		require.NoError(t, err)
		productRepo.AssertExpectations(t)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates price and stock", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		service := NewProductService(productRepo, new(MockCategoryRepository))

		product := newTestProduct(t)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("Save", ctx, product).Return(nil)

		price := decimal.NewFromFloat(24.99)
		stock := 5
		resp, err := service.Update(ctx, product.ID, UpdateProductRequest{
			Price: &price,
			Stock: &stock,
		})

		require.NoError(t, err)
		assert.True(t, resp.Price.Equal(price))
		assert.Equal(t, 5, resp.Stock)
		productRepo.AssertExpectations(t)
	})

	t.Run("deactivates product", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		service := NewProductService(productRepo, new(MockCategoryRepository))

		product := newTestProduct(t)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("Save", ctx, product).Return(nil)

		status := "inactive"
		resp, err := service.Update(ctx, product.ID, UpdateProductRequest{Status: &status})

		require.NoError(t, err)
		assert.Equal(t, "inactive", resp.Status)
	})

	t.Run("missing product propagates not found", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		service := NewProductService(productRepo, new(MockCategoryRepository))

		id := uuid.New()
		productRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := service.Update(ctx, id, UpdateProductRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes existing product", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		service := NewProductService(productRepo, new(MockCategoryRepository))

		product := newTestProduct(t)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("Delete", ctx, product.ID).Return(nil)

		assert.NoError(t, service.Delete(ctx, product.ID))
		productRepo.AssertExpectations(t)
	})

	t.Run("missing product propagates not found", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		service := NewProductService(productRepo, new(MockCategoryRepository))

		id := uuid.New()
		productRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, service.Delete(ctx, id), shared.ErrNotFound)
		productRepo.AssertNotCalled(t, "Delete")
	})
}
