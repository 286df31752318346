// internal/domain/catalog/service_test.go
package catalog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pharmacy-backend/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Product{}))

	return NewService(db, &config.Config{}), db
}

func createProduct(t *testing.T, s *Service, name, category string, price int64, stock int) *Product {
	t.Helper()
	product, err := s.CreateProduct(&CreateProductRequest{
		Name:     name,
		Category: category,
		Price:    price,
		Stock:    stock,
		Unit:     "strip",
	})
	require.NoError(t, err)
	return product
}

func TestCreateProductGeneratesSlug(t *testing.T) {
	service, _ := testService(t)

	product := createProduct(t, service, "Paracetamol 500mg (Panadol)", "Pain Relief", 25, 100)
	assert.Equal(t, "paracetamol-500mg-panadol", product.Slug)
	assert.True(t, product.IsActive)
}

func TestListProductsFiltersByCategory(t *testing.T) {
	service, _ := testService(t)
	createProduct(t, service, "Paracetamol 500mg", "Pain Relief", 25, 100)
	createProduct(t, service, "Ibuprofen 400mg", "Pain Relief", 45, 50)
	createProduct(t, service, "Cetirizine 10mg", "Allergy", 35, 80)

	response, err := service.ListProducts(&ProductListRequest{Category: "Pain Relief"})
	require.NoError(t, err)
	assert.Len(t, response.Products, 2)
	assert.Equal(t, int64(2), response.Pagination.Total)
}

func TestListProductsSearch(t *testing.T) {
	service, _ := testService(t)
	createProduct(t, service, "Paracetamol 500mg", "Pain Relief", 25, 100)
	createProduct(t, service, "Cetirizine 10mg", "Allergy", 35, 80)

	response, err := service.ListProducts(&ProductListRequest{Search: "paraceta"})
	require.NoError(t, err)
	require.Len(t, response.Products, 1)
	assert.Equal(t, "Paracetamol 500mg", response.Products[0].Name)
}

func TestListProductsExcludesInactive(t *testing.T) {
	service, _ := testService(t)
	keep := createProduct(t, service, "Paracetamol 500mg", "Pain Relief", 25, 100)
	hide := createProduct(t, service, "Ibuprofen 400mg", "Pain Relief", 45, 50)

	inactive := false
	_, err := service.UpdateProduct(hide.ID, &UpdateProductRequest{IsActive: &inactive})
	require.NoError(t, err)

	response, err := service.ListProducts(&ProductListRequest{})
	require.NoError(t, err)
	require.Len(t, response.Products, 1)
	assert.Equal(t, keep.ID, response.Products[0].ID)

	_, err = service.GetProduct(hide.ID)
	assert.Error(t, err)
}

func TestListProductsPagination(t *testing.T) {
	service, _ := testService(t)
	for i := 0; i < 5; i++ {
		createProduct(t, service, fmt.Sprintf("Product %d", i), "Misc", 10, 10)
	}

	response, err := service.ListProducts(&ProductListRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, response.Products, 2)
	assert.Equal(t, 3, response.Pagination.TotalPages)
}

func TestCategories(t *testing.T) {
	service, _ := testService(t)
	createProduct(t, service, "Paracetamol 500mg", "Pain Relief", 25, 100)
	createProduct(t, service, "Ibuprofen 400mg", "Pain Relief", 45, 50)
	createProduct(t, service, "Cetirizine 10mg", "Allergy", 35, 80)

	categories, err := service.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Allergy", "Pain Relief"}, categories)
}

func TestUpdateProductPartialFields(t *testing.T) {
	service, _ := testService(t)
	product := createProduct(t, service, "Vitamin C", "Vitamins", 180, 60)

	price := int64(200)
	updated, err := service.UpdateProduct(product.ID, &UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(200), updated.Price)
	assert.Equal(t, "Vitamin C", updated.Name)
	assert.Equal(t, 60, updated.Stock)
}

func TestDeleteProductSoftDeletes(t *testing.T) {
	service, db := testService(t)
	product := createProduct(t, service, "Vitamin C", "Vitamins", 180, 60)

	require.NoError(t, service.DeleteProduct(product.ID))
	assert.Error(t, service.DeleteProduct(product.ID))

	_, err := service.GetProduct(product.ID)
	assert.Error(t, err)

	// Row survives under the soft-delete marker
	var count int64
	require.NoError(t, db.Unscoped().Model(&Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateStock(t *testing.T) {
	service, _ := testService(t)
	product := createProduct(t, service, "ORS Sachets", "First Aid", 60, 200)

	require.NoError(t, service.UpdateStock(product.ID, 5))
	reloaded, err := service.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Stock)

	assert.Error(t, service.UpdateStock(product.ID, -1))
	assert.Error(t, service.UpdateStock(9999, 5))
}
