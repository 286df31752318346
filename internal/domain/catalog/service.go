// internal/domain/catalog/service.go
package catalog

import (
	"fmt"
	"strings"

	"github.com/your-org/pharmacy-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Category string `form:"category"`
	Search   string `form:"search"`
}

// ProductListResponse represents a paginated product listing
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// CreateProductRequest represents admin product creation data
type CreateProductRequest struct {
	Name                 string `json:"name" binding:"required"`
	Description          string `json:"description"`
	Category             string `json:"category" binding:"required"`
	Price                int64  `json:"price" binding:"required,min=0"`
	Stock                int    `json:"stock" binding:"min=0"`
	Unit                 string `json:"unit" binding:"required"`
	ImageURL             string `json:"image_url"`
	RequiresPrescription bool   `json:"requires_prescription"`
}

// UpdateProductRequest represents admin product update data
type UpdateProductRequest struct {
	Name                 *string `json:"name"`
	Description          *string `json:"description"`
	Category             *string `json:"category"`
	Price                *int64  `json:"price" binding:"omitempty,min=0"`
	Stock                *int    `json:"stock" binding:"omitempty,min=0"`
	Unit                 *string `json:"unit"`
	ImageURL             *string `json:"image_url"`
	RequiresPrescription *bool   `json:"requires_prescription"`
	IsActive             *bool   `json:"is_active"`
}

// ListProducts retrieves active products with filtering and pagination
func (s *Service) ListProducts(req *ProductListRequest) (*ProductListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Product{}).Where("is_active = ?", true)

	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Search != "" {
		pattern := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []Product
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("name ASC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ProductListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetProduct retrieves a single active product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	if err := s.db.Where("id = ? AND is_active = ?", id, true).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// Categories lists the distinct categories of active products
func (s *Service) Categories() ([]string, error) {
	var categories []string
	err := s.db.Model(&Product{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateProduct creates a new product (admin)
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	product := Product{
		Name:                 req.Name,
		Slug:                 slugify(req.Name),
		Description:          req.Description,
		Category:             req.Category,
		Price:                req.Price,
		Stock:                req.Stock,
		Unit:                 req.Unit,
		ImageURL:             req.ImageURL,
		RequiresPrescription: req.RequiresPrescription,
		IsActive:             true,
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &product, nil
}

// UpdateProduct updates an existing product (admin)
func (s *Service) UpdateProduct(id uint, req *UpdateProductRequest) (*Product, error) {
	var product Product
	if err := s.db.First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = slugify(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.RequiresPrescription != nil {
		updates["requires_prescription"] = *req.RequiresPrescription
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return &product, nil
}

// DeleteProduct soft-deletes a product (admin)
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// UpdateStock sets the remaining stock of a product (admin)
func (s *Service) UpdateStock(id uint, stock int) error {
	if stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}

	result := s.db.Model(&Product{}).Where("id = ?", id).Update("stock", stock)
	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// slugify builds a URL-friendly slug from a product name
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
