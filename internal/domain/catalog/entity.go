// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a pharmacy product
type Product struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Name                 string         `gorm:"not null;size:255" json:"name"`
	Slug                 string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description          string         `gorm:"type:text" json:"description"`
	Category             string         `gorm:"size:100;index" json:"category"`
	Price                int64          `gorm:"not null" json:"price"` // Whole rupees
	Stock                int            `gorm:"not null;default:0" json:"stock"`
	Unit                 string         `gorm:"size:50" json:"unit"` // tablets, ml, sachets, ...
	ImageURL             string         `gorm:"size:500" json:"image_url"`
	RequiresPrescription bool           `gorm:"default:false" json:"requires_prescription"`
	IsActive             bool           `gorm:"default:true" json:"is_active"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// InStock reports whether any quantity can still be purchased
func (p *Product) InStock() bool {
	return p.Stock > 0
}
