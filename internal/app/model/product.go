package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type ProductStatus string

const (
	StatusAvailable    ProductStatus = "Available"
	StatusOutOfStock   ProductStatus = "OutOfStock"
	StatusDiscontinued ProductStatus = "Discontinued"
)

// Valid reports whether s is one of the known statuses
func (s ProductStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusOutOfStock, StatusDiscontinued:
		return true
	}
	return false
}

type Product struct {
	ProductID     uint          `gorm:"column:product_id;primarykey" json:"productId"`
	ProductName   string        `gorm:"size:150;not null" json:"productName"`
	NameKey       string        `gorm:"size:150;not null;uniqueIndex:idx_products_active_merge_key,where:is_deleted = false" json:"-"`
	Description   *string       `gorm:"type:text" json:"description"`
	Price         float64       `gorm:"type:decimal(18,2);not null;uniqueIndex:idx_products_active_merge_key,where:is_deleted = false" json:"price"`
	Quantity      int           `gorm:"not null" json:"quantity"`
	ProductStatus ProductStatus `gorm:"type:varchar(20);not null" json:"productStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	IsDeleted     bool          `gorm:"not null;index" json:"isDeleted"`
}

func (Product) TableName() string {
	return "products"
}

// BeforeSave keeps the merge key in step with the display name
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.NameKey = NormalizeName(p.ProductName)
	return nil
}

// NormalizeName is the case and whitespace insensitive form used to match products
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DefaultStatus is the status assigned to a new product when none was supplied
func DefaultStatus(quantity int) ProductStatus {
	if quantity > 0 {
		return StatusAvailable
	}
	return StatusOutOfStock
}
