package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups catalog products
type Category struct {
	CategoryID string `json:"id" gorm:"primaryKey;column:id"`
	Name       string `json:"name" gorm:"not null;column:name"`
}

func (Category) TableName() string {
	return "categories"
}

// Product is a catalog entry as the scan pipeline sees it.
// Stock values here are authoritative; values embedded in a barcode are not.
type Product struct {
	ProductID  string          `json:"id" gorm:"primaryKey;column:id"`
	SKU        string          `json:"sku" gorm:"not null;uniqueIndex;column:sku"`
	Name       string          `json:"name" gorm:"not null;column:name"`
	CategoryID *string         `json:"categoryId,omitempty" gorm:"column:category_id"`
	Category   *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:CategoryID"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(12,2);column:price"`
	Quantity   int64           `json:"quantity" gorm:"column:quantity;default:0"`
	ImageURL   *string         `json:"imageUrl,omitempty" gorm:"column:image_url"`
	BarcodeURL *string         `json:"barcodeUrl,omitempty" gorm:"column:barcode_url"`
	CreatedAt  time.Time       `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" gorm:"column:updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// CategoryName returns the category label or an empty string
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// DisplayName falls back to the SKU when a product has no name
func (p Product) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.SKU
}
