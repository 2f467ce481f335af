package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name  string           `json:"name" binding:"required,max=255"`
	Cost  *decimal.Decimal `json:"cost" binding:"required"`
	Price *decimal.Decimal `json:"price" binding:"required"`
	Stock int              `json:"stock"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name  *string          `json:"name" binding:"omitempty,max=255"`
	Cost  *decimal.Decimal `json:"cost"`
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock"`
}

// AdjustStockRequest applies a signed stock delta
type AdjustStockRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// LowStockRequest overrides the configured threshold
type LowStockRequest struct {
	Threshold *int `form:"threshold"`
}
