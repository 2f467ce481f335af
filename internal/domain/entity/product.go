package entity

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/inventario/pkg/apperror"
)

// Product represents a sellable item and its current stock
type Product struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Cost  decimal.Decimal `json:"cost"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// productJSON writes money as bare JSON numbers instead of the quoted
// strings decimal.Decimal produces by default.
type productJSON struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Cost  json.Number `json:"cost"`
	Price json.Number `json:"price"`
	Stock int         `json:"stock"`
}

// MarshalJSON converts Product to JSON with numeric money fields
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(productJSON{
		ID:    p.ID,
		Name:  p.Name,
		Cost:  money(p.Cost),
		Price: money(p.Price),
		Stock: p.Stock,
	})
}

// Margin returns the profit earned on a single unit
func (p Product) Margin() decimal.Decimal {
	return p.Price.Sub(p.Cost)
}

// Validate reports every field that breaks the product invariants
func (p Product) Validate() []apperror.FieldError {
	var errs []apperror.FieldError
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if p.Cost.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "cost", Message: "Cost cannot be negative"})
	}
	if p.Price.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "price", Message: "Price cannot be negative"})
	}
	if p.Stock < 0 {
		errs = append(errs, apperror.FieldError{Field: "stock", Message: "Stock cannot be negative"})
	}
	return errs
}

// ProductPatch names the mutable product fields. Nil fields are left alone.
type ProductPatch struct {
	Name  *string
	Cost  *decimal.Decimal
	Price *decimal.Decimal
	Stock *int
}

// IsEmpty reports whether the patch changes nothing
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Cost == nil && p.Price == nil && p.Stock == nil
}

// Apply returns a copy of product with the patch applied
func (p ProductPatch) Apply(product Product) Product {
	if p.Name != nil {
		product.Name = strings.TrimSpace(*p.Name)
	}
	if p.Cost != nil {
		product.Cost = *p.Cost
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	return product
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
