package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/inventario/internal/domain/entity"
)

// ProductModel is the products table row
type ProductModel struct {
	ID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name  string          `gorm:"size:255;not null"`
	Cost  decimal.Decimal `gorm:"type:numeric;not null"`
	Price decimal.Decimal `gorm:"type:numeric;not null"`
	Stock int             `gorm:"not null"`
	// Position keeps the collection order across a load/save cycle.
	Position int `gorm:"not null;index"`
}

func (ProductModel) TableName() string {
	return "products"
}

// SaleModel is the sales table row
type SaleModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Timestamp    time.Time       `gorm:"not null;index"`
	TotalRevenue decimal.Decimal `gorm:"type:numeric;not null"`
	TotalCost    decimal.Decimal `gorm:"type:numeric;not null"`
	TotalProfit  decimal.Decimal `gorm:"type:numeric;not null"`
	Position     int             `gorm:"not null;index"`
	Items        []SaleItemModel `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is one line of a sale. ProductID is not a foreign key:
// products may be deleted while their sales remain.
type SaleItemModel struct {
	ID        uint            `gorm:"primaryKey"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Line      int             `gorm:"not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"size:255;not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:numeric;not null"`
	Cost      decimal.Decimal `gorm:"type:numeric;not null"`
	Subtotal  decimal.Decimal `gorm:"type:numeric;not null"`
}

func (SaleItemModel) TableName() string {
	return "sale_items"
}

// Models lists every table for auto-migration
func Models() []interface{} {
	return []interface{}{&ProductModel{}, &SaleModel{}, &SaleItemModel{}}
}

func toProductModel(p entity.Product, position int) ProductModel {
	return ProductModel{
		ID:       p.ID,
		Name:     p.Name,
		Cost:     p.Cost,
		Price:    p.Price,
		Stock:    p.Stock,
		Position: position,
	}
}

func (m ProductModel) toEntity() entity.Product {
	return entity.Product{
		ID:    m.ID,
		Name:  m.Name,
		Cost:  m.Cost,
		Price: m.Price,
		Stock: m.Stock,
	}
}

func toSaleModel(s entity.Sale, position int) SaleModel {
	items := make([]SaleItemModel, 0, len(s.Items))
	for i, item := range s.Items {
		items = append(items, SaleItemModel{
			SaleID:    s.ID,
			Line:      i,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Cost:      item.Cost,
			Subtotal:  item.Subtotal,
		})
	}
	return SaleModel{
		ID:           s.ID,
		Timestamp:    s.Timestamp,
		TotalRevenue: s.TotalRevenue,
		TotalCost:    s.TotalCost,
		TotalProfit:  s.TotalProfit,
		Position:     position,
		Items:        items,
	}
}

func (m SaleModel) toEntity() entity.Sale {
	items := make([]entity.SaleItem, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, entity.SaleItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Cost:      item.Cost,
			Subtotal:  item.Subtotal,
		})
	}
	return entity.Sale{
		ID:           m.ID,
		Timestamp:    m.Timestamp,
		TotalRevenue: m.TotalRevenue,
		TotalCost:    m.TotalCost,
		TotalProfit:  m.TotalProfit,
		Items:        items,
	}
}
