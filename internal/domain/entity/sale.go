package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// legacyTimestampLayouts are accepted when reading sales written without a
// zone offset (isoformat() style). They are interpreted in local time.
var legacyTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// SaleLine is one requested (product, quantity) pair
type SaleLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// SaleItem is a recorded line with the product values captured at sale time
type SaleItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewSaleItem snapshots product for quantity units
func NewSaleItem(product Product, quantity int) SaleItem {
	return SaleItem{
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  quantity,
		Price:     product.Price,
		Cost:      product.Cost,
		Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// CostSubtotal returns cost × quantity
func (i SaleItem) CostSubtotal() decimal.Decimal {
	return i.Cost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type saleItemJSON struct {
	ProductID uuid.UUID   `json:"product_id"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
	Cost      json.Number `json:"cost"`
	Subtotal  json.Number `json:"subtotal"`
}

// MarshalJSON converts SaleItem to JSON with numeric money fields
func (i SaleItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(saleItemJSON{
		ProductID: i.ProductID,
		Name:      i.Name,
		Quantity:  i.Quantity,
		Price:     money(i.Price),
		Cost:      money(i.Cost),
		Subtotal:  money(i.Subtotal),
	})
}

// Sale is an immutable record of a completed sale
type Sale struct {
	ID           uuid.UUID       `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	Items        []SaleItem      `json:"items"`
}

// NewSale builds a sale whose totals are the exact sums of items
func NewSale(id uuid.UUID, at time.Time, items []SaleItem) Sale {
	revenue := decimal.Zero
	cost := decimal.Zero
	for _, item := range items {
		revenue = revenue.Add(item.Subtotal)
		cost = cost.Add(item.CostSubtotal())
	}
	return Sale{
		ID:           id,
		Timestamp:    at,
		TotalRevenue: revenue,
		TotalCost:    cost,
		TotalProfit:  revenue.Sub(cost),
		Items:        items,
	}
}

// UnitCount returns the number of units sold across all items
func (s Sale) UnitCount() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

type saleJSON struct {
	ID           uuid.UUID   `json:"id"`
	Timestamp    string      `json:"timestamp"`
	TotalRevenue json.Number `json:"total_revenue"`
	TotalCost    json.Number `json:"total_cost"`
	TotalProfit  json.Number `json:"total_profit"`
	Items        []SaleItem  `json:"items"`
}

// MarshalJSON writes the timestamp as RFC 3339 and money as numbers
func (s Sale) MarshalJSON() ([]byte, error) {
	items := s.Items
	if items == nil {
		items = []SaleItem{}
	}
	return json.Marshal(saleJSON{
		ID:           s.ID,
		Timestamp:    s.Timestamp.Format(time.RFC3339Nano),
		TotalRevenue: money(s.TotalRevenue),
		TotalCost:    money(s.TotalCost),
		TotalProfit:  money(s.TotalProfit),
		Items:        items,
	})
}

// UnmarshalJSON accepts RFC 3339 timestamps as well as zone-less ones
func (s *Sale) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           uuid.UUID       `json:"id"`
		Timestamp    string          `json:"timestamp"`
		TotalRevenue decimal.Decimal `json:"total_revenue"`
		TotalCost    decimal.Decimal `json:"total_cost"`
		TotalProfit  decimal.Decimal `json:"total_profit"`
		Items        []SaleItem      `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ts, err := ParseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}

	*s = Sale{
		ID:           raw.ID,
		Timestamp:    ts,
		TotalRevenue: raw.TotalRevenue,
		TotalCost:    raw.TotalCost,
		TotalProfit:  raw.TotalProfit,
		Items:        raw.Items,
	}
	return nil
}

// ParseTimestamp parses an ISO-8601 timestamp with or without a zone offset
func ParseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	for _, layout := range legacyTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid timestamp %q", value)
}
