package response

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/inventario/internal/application/service"
	"github.com/sangkips/inventario/internal/domain/entity"
)

// Money renders a decimal as a bare JSON number
func Money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type CartItemResponse struct {
	ProductID uuid.UUID   `json:"product_id"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
	Subtotal  json.Number `json:"subtotal"`
	Missing   bool        `json:"missing,omitempty"`
}

type CartResponse struct {
	ID        uuid.UUID          `json:"id"`
	Items     []CartItemResponse `json:"items"`
	Units     int                `json:"units"`
	Total     json.Number        `json:"total"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewCartResponse converts a priced cart
func NewCartResponse(v *service.CartView) *CartResponse {
	items := make([]CartItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, CartItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     Money(item.Price),
			Subtotal:  Money(item.Subtotal),
			Missing:   item.Missing,
		})
	}
	return &CartResponse{
		ID:        v.ID,
		Items:     items,
		Units:     v.Units,
		Total:     Money(v.Total),
		UpdatedAt: v.UpdatedAt,
	}
}

type SummaryResponse struct {
	From      *time.Time  `json:"from,omitempty"`
	To        *time.Time  `json:"to,omitempty"`
	SaleCount int         `json:"sale_count"`
	Units     int         `json:"units"`
	Revenue   json.Number `json:"revenue"`
	Cost      json.Number `json:"cost"`
	Profit    json.Number `json:"profit"`
}

// NewSummaryResponse converts a sales summary
func NewSummaryResponse(s *service.SalesSummary) *SummaryResponse {
	return &SummaryResponse{
		From:      s.From,
		To:        s.To,
		SaleCount: s.SaleCount,
		Units:     s.Units,
		Revenue:   Money(s.Revenue),
		Cost:      Money(s.Cost),
		Profit:    Money(s.Profit),
	}
}

type ProductSalesResponse struct {
	ProductID uuid.UUID   `json:"product_id"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	Revenue   json.Number `json:"revenue"`
	Profit    json.Number `json:"profit"`
}

// NewTopProductsResponse converts a best-seller ranking
func NewTopProductsResponse(rows []service.ProductSales) []ProductSalesResponse {
	out := make([]ProductSalesResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProductSalesResponse{
			ProductID: r.ProductID,
			Name:      r.Name,
			Quantity:  r.Quantity,
			Revenue:   Money(r.Revenue),
			Profit:    Money(r.Profit),
		})
	}
	return out
}

type ReceiptLineResponse struct {
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitPrice json.Number `json:"unit_price"`
	Total     json.Number `json:"total"`
}

type ReceiptResponse struct {
	StoreName string                `json:"store_name"`
	ReceiptNo string                `json:"receipt_no"`
	Date      string                `json:"date"`
	Lines     []ReceiptLineResponse `json:"lines"`
	Units     int                   `json:"units"`
	Total     json.Number           `json:"total"`
}

// NewReceiptResponse converts a receipt
func NewReceiptResponse(r *entity.Receipt) *ReceiptResponse {
	lines := make([]ReceiptLineResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, ReceiptLineResponse{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: Money(l.UnitPrice),
			Total:     Money(l.Total),
		})
	}
	return &ReceiptResponse{
		StoreName: r.StoreName,
		ReceiptNo: r.ReceiptNo,
		Date:      r.Date,
		Lines:     lines,
		Units:     r.Units,
		Total:     Money(r.Total),
	}
}
