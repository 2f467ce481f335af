package entity

import (
	"github.com/shopspring/decimal"
)

// ReceiptLine is one printed item
type ReceiptLine struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// Receipt is a printable view of a sale. It is composed at print time and
// never stored.
type Receipt struct {
	StoreName string          `json:"store_name"`
	ReceiptNo string          `json:"receipt_no"`
	Date      string          `json:"date"`
	Lines     []ReceiptLine   `json:"lines"`
	Units     int             `json:"units"`
	Total     decimal.Decimal `json:"total"`
}

// NewReceipt lays out sale for printing
func NewReceipt(storeName, receiptNo string, sale Sale) Receipt {
	lines := make([]ReceiptLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		lines = append(lines, ReceiptLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Total:     item.Subtotal,
		})
	}
	return Receipt{
		StoreName: storeName,
		ReceiptNo: receiptNo,
		Date:      sale.Timestamp.Format("2006-01-02 15:04"),
		Lines:     lines,
		Units:     sale.UnitCount(),
		Total:     sale.TotalRevenue,
	}
}
