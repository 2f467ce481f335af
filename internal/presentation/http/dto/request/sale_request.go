package request

import "github.com/google/uuid"

// SaleLineRequest is one line of a sale or cart
type SaleLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// CreateSaleRequest represents a sale. Empty item lists and non-positive
// quantities are rejected by the sales service, not by binding.
type CreateSaleRequest struct {
	Items []SaleLineRequest `json:"items" binding:"dive"`
}

// SaleFilterRequest pages the sales history
type SaleFilterRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// ReportFilterRequest bounds a report by date (YYYY-MM-DD, end inclusive)
type ReportFilterRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
