package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/inventario/internal/application/service"
	"github.com/sangkips/inventario/internal/domain/entity"
	"github.com/sangkips/inventario/internal/presentation/http/dto/request"
	"github.com/sangkips/inventario/internal/presentation/http/dto/response"
	"github.com/sangkips/inventario/pkg/pagination"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	sales *service.SalesService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(sales *service.SalesService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// Create records a sale
func (h *SaleHandler) Create(c *gin.Context) {
	var req request.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	sale, err := h.sales.RecordSale(c.Request.Context(), toSaleLines(req.Items))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Sale recorded successfully", sale)
}

// List pages the sales history, newest first
func (h *SaleHandler) List(c *gin.Context) {
	var filter request.SaleFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	r, err := parseDateRange(filter.StartDate, filter.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	var sales []entity.Sale
	for _, sale := range h.sales.ListSales(c.Request.Context()) {
		if r.Contains(sale.Timestamp) {
			sales = append(sales, sale)
		}
	}
	result := pagination.Paginate(sales, &pagination.PaginationParams{Page: filter.Page, PerPage: filter.PerPage})
	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", result)
}

// Get returns one sale
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	sale, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved successfully", sale)
}
