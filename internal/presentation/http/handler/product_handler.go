package handler

import (
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/inventario/internal/application/service"
	"github.com/sangkips/inventario/internal/domain/entity"
	"github.com/sangkips/inventario/internal/presentation/http/dto/request"
	"github.com/sangkips/inventario/internal/presentation/http/dto/response"
	"github.com/sangkips/inventario/pkg/pagination"
)

const maxImportSize = 10 << 20

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	inventory         *service.InventoryService
	lowStockThreshold int
}

// NewProductHandler creates a new product handler
func NewProductHandler(inventory *service.InventoryService, lowStockThreshold int) *ProductHandler {
	return &ProductHandler{inventory: inventory, lowStockThreshold: lowStockThreshold}
}

// List handles listing products, filtered by name and paged
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	products := h.inventory.ListProducts(c.Request.Context(), filter.Search)
	result := pagination.Paginate(products, &pagination.PaginationParams{Page: filter.Page, PerPage: filter.PerPage})
	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Get handles fetching one product
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.inventory.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved successfully", product)
}

// Create handles adding a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.inventory.AddProduct(c.Request.Context(), &service.CreateProductInput{
		Name:  req.Name,
		Cost:  *req.Cost,
		Price: *req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product created successfully", product)
}

// Update handles a partial product update
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.inventory.UpdateProduct(c.Request.Context(), id, entity.ProductPatch{
		Name:  req.Name,
		Cost:  req.Cost,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product updated successfully", product)
}

// Delete handles removing a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.inventory.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product deleted successfully", nil)
}

// AdjustStock handles a signed stock correction
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.inventory.AdjustStock(c.Request.Context(), id, *req.Delta)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Stock adjusted successfully", product)
}

// LowStock lists products at or below the threshold
func (h *ProductHandler) LowStock(c *gin.Context) {
	var req request.LowStockRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	threshold := h.lowStockThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	response.OK(c, "Low stock products retrieved successfully", h.inventory.LowStock(c.Request.Context(), threshold))
}

// Import handles an xlsx catalog upload in the "file" form field
func (h *ProductHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "A file field is required")
		return
	}
	if header.Size > maxImportSize {
		response.BadRequest(c, "File is too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	rows, rejected, err := service.ParseCatalog(file)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.inventory.ImportProducts(c.Request.Context(), rows)
	if err != nil {
		response.Error(c, err)
		return
	}
	result.Rejected = append(append([]service.ImportRowError{}, rejected...), result.Rejected...)
	sort.Slice(result.Rejected, func(i, j int) bool { return result.Rejected[i].Row < result.Rejected[j].Row })
	response.OK(c, "Products imported", result)
}
