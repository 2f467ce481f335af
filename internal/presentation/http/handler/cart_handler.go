package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/inventario/internal/application/service"
	"github.com/sangkips/inventario/internal/presentation/http/dto/request"
	"github.com/sangkips/inventario/internal/presentation/http/dto/response"
)

// CartHandler handles cart HTTP requests
type CartHandler struct {
	carts *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) Create(c *gin.Context) {
	cart := h.carts.CreateCart(c.Request.Context())
	response.Created(c, "Cart created successfully", response.NewCartResponse(cart))
}

func (h *CartHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	cart, err := h.carts.GetCart(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart retrieved successfully", response.NewCartResponse(cart))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.SaleLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.carts.AddItem(c.Request.Context(), id, req.ProductID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item added to cart", response.NewCartResponse(cart))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	productID, err := paramID(c, "product_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	cart, err := h.carts.RemoveItem(c.Request.Context(), id, productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item removed from cart", response.NewCartResponse(cart))
}

func (h *CartHandler) Checkout(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	sale, err := h.carts.Checkout(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Sale recorded successfully", sale)
}

func (h *CartHandler) Discard(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.carts.DiscardCart(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
