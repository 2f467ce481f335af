package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sangkips/inventario/internal/domain/entity"
	"github.com/sangkips/inventario/pkg/apperror"
	"github.com/sangkips/inventario/pkg/utils"
)

// ProductReader looks up current product state
type ProductReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
}

// SaleRecorder turns lines into a recorded sale
type SaleRecorder interface {
	RecordSale(ctx context.Context, lines []entity.SaleLine) (*entity.Sale, error)
}

// CartItem is a cart line priced at the product's current price
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	// Missing is set when the product was deleted after it was added.
	Missing bool `json:"missing,omitempty"`
}

// CartView is the priced state of a cart
type CartView struct {
	ID        uuid.UUID       `json:"id"`
	Items     []CartItem      `json:"items"`
	Units     int             `json:"units"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CartService keeps open carts in memory
type CartService struct {
	products ProductReader
	sales    SaleRecorder
	log      logrus.FieldLogger
	now      func() time.Time

	mu    sync.Mutex
	carts map[uuid.UUID]*entity.Cart
}

// NewCartService creates a new cart service
func NewCartService(products ProductReader, sales SaleRecorder, log logrus.FieldLogger) *CartService {
	return &CartService{
		products: products,
		sales:    sales,
		log:      log.WithField("service", "cart"),
		now:      time.Now,
		carts:    make(map[uuid.UUID]*entity.Cart),
	}
}

// CreateCart opens an empty cart
func (s *CartService) CreateCart(ctx context.Context) *CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cart := &entity.Cart{ID: utils.NewUUID(), CreatedAt: now, UpdatedAt: now}
	s.carts[cart.ID] = cart
	return s.view(ctx, cart)
}

// GetCart returns the cart priced at current prices
func (s *CartService) GetCart(ctx context.Context, id uuid.UUID) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[id]
	if !ok {
		return nil, apperror.ErrCartNotFound
	}
	return s.view(ctx, cart), nil
}

// AddItem adds quantity units of a product, merging with an existing line.
// The combined quantity must be in stock.
func (s *CartService) AddItem(ctx context.Context, id, productID uuid.UUID, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, apperror.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[id]
	if !ok {
		return nil, apperror.ErrCartNotFound
	}
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	inCart := cart.Quantity(productID)
	if quantity > product.Stock-inCart {
		requested := quantity
		if requested <= math.MaxInt-inCart {
			requested += inCart
		}
		return nil, insufficientStock(*product, requested)
	}

	cart.Add(productID, quantity)
	cart.UpdatedAt = s.now()
	return s.view(ctx, cart), nil
}

// RemoveItem drops a product's line from the cart
func (s *CartService) RemoveItem(ctx context.Context, id, productID uuid.UUID) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[id]
	if !ok {
		return nil, apperror.ErrCartNotFound
	}
	if !cart.Remove(productID) {
		return nil, apperror.NewNotFoundError("Cart item")
	}
	cart.UpdatedAt = s.now()
	return s.view(ctx, cart), nil
}

// Checkout records the cart as a sale. The cart is emptied only when the
// sale succeeds.
func (s *CartService) Checkout(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[id]
	if !ok {
		return nil, apperror.ErrCartNotFound
	}

	lines := make([]entity.SaleLine, len(cart.Lines))
	copy(lines, cart.Lines)
	sale, err := s.sales.RecordSale(ctx, lines)
	if err != nil {
		return nil, err
	}

	cart.Clear()
	cart.UpdatedAt = s.now()
	s.log.WithFields(logrus.Fields{"cart_id": id, "sale_id": sale.ID}).Info("cart checked out")
	return sale, nil
}

// DiscardCart forgets a cart
func (s *CartService) DiscardCart(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[id]; !ok {
		return apperror.ErrCartNotFound
	}
	delete(s.carts, id)
	return nil
}

func (s *CartService) view(ctx context.Context, cart *entity.Cart) *CartView {
	v := &CartView{
		ID:        cart.ID,
		Items:     make([]CartItem, 0, len(cart.Lines)),
		Total:     decimal.Zero,
		UpdatedAt: cart.UpdatedAt,
	}
	for _, line := range cart.Lines {
		item := CartItem{ProductID: line.ProductID, Quantity: line.Quantity, Price: decimal.Zero, Subtotal: decimal.Zero}
		if p, err := s.products.GetProduct(ctx, line.ProductID); err == nil {
			item.Name = p.Name
			item.Price = p.Price
			item.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		} else {
			item.Missing = true
		}
		v.Items = append(v.Items, item)
		v.Units += line.Quantity
		v.Total = v.Total.Add(item.Subtotal)
	}
	return v
}
