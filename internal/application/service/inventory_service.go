package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sangkips/inventario/internal/domain/entity"
	"github.com/sangkips/inventario/internal/domain/repository"
	"github.com/sangkips/inventario/pkg/apperror"
	"github.com/sangkips/inventario/pkg/utils"
)

// InventoryService owns the product collection. Every mutation writes the
// whole collection through Storage and only takes effect in memory once the
// write succeeds.
type InventoryService struct {
	storage repository.Storage
	log     logrus.FieldLogger
	newID   func() uuid.UUID

	mu       sync.Mutex
	products []entity.Product
}

// InventoryOption customises an InventoryService
type InventoryOption func(*InventoryService)

// WithProductIDs replaces the product id generator
func WithProductIDs(gen func() uuid.UUID) InventoryOption {
	return func(s *InventoryService) { s.newID = gen }
}

// NewInventoryService loads the products once. A load failure is logged and
// the service starts with an empty collection.
func NewInventoryService(ctx context.Context, storage repository.Storage, log logrus.FieldLogger, opts ...InventoryOption) *InventoryService {
	s := &InventoryService{
		storage: storage,
		log:     log.WithField("service", "inventory"),
		newID:   utils.NewUUID,
	}
	for _, opt := range opts {
		opt(s)
	}

	products, err := storage.LoadProducts(ctx)
	if err != nil {
		s.log.WithError(err).Error("failed to load products, starting empty")
		products = nil
	}
	s.products = products
	s.log.WithField("count", len(s.products)).Info("products loaded")
	return s
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name  string
	Cost  decimal.Decimal
	Price decimal.Decimal
	Stock int
}

func (in CreateProductInput) product(id uuid.UUID) entity.Product {
	return entity.Product{
		ID:    id,
		Name:  strings.TrimSpace(in.Name),
		Cost:  in.Cost,
		Price: in.Price,
		Stock: in.Stock,
	}
}

// ListProducts returns products whose name contains search, sorted by name
func (s *InventoryService) ListProducts(ctx context.Context, search string) []entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]entity.Product, 0, len(s.products))
	for _, p := range s.products {
		if search == "" || strings.Contains(strings.ToLower(p.Name), search) {
			out = append(out, p)
		}
	}
	sortByName(out)
	return out
}

// GetProduct returns a copy of the product with id
func (s *InventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, apperror.ErrProductNotFound
	}
	p := s.products[i]
	return &p, nil
}

// AddProduct creates a product under a freshly generated id
func (s *InventoryService) AddProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	product := input.product(id)
	if errs := product.Validate(); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	if s.indexOf(id) >= 0 {
		s.log.WithField("product_id", id).Error("generated product id already exists")
		return nil, apperror.NewConflictError("Product id already exists")
	}

	next := s.snapshot()
	next = append(next, product)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"product_id": id, "name": product.Name}).Info("product added")
	return &product, nil
}

// UpdateProduct overwrites the fields set in patch
func (s *InventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, patch entity.ProductPatch) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, apperror.ErrProductNotFound
	}
	if patch.IsEmpty() {
		p := s.products[i]
		return &p, nil
	}

	updated := patch.Apply(s.products[i])
	if errs := updated.Validate(); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	next := s.snapshot()
	next[i] = updated
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	s.log.WithField("product_id", id).Info("product updated")
	return &updated, nil
}

// DeleteProduct removes the product. Recorded sales keep their snapshots.
func (s *InventoryService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return apperror.ErrProductNotFound
	}

	next := make([]entity.Product, 0, len(s.products)-1)
	next = append(next, s.products[:i]...)
	next = append(next, s.products[i+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

// AdjustStock applies a signed delta to the product's stock. The result may
// not go below zero.
func (s *InventoryService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, apperror.ErrProductNotFound
	}

	p := s.products[i]
	if delta > 0 && p.Stock > math.MaxInt-delta {
		return nil, apperror.ErrInvalidQuantity.WithDetail("delta", fmt.Sprintf("stock %d cannot grow by %d", p.Stock, delta))
	}
	if p.Stock+delta < 0 {
		return nil, insufficientStock(p, -delta)
	}
	p.Stock += delta

	next := s.snapshot()
	next[i] = p
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"product_id": id, "delta": delta, "stock": p.Stock}).Info("stock adjusted")
	return &p, nil
}

// DecrementStock removes quantity units from stock
func (s *InventoryService) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (*entity.Product, error) {
	if quantity <= 0 {
		return nil, apperror.ErrInvalidQuantity
	}
	return s.AdjustStock(ctx, id, -quantity)
}

// ReserveStock decrements stock for every line or for none. All lines are
// checked against a working copy first, so repeated product lines are
// judged on their combined quantity. The returned products are the state
// before the decrement, one per line, in line order.
func (s *InventoryService) ReserveStock(ctx context.Context, lines []entity.SaleLine) ([]entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := make(map[uuid.UUID]int, len(lines))
	before := make([]entity.Product, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperror.ErrInvalidQuantity.WithDetail(line.ProductID.String(), fmt.Sprintf("quantity %d", line.Quantity))
		}
		i := s.indexOf(line.ProductID)
		if i < 0 {
			return nil, apperror.ErrProductNotFound.WithDetail("product_id", line.ProductID.String())
		}
		p := s.products[i]
		left, seen := remaining[p.ID]
		if !seen {
			left = p.Stock
		}
		if left < line.Quantity {
			return nil, insufficientStock(p, p.Stock-left+line.Quantity)
		}
		remaining[p.ID] = left - line.Quantity
		before = append(before, p)
	}

	next := s.snapshot()
	for i := range next {
		if left, ok := remaining[next[i].ID]; ok {
			next[i].Stock = left
		}
	}
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return before, nil
}

// RestoreStock adds the line quantities back. Products deleted since the
// reservation are skipped.
func (s *InventoryService) RestoreStock(ctx context.Context, lines []entity.SaleLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot()
	for _, line := range lines {
		i := s.indexOf(line.ProductID)
		if i < 0 {
			s.log.WithField("product_id", line.ProductID).Warn("cannot restore stock of deleted product")
			continue
		}
		next[i].Stock += line.Quantity
	}
	return s.commit(ctx, next)
}

// LowStock returns products with stock at or below threshold, lowest first
func (s *InventoryService) LowStock(ctx context.Context, threshold int) []entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.Product
	for _, p := range s.products {
		if p.Stock <= threshold {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	if out == nil {
		out = []entity.Product{}
	}
	return out
}

// ImportRow is one product to import. Row identifies it in the source
// document.
type ImportRow struct {
	Row   int
	Input CreateProductInput
}

// ImportRowError lists the problems found on one imported row
type ImportRowError struct {
	Row    int                   `json:"row"`
	Errors []apperror.FieldError `json:"errors"`
}

// ImportResult reports an import
type ImportResult struct {
	Imported []entity.Product `json:"imported"`
	Rejected []ImportRowError `json:"rejected"`
}

// ImportProducts adds every valid row with a single write. Invalid rows are
// reported and skipped.
func (s *InventoryService) ImportProducts(ctx context.Context, rows []ImportRow) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &ImportResult{Imported: []entity.Product{}, Rejected: []ImportRowError{}}
	next := s.snapshot()
	taken := make(map[uuid.UUID]bool, len(next)+len(rows))
	for _, p := range next {
		taken[p.ID] = true
	}

	for _, row := range rows {
		id := s.newID()
		product := row.Input.product(id)
		if errs := product.Validate(); len(errs) > 0 {
			result.Rejected = append(result.Rejected, ImportRowError{Row: row.Row, Errors: errs})
			continue
		}
		if taken[id] {
			s.log.WithField("product_id", id).Error("generated product id already exists")
			result.Rejected = append(result.Rejected, ImportRowError{
				Row:    row.Row,
				Errors: []apperror.FieldError{{Field: "id", Message: "Product id already exists"}},
			})
			continue
		}
		taken[id] = true
		next = append(next, product)
		result.Imported = append(result.Imported, product)
	}

	if len(result.Imported) == 0 {
		return result, nil
	}
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"imported": len(result.Imported),
		"rejected": len(result.Rejected),
	}).Info("products imported")
	return result, nil
}

// commit persists next and adopts it as the in-memory collection. Callers
// hold s.mu.
func (s *InventoryService) commit(ctx context.Context, next []entity.Product) error {
	if err := s.storage.SaveProducts(ctx, next); err != nil {
		s.log.WithError(err).Error("failed to save products")
		return storageError(err)
	}
	s.products = next
	return nil
}

func (s *InventoryService) snapshot() []entity.Product {
	out := make([]entity.Product, len(s.products), len(s.products)+1)
	copy(out, s.products)
	return out
}

func (s *InventoryService) indexOf(id uuid.UUID) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func insufficientStock(p entity.Product, requested int) error {
	return apperror.ErrInsufficientStock.WithDetail(p.ID.String(),
		fmt.Sprintf("%s: requested %d, available %d", p.Name, requested, p.Stock))
}

func storageError(err error) error {
	return apperror.ErrStorage.WithDetail("storage", err.Error())
}

func sortByName(products []entity.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
	})
}
