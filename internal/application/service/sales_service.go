package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sangkips/inventario/internal/domain/entity"
	"github.com/sangkips/inventario/internal/domain/repository"
	"github.com/sangkips/inventario/pkg/apperror"
	"github.com/sangkips/inventario/pkg/utils"
)

// StockKeeper reserves and restores stock for a sale
type StockKeeper interface {
	ReserveStock(ctx context.Context, lines []entity.SaleLine) ([]entity.Product, error)
	RestoreStock(ctx context.Context, lines []entity.SaleLine) error
}

// SalesService records sales and serves the sales history
type SalesService struct {
	stock   StockKeeper
	storage repository.Storage
	log     logrus.FieldLogger
	newID   func() uuid.UUID
	now     func() time.Time

	mu    sync.Mutex
	sales []entity.Sale
}

// SalesOption customises a SalesService
type SalesOption func(*SalesService)

// WithSaleIDs replaces the sale id generator
func WithSaleIDs(gen func() uuid.UUID) SalesOption {
	return func(s *SalesService) { s.newID = gen }
}

// WithClock replaces the time source used to stamp sales
func WithClock(now func() time.Time) SalesOption {
	return func(s *SalesService) { s.now = now }
}

// NewSalesService loads the sales history once. A load failure is logged and
// the history starts empty.
func NewSalesService(ctx context.Context, stock StockKeeper, storage repository.Storage, log logrus.FieldLogger, opts ...SalesOption) *SalesService {
	s := &SalesService{
		stock:   stock,
		storage: storage,
		log:     log.WithField("service", "sales"),
		newID:   utils.NewUUID,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	sales, err := storage.LoadSales(ctx)
	if err != nil {
		s.log.WithError(err).Error("failed to load sales, starting empty")
		sales = nil
	}
	s.sales = sales
	s.log.WithField("count", len(s.sales)).Info("sales loaded")
	return s
}

// RecordSale decrements stock for every line and stores the sale. Either
// the whole sale happens or nothing changes.
func (s *SalesService) RecordSale(ctx context.Context, lines []entity.SaleLine) (*entity.Sale, error) {
	if len(lines) == 0 {
		return nil, apperror.ErrEmptySale
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperror.ErrInvalidQuantity.WithDetail(line.ProductID.String(), "quantity must be positive")
		}
	}

	before, err := s.stock.ReserveStock(ctx, lines)
	if err != nil {
		s.log.WithError(err).Warn("sale rejected")
		return nil, err
	}

	items := make([]entity.SaleItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, entity.NewSaleItem(before[i], line.Quantity))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if s.indexOf(id) >= 0 {
		s.log.WithField("sale_id", id).Error("generated sale id already exists")
		_ = s.restore(ctx, lines)
		return nil, apperror.NewConflictError("Sale id already exists")
	}
	sale := entity.NewSale(id, s.now(), items)

	next := make([]entity.Sale, len(s.sales), len(s.sales)+1)
	copy(next, s.sales)
	next = append(next, sale)
	if err := s.storage.SaveSales(ctx, next); err != nil {
		s.log.WithError(err).WithField("sale_id", id).Error("failed to save sale")
		appErr := apperror.ErrStorage.WithDetail("storage", err.Error())
		if restoreErr := s.restore(ctx, lines); restoreErr != nil {
			appErr = appErr.WithDetail("restore", "stock was not restored: "+restoreErr.Error())
		}
		return nil, appErr
	}
	s.sales = next

	s.log.WithFields(logrus.Fields{
		"sale_id": id,
		"items":   len(items),
		"revenue": sale.TotalRevenue.String(),
		"profit":  sale.TotalProfit.String(),
	}).Info("sale recorded")
	return &sale, nil
}

// ListSales returns every sale, newest first
func (s *SalesService) ListSales(ctx context.Context) []entity.Sale {
	s.mu.Lock()
	out := make([]entity.Sale, len(s.sales))
	copy(out, s.sales)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// GetSale returns the sale with id
func (s *SalesService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, apperror.ErrSaleNotFound
	}
	sale := s.sales[i]
	return &sale, nil
}

// restore gives reserved stock back after a failed sale. A failure is logged
// and returned so the caller can report that stock stayed decremented.
func (s *SalesService) restore(ctx context.Context, lines []entity.SaleLine) error {
	err := s.stock.RestoreStock(ctx, lines)
	if err != nil {
		s.log.WithError(err).Error("failed to restore stock after failed sale")
	}
	return err
}

func (s *SalesService) indexOf(id uuid.UUID) int {
	for i := range s.sales {
		if s.sales[i].ID == id {
			return i
		}
	}
	return -1
}
