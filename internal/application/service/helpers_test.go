package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/inventario/internal/domain/entity"
)

// memStorage is an in-memory Storage whose saves can be made to fail
type memStorage struct {
	mu              sync.Mutex
	products        []entity.Product
	sales           []entity.Sale
	saveProductsErr error
	saveSalesErr    error
	productSaves    int
	saleSaves       int
}

func (m *memStorage) LoadProducts(context.Context) ([]entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Product(nil), m.products...), nil
}

func (m *memStorage) SaveProducts(_ context.Context, products []entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveProductsErr != nil {
		return m.saveProductsErr
	}
	m.productSaves++
	m.products = append([]entity.Product(nil), products...)
	return nil
}

func (m *memStorage) LoadSales(context.Context) ([]entity.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Sale(nil), m.sales...), nil
}

func (m *memStorage) SaveSales(_ context.Context, sales []entity.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveSalesErr != nil {
		return m.saveSalesErr
	}
	m.saleSaves++
	m.sales = append([]entity.Sale(nil), sales...)
	return nil
}

func (m *memStorage) stored(id uuid.UUID) (entity.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			return p, true
		}
	}
	return entity.Product{}, false
}

// mockStorage is a testify mock of Storage
type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) LoadProducts(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]entity.Product)
	return products, args.Error(1)
}

func (m *mockStorage) SaveProducts(ctx context.Context, products []entity.Product) error {
	return m.Called(ctx, products).Error(0)
}

func (m *mockStorage) LoadSales(ctx context.Context) ([]entity.Sale, error) {
	args := m.Called(ctx)
	sales, _ := args.Get(0).([]entity.Sale)
	return sales, args.Error(1)
}

func (m *mockStorage) SaveSales(ctx context.Context, sales []entity.Sale) error {
	return m.Called(ctx, sales).Error(0)
}

func nullLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fixedIDs returns a generator that hands out ids in order, then repeats the
// last one.
func fixedIDs(ids ...uuid.UUID) func() uuid.UUID {
	var mu sync.Mutex
	i := 0
	return func() uuid.UUID {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i]
		if i < len(ids)-1 {
			i++
		}
		return id
	}
}

func newInventory(t *testing.T, store *memStorage, opts ...InventoryOption) *InventoryService {
	t.Helper()
	return NewInventoryService(context.Background(), store, nullLogger(), opts...)
}

func mustAdd(t *testing.T, inv *InventoryService, name, cost, price string, stock int) entity.Product {
	t.Helper()
	p, err := inv.AddProduct(context.Background(), &CreateProductInput{
		Name: name, Cost: dec(cost), Price: dec(price), Stock: stock,
	})
	require.NoError(t, err)
	return *p
}
