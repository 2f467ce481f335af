package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/inventario/internal/domain/entity"
)

func openStore(t *testing.T, dir string) *Store {
	t.Helper()
	log, _ := test.NewNullLogger()
	s, err := Open(dir, log)
	require.NoError(t, err)
	return s
}

func TestOpen_CreatesEmptyFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := openStore(t, dir)

	for _, name := range []string{ProductsFile, SalesFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	}

	products, err := s.LoadProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	sales, err := s.LoadSales(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sales)
	assert.Empty(t, sales)
}

func TestOpen_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	body := `[{"id":"0b8a1c2e-4d5f-4a6b-8c7d-9e0f1a2b3c4d","name":"Kept","cost":1,"price":2,"stock":3}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProductsFile), []byte(body), 0o644))

	s := openStore(t, dir)
	products, err := s.LoadProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Kept", products[0].Name)
}

func TestLoad_BlankAndMissingFiles(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ProductsFile), []byte("  \n\t"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, SalesFile)))

	products, err := s.LoadProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)

	sales, err := s.LoadSales(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, SalesFile), []byte("{not json"), 0o644))

	_, err := s.LoadSales(context.Background())
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)
	ctx := context.Background()

	p := entity.Product{ID: uuid.New(), Name: "Widget", Cost: decimal.RequireFromString("5.25"), Price: decimal.NewFromInt(10), Stock: 18}
	sale := entity.NewSale(uuid.New(), time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), []entity.SaleItem{entity.NewSaleItem(p, 2)})

	require.NoError(t, s.SaveProducts(ctx, []entity.Product{p}))
	require.NoError(t, s.SaveSales(ctx, []entity.Sale{sale}))

	reopened := openStore(t, dir)
	products, err := reopened.LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, p.ID, products[0].ID)
	assert.True(t, products[0].Cost.Equal(p.Cost))
	assert.Equal(t, 18, products[0].Stock)

	sales, err := reopened.LoadSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, sale.ID, sales[0].ID)
	assert.True(t, sales[0].Timestamp.Equal(sale.Timestamp))
	assert.True(t, sales[0].TotalProfit.Equal(decimal.RequireFromString("9.5")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestSave_FieldNames(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)
	ctx := context.Background()

	p := entity.Product{ID: uuid.New(), Name: "Widget", Cost: decimal.NewFromInt(5), Price: decimal.NewFromInt(10), Stock: 1}
	sale := entity.NewSale(uuid.New(), time.Now(), []entity.SaleItem{entity.NewSaleItem(p, 1)})
	require.NoError(t, s.SaveProducts(ctx, []entity.Product{p}))
	require.NoError(t, s.SaveSales(ctx, []entity.Sale{sale}))

	var products []map[string]interface{}
	data, err := os.ReadFile(filepath.Join(dir, ProductsFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &products))
	assert.ElementsMatch(t, []string{"id", "name", "cost", "price", "stock"}, keys(products[0]))

	var sales []map[string]interface{}
	data, err = os.ReadFile(filepath.Join(dir, SalesFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &sales))
	assert.ElementsMatch(t, []string{"id", "timestamp", "total_revenue", "total_cost", "total_profit", "items"}, keys(sales[0]))
	item := sales[0]["items"].([]interface{})[0].(map[string]interface{})
	assert.ElementsMatch(t, []string{"product_id", "name", "quantity", "price", "cost", "subtotal"}, keys(item))
}

func TestSave_NilWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)
	require.NoError(t, s.SaveSales(context.Background(), nil))

	data, err := os.ReadFile(filepath.Join(dir, SalesFile))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestCancelledContext(t *testing.T) {
	s := openStore(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.SaveProducts(ctx, nil), context.Canceled)
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
