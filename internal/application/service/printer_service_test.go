package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/inventario/internal/domain/entity"
	"github.com/sangkips/inventario/pkg/apperror"
)

type spyPrinter struct {
	jobs [][]byte
	err  error
}

func (p *spyPrinter) Print(_ context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, append([]byte(nil), data...))
	return nil
}

func (p *spyPrinter) Ready(context.Context) bool { return p.err == nil }
func (p *spyPrinter) Kind() string               { return "file" }

func TestPrintSaleReceipt(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()
	sale, err := f.sales.RecordSale(ctx, []entity.SaleLine{{ProductID: f.a.ID, Quantity: 2}})
	require.NoError(t, err)

	spy := &spyPrinter{}
	svc := NewPrinterService(spy, f.sales, "Corner Shop", 32, nullLogger())

	receipt, err := svc.PrintSaleReceipt(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", receipt.StoreName)
	assert.True(t, receipt.Total.Equal(dec("20")))

	require.Len(t, spy.jobs, 1)
	job := spy.jobs[0]
	assert.True(t, bytes.Contains(job, []byte("Corner Shop")))
	assert.True(t, bytes.Contains(job, []byte("2x Widget")))
	assert.True(t, bytes.Contains(job, []byte("20.00")))
	assert.True(t, bytes.Contains(job, []byte(receipt.ReceiptNo)))
}

func TestPrintSaleReceipt_Errors(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()
	sale, err := f.sales.RecordSale(ctx, []entity.SaleLine{{ProductID: f.a.ID, Quantity: 1}})
	require.NoError(t, err)

	svc := NewPrinterService(&spyPrinter{err: errors.New("paper out")}, f.sales, "Shop", 32, nullLogger())

	receipt, err := svc.PrintSaleReceipt(ctx, sale.ID)
	assert.Error(t, err)
	require.NotNil(t, receipt, "receipt is still returned when printing fails")

	_, err = svc.PrintSaleReceipt(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrSaleNotFound)
}

func TestPrinterStatusAndTestPrint(t *testing.T) {
	spy := &spyPrinter{}
	svc := NewPrinterService(spy, nil, "Shop", 48, nullLogger())

	status := svc.GetStatus(context.Background())
	assert.True(t, status.Configured)
	assert.True(t, status.Connected)
	assert.Equal(t, "file", status.Type)

	receipt, err := svc.TestPrint(context.Background())
	require.NoError(t, err)
	assert.True(t, receipt.Total.Equal(dec("5")))
	assert.Len(t, spy.jobs, 1)
}
