package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sangkips/inventario/internal/domain/entity"
	"github.com/sangkips/inventario/pkg/printer"
	"github.com/sangkips/inventario/pkg/utils"
)

const receiptPrefix = "RCP"

// SaleFinder looks up recorded sales
type SaleFinder interface {
	GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
}

// PrinterService formats sale receipts and sends them to the printer
type PrinterService struct {
	printer   printer.Printer
	sales     SaleFinder
	storeName string
	width     int
	log       logrus.FieldLogger
}

// NewPrinterService creates a new printer service
func NewPrinterService(p printer.Printer, sales SaleFinder, storeName string, charWidth int, log logrus.FieldLogger) *PrinterService {
	return &PrinterService{
		printer:   p,
		sales:     sales,
		storeName: storeName,
		width:     charWidth,
		log:       log.WithField("service", "printer"),
	}
}

// PrinterStatus describes the configured printer
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus reports whether the printer is configured and reachable
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	kind := s.printer.Kind()
	return &PrinterStatus{
		Configured: kind != "none",
		Connected:  s.printer.Ready(ctx),
		Type:       kind,
	}
}

// PrintSaleReceipt prints the receipt for a recorded sale. The receipt is
// returned even when printing fails so it can still be shown.
func (s *PrinterService) PrintSaleReceipt(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, error) {
	sale, err := s.sales.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	receipt := entity.NewReceipt(s.storeName, utils.ReceiptNo(receiptPrefix, sale.ID), *sale)
	if err := s.printer.Print(ctx, FormatReceipt(&receipt, s.width)); err != nil {
		s.log.WithError(err).WithField("sale_id", saleID).Error("failed to print receipt")
		return &receipt, errors.Wrap(err, "print receipt")
	}
	return &receipt, nil
}

// TestPrint sends a sample receipt
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	sample := entity.Product{Name: "Test item", Price: decimal.RequireFromString("2.50")}
	sale := entity.NewSale(uuid.Nil, time.Now(), []entity.SaleItem{entity.NewSaleItem(sample, 2)})
	receipt := entity.NewReceipt(s.storeName, receiptPrefix+"-TEST", sale)

	if err := s.printer.Print(ctx, FormatReceipt(&receipt, s.width)); err != nil {
		s.log.WithError(err).Error("test print failed")
		return &receipt, errors.Wrap(err, "test print")
	}
	return &receipt, nil
}

// FormatReceipt renders a receipt as ESC/POS bytes
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetSize(printer.SizeDouble).
		Text(r.StoreName).
		SetSize(printer.SizeNormal).
		SetBold(false).
		SetAlign(printer.AlignLeft).
		Rule('-').
		Columns("Receipt:", r.ReceiptNo).
		Columns("Date:", r.Date).
		Rule('-')

	for _, line := range r.Lines {
		doc.Item(line.Quantity, line.Name, line.Total.StringFixed(2))
		if line.Quantity > 1 {
			doc.Textf("  @ %s each", line.UnitPrice.StringFixed(2))
		}
	}

	doc.Rule('-').
		Columns("Items:", strconv.Itoa(r.Units)).
		SetBold(true).
		Columns("TOTAL:", r.Total.StringFixed(2)).
		SetBold(false).
		Rule('-').
		SetAlign(printer.AlignCenter).
		Text("Thank you!").
		SetAlign(printer.AlignLeft).
		Feed(3).
		Cut()

	return doc.Bytes()
}
