package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/sangkips/inventario/internal/domain/entity"
	"github.com/sangkips/inventario/pkg/utils"
)

const (
	salesSheet = "Sales"
	itemsSheet = "Items"
)

// SaleLister provides the sales history
type SaleLister interface {
	ListSales(ctx context.Context) []entity.Sale
}

// DateRange bounds a report. From is inclusive, To exclusive, and a nil
// bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && !t.Before(*r.To) {
		return false
	}
	return true
}

// SalesSummary aggregates sales in a range
type SalesSummary struct {
	From      *time.Time      `json:"from,omitempty"`
	To        *time.Time      `json:"to,omitempty"`
	SaleCount int             `json:"sale_count"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
	Cost      decimal.Decimal `json:"cost"`
	Profit    decimal.Decimal `json:"profit"`
}

// ProductSales aggregates one product across sales
type ProductSales struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
	Profit    decimal.Decimal `json:"profit"`
}

// ReportService builds read-only views of the sales history
type ReportService struct {
	sales SaleLister
	log   logrus.FieldLogger
}

// NewReportService creates a new report service
func NewReportService(sales SaleLister, log logrus.FieldLogger) *ReportService {
	return &ReportService{sales: sales, log: log.WithField("service", "report")}
}

// Summary totals the sales that fall inside r
func (s *ReportService) Summary(ctx context.Context, r DateRange) *SalesSummary {
	summary := &SalesSummary{
		From:    r.From,
		To:      r.To,
		Revenue: decimal.Zero,
		Cost:    decimal.Zero,
		Profit:  decimal.Zero,
	}
	for _, sale := range s.inRange(ctx, r) {
		summary.SaleCount++
		summary.Units += sale.UnitCount()
		summary.Revenue = summary.Revenue.Add(sale.TotalRevenue)
		summary.Cost = summary.Cost.Add(sale.TotalCost)
		summary.Profit = summary.Profit.Add(sale.TotalProfit)
	}
	return summary
}

// TopProducts ranks products by units sold in r. limit <= 0 returns all.
func (s *ReportService) TopProducts(ctx context.Context, r DateRange, limit int) []ProductSales {
	byID := make(map[uuid.UUID]*ProductSales)
	for _, sale := range s.inRange(ctx, r) {
		for _, item := range sale.Items {
			ps, ok := byID[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, Revenue: decimal.Zero, Profit: decimal.Zero}
				byID[item.ProductID] = ps
			}
			// Sales arrive oldest first, so the newest recorded name wins.
			ps.Name = item.Name
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.Subtotal)
			ps.Profit = ps.Profit.Add(item.Subtotal.Sub(item.CostSubtotal()))
		}
	}

	out := make([]ProductSales, 0, len(byID))
	for _, ps := range byID {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ExportSales writes the sales in r to w as an xlsx workbook with a Sales
// sheet (one row per sale plus a totals row) and an Items sheet.
func (s *ReportService) ExportSales(ctx context.Context, w io.Writer, r DateRange) error {
	sales := s.inRange(ctx, r)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return errors.Wrap(err, "add items sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "create header style")
	}

	salesHeader := []interface{}{"Sale", "Date", "Items", "Units", "Revenue", "Cost", "Profit"}
	itemsHeader := []interface{}{"Sale", "Date", "Product ID", "Product", "Quantity", "Price", "Cost", "Subtotal"}
	if err := writeRow(f, salesSheet, 1, salesHeader); err != nil {
		return err
	}
	if err := writeRow(f, itemsSheet, 1, itemsHeader); err != nil {
		return err
	}

	summary := SalesSummary{Revenue: decimal.Zero, Cost: decimal.Zero, Profit: decimal.Zero}
	itemRow := 2
	for i, sale := range sales {
		short := utils.ShortID(sale.ID)
		date := sale.Timestamp.Format("2006-01-02 15:04:05")
		row := []interface{}{
			short, date, len(sale.Items), sale.UnitCount(),
			sale.TotalRevenue.InexactFloat64(), sale.TotalCost.InexactFloat64(), sale.TotalProfit.InexactFloat64(),
		}
		if err := writeRow(f, salesSheet, i+2, row); err != nil {
			return err
		}
		for _, item := range sale.Items {
			row := []interface{}{
				short, date, item.ProductID.String(), item.Name, item.Quantity,
				item.Price.InexactFloat64(), item.Cost.InexactFloat64(), item.Subtotal.InexactFloat64(),
			}
			if err := writeRow(f, itemsSheet, itemRow, row); err != nil {
				return err
			}
			itemRow++
		}
		summary.Units += sale.UnitCount()
		summary.Revenue = summary.Revenue.Add(sale.TotalRevenue)
		summary.Cost = summary.Cost.Add(sale.TotalCost)
		summary.Profit = summary.Profit.Add(sale.TotalProfit)
	}

	totalRow := len(sales) + 2
	totals := []interface{}{
		"Total", "", "", summary.Units,
		summary.Revenue.InexactFloat64(), summary.Cost.InexactFloat64(), summary.Profit.InexactFloat64(),
	}
	if err := writeRow(f, salesSheet, totalRow, totals); err != nil {
		return err
	}

	for _, sheet := range []string{salesSheet, itemsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return errors.Wrapf(err, "style %s header", sheet)
		}
	}
	if err := f.SetRowStyle(salesSheet, totalRow, totalRow, bold); err != nil {
		return errors.Wrap(err, "style totals row")
	}
	if err := f.SetColWidth(salesSheet, "B", "B", 20); err != nil {
		return errors.Wrap(err, "size columns")
	}
	if err := f.SetColWidth(itemsSheet, "B", "D", 24); err != nil {
		return errors.Wrap(err, "size columns")
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	s.log.WithField("sales", len(sales)).Info("sales exported")
	return nil
}

// inRange returns sales inside r, oldest first
func (s *ReportService) inRange(ctx context.Context, r DateRange) []entity.Sale {
	all := s.sales.ListSales(ctx)
	out := make([]entity.Sale, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if r.Contains(all[i].Timestamp) {
			out = append(out, all[i])
		}
	}
	return out
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, "cell name")
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return errors.Wrapf(err, "write %s row %d", sheet, row)
	}
	return nil
}
