package service

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/sangkips/inventario/pkg/apperror"
)

var catalogColumns = []string{"name", "cost", "price", "stock"}

// ParseCatalog reads product rows from the first sheet of an xlsx workbook.
// The first row must name the columns name, cost, price and stock in any
// order. Blank rows are skipped. Cells that do not parse are reported per
// row; those rows are left out of the returned inputs.
func ParseCatalog(r io.Reader) ([]ImportRow, []ImportRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, apperror.NewBadRequestError("File is not a valid xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, apperror.NewBadRequestError("Workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read sheet %s", sheets[0])
	}
	if len(rows) == 0 {
		return nil, nil, apperror.NewBadRequestError("Sheet is empty")
	}

	index := make(map[string]int, len(catalogColumns))
	for i, title := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(title))] = i
	}
	var missing []apperror.FieldError
	for _, col := range catalogColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, apperror.FieldError{Field: col, Message: "Column is missing from the header row"})
		}
	}
	if len(missing) > 0 {
		return nil, nil, apperror.NewValidationError(missing)
	}

	var inputs []ImportRow
	var rejected []ImportRowError
	for n, row := range rows[1:] {
		cell := func(col string) string {
			if i := index[col]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		if blank(row) {
			continue
		}

		// Sheet rows are 1-based and the header is row 1.
		sheetRow := n + 2
		var errs []apperror.FieldError
		input := CreateProductInput{Name: cell("name")}
		if input.Cost, err = decimal.NewFromString(orZero(cell("cost"))); err != nil {
			errs = append(errs, apperror.FieldError{Field: "cost", Message: "Cost is not a number"})
		}
		if input.Price, err = decimal.NewFromString(orZero(cell("price"))); err != nil {
			errs = append(errs, apperror.FieldError{Field: "price", Message: "Price is not a number"})
		}
		if input.Stock, err = strconv.Atoi(orZero(cell("stock"))); err != nil {
			errs = append(errs, apperror.FieldError{Field: "stock", Message: "Stock is not a whole number"})
		}
		if len(errs) > 0 {
			rejected = append(rejected, ImportRowError{Row: sheetRow, Errors: errs})
			continue
		}
		inputs = append(inputs, ImportRow{Row: sheetRow, Input: input})
	}
	return inputs, rejected, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
