package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/internal/app/service"
	"github.com/omsapp/oms-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	CustomersSheet = "Customers"
	ProductsSheet  = "Products"
)

var ErrMissingColumn = errors.New("required column is missing")

// RowError describes a spreadsheet row that was not imported
type RowError struct {
	Sheet string
	Row   int // 1-based, as shown in spreadsheet tools
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Sheet, e.Row, e.Err)
}

// Report summarizes an import run
type Report struct {
	CustomersCreated int
	CustomersSkipped int
	ProductsCreated  int
	ProductsMerged   int
	ProductsSkipped  int
	Errors           []RowError
}

// Importer feeds catalog spreadsheets through the services, so imported rows obey
// the same validation, code uniqueness and merge rules as API writes.
type Importer struct {
	customerService service.CustomerService
	productService  service.ProductService
}

func New(customerService service.CustomerService, productService service.ProductService) *Importer {
	return &Importer{
		customerService: customerService,
		productService:  productService,
	}
}

func (imp *Importer) ImportFile(ctx context.Context, path string) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	return imp.Import(ctx, f)
}

// Import reads the Customers and Products sheets. Either sheet may be absent.
func (imp *Importer) Import(ctx context.Context, f *excelize.File) (*Report, error) {
	report := &Report{}

	if err := imp.importCustomers(ctx, f, report); err != nil {
		return report, err
	}
	if err := imp.importProducts(ctx, f, report); err != nil {
		return report, err
	}

	logger.Info("Catalog import finished", map[string]interface{}{
		"customers_created": report.CustomersCreated,
		"customers_skipped": report.CustomersSkipped,
		"products_created":  report.ProductsCreated,
		"products_merged":   report.ProductsMerged,
		"products_skipped":  report.ProductsSkipped,
	})
	return report, nil
}

func (imp *Importer) importCustomers(ctx context.Context, f *excelize.File, report *Report) error {
	rows, cols, err := readSheet(f, CustomersSheet, "CustomerCode", "Name")
	if err != nil || rows == nil {
		return err
	}

	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		input := service.CustomerInput{
			CustomerCode: cols.get(row, "CustomerCode"),
			Name:         cols.get(row, "Name"),
			Email:        cols.optional(row, "Email"),
			Phone:        cols.optional(row, "Phone"),
			Address:      cols.optional(row, "Address"),
		}

		if _, err := imp.customerService.CreateCustomer(ctx, input); err != nil {
			report.CustomersSkipped++
			report.Errors = append(report.Errors, RowError{Sheet: CustomersSheet, Row: i + 2, Err: err})
			continue
		}
		report.CustomersCreated++
	}
	return nil
}

func (imp *Importer) importProducts(ctx context.Context, f *excelize.File, report *Report) error {
	rows, cols, err := readSheet(f, ProductsSheet, "Name", "Price")
	if err != nil || rows == nil {
		return err
	}

	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		input, err := productInput(cols, row)
		if err == nil {
			var merged bool
			if _, merged, err = imp.productService.CreateProduct(ctx, input); err == nil {
				if merged {
					report.ProductsMerged++
				} else {
					report.ProductsCreated++
				}
				continue
			}
		}

		report.ProductsSkipped++
		report.Errors = append(report.Errors, RowError{Sheet: ProductsSheet, Row: i + 2, Err: err})
	}
	return nil
}

func productInput(cols columns, row []string) (service.ProductInput, error) {
	input := service.ProductInput{
		ProductName:   cols.get(row, "Name"),
		Description:   cols.optional(row, "Description"),
		ProductStatus: model.ProductStatus(cols.get(row, "Status")),
	}

	price, err := strconv.ParseFloat(cols.get(row, "Price"), 64)
	if err != nil {
		return input, fmt.Errorf("invalid price %q", cols.get(row, "Price"))
	}
	input.Price = price

	if raw := cols.get(row, "Quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return input, fmt.Errorf("invalid quantity %q", raw)
		}
		input.Quantity = qty
	}
	return input, nil
}

// columns maps header names, case-insensitively, to cell indexes
type columns map[string]int

func (c columns) get(row []string, name string) string {
	idx, ok := c[strings.ToLower(name)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (c columns) optional(row []string, name string) *string {
	if v := c.get(row, name); v != "" {
		return &v
	}
	return nil
}

// readSheet returns the data rows below the header. A missing sheet yields nil rows and no error.
func readSheet(f *excelize.File, sheet string, required ...string) ([][]string, columns, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		logger.Info("Sheet not present, skipping", map[string]interface{}{
			"sheet": sheet,
		})
		return nil, nil, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s rows: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	cols := columns{}
	for i, header := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, name := range required {
		if _, ok := cols[strings.ToLower(name)]; !ok {
			return nil, nil, fmt.Errorf("%s sheet: %w: %s", sheet, ErrMissingColumn, name)
		}
	}

	return rows[1:], cols, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
