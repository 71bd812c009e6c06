// Package export renders back-office data exports.
package export

import (
	"bytes"
	"strings"

	"github.com/tealeg/xlsx"

	"velora/internal/domain"
)

// ProductsXLSX renders the product list as an Excel workbook for the admin
// download button.
func ProductsXLSX(products []domain.Product) ([]byte, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	headers := []string{
		"ProductID", "Name", "AltNames", "Category",
		"Price", "LastPrice", "Stock", "Available",
		"Image", "Description", "CreatedAt",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		row := sheet.AddRow()
		row.AddCell().SetValue(p.Key())
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(strings.Join(p.AltNames, ", "))
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.LastPrice)
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(p.Available)
		row.AddCell().SetValue(image)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.CreatedAt)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
