package services

import (
	"fmt"

	"storeops/internal/common"
	"storeops/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// writeWorkbook renders headers and rows into a single-sheet XLSX file.
func writeWorkbook(sheet string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != exportSheet {
		if err := f.SetSheetName(exportSheet, sheet); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, bold); err != nil {
		return nil, err
	}

	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ProductsWorkbook exports products with their stock position.
func ProductsWorkbook(products []*models.Product) ([]byte, error) {
	headers := []string{"SKU", "Nome", "Categoria", "Unidade", "Preço de custo", "Preço de venda", "Estoque", "Estoque mínimo", "Ativo"}
	rows := make([][]interface{}, 0, len(products))
	for _, p := range products {
		cost, _ := p.CostPrice.Float64()
		price, _ := p.SalePrice.Float64()
		rows = append(rows, []interface{}{
			p.SKU, p.Name, common.SafeString(p.Category), p.Unit, cost, price, p.Stock, p.MinStock, p.Active,
		})
	}
	return writeWorkbook("Produtos", headers, rows)
}

// SalesWorkbook exports sale headers.
func SalesWorkbook(sales []*models.Sale) ([]byte, error) {
	headers := []string{"Número", "Data", "Cliente", "Status", "Pagamento", "Subtotal", "Desconto", "Total"}
	rows := make([][]interface{}, 0, len(sales))
	for _, s := range sales {
		subtotal, _ := s.Subtotal.Float64()
		discount, _ := s.Discount.Float64()
		total, _ := s.Total.Float64()
		rows = append(rows, []interface{}{
			s.Number, s.CreatedAt.Format("2006-01-02 15:04"), common.SafeString(s.CustomerName), s.Status,
			s.PaymentMethod, subtotal, discount, total,
		})
	}
	return writeWorkbook("Vendas", headers, rows)
}
